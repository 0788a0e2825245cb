package repository

import (
	"context"
	"fmt"
	"time"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntradayPriceRepository defines the persistence operations for intraday
// OHLCV bars.
type IntradayPriceRepository interface {
	UpsertBatch(ctx context.Context, prices []entity.IntradayPrice) (int64, error)
	List(ctx context.Context, ticker, interval string, start, end *time.Time, limit int) ([]entity.IntradayPrice, error)
	DeleteOlderThan(ctx context.Context, ticker string, cutoff time.Time) (int64, error)
}

// NewIntradayPriceRepository creates a new IntradayPriceRepository.
func NewIntradayPriceRepository(db *gorm.DB) IntradayPriceRepository {
	return &intradayPriceRepository{db: db}
}

type intradayPriceRepository struct {
	db *gorm.DB
}

// UpsertBatch inserts all bars in one statement keyed on
// (ticker, timestamp, interval); existing rows are overwritten.
func (r *intradayPriceRepository) UpsertBatch(ctx context.Context, prices []entity.IntradayPrice) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "timestamp"}, {Name: "interval"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "last_updated"}),
	}).Create(&prices)
	if tx.Error != nil {
		return 0, fmt.Errorf("upsert intraday prices: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *intradayPriceRepository) List(ctx context.Context, ticker, interval string, start, end *time.Time, limit int) ([]entity.IntradayPrice, error) {
	var prices []entity.IntradayPrice
	q := r.db.WithContext(ctx).Where("ticker = ?", ticker).Order("timestamp DESC")
	if interval != "" {
		q = q.Where("interval = ?", interval)
	}
	if start != nil {
		q = q.Where("timestamp >= ?", *start)
	}
	if end != nil {
		q = q.Where("timestamp <= ?", *end)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

// DeleteOlderThan prunes bars outside the retention window, scoped to one
// ticker.
func (r *intradayPriceRepository) DeleteOlderThan(ctx context.Context, ticker string, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("ticker = ? AND timestamp < ?", ticker, cutoff).Delete(&entity.IntradayPrice{})
	return tx.RowsAffected, tx.Error
}
