package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyPriceRepository defines the persistence operations for daily OHLCV
// bars.
type DailyPriceRepository interface {
	UpsertBatch(ctx context.Context, prices []entity.DailyPrice) (int64, error)
	List(ctx context.Context, ticker string, start, end *time.Time, limit int) ([]entity.DailyPrice, error)
	Latest(ctx context.Context, ticker string) (*entity.DailyPrice, error)
}

// NewDailyPriceRepository creates a new DailyPriceRepository.
func NewDailyPriceRepository(db *gorm.DB) DailyPriceRepository {
	return &dailyPriceRepository{db: db}
}

type dailyPriceRepository struct {
	db *gorm.DB
}

// UpsertBatch inserts all bars in one statement; an existing (ticker, date)
// row is overwritten with the fetched values.
func (r *dailyPriceRepository) UpsertBatch(ctx context.Context, prices []entity.DailyPrice) (int64, error) {
	if len(prices) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume"}),
	}).Create(&prices)
	if tx.Error != nil {
		return 0, fmt.Errorf("upsert daily prices: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *dailyPriceRepository) List(ctx context.Context, ticker string, start, end *time.Time, limit int) ([]entity.DailyPrice, error) {
	var prices []entity.DailyPrice
	q := r.db.WithContext(ctx).Where("ticker = ?", ticker).Order("date DESC")
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *dailyPriceRepository) Latest(ctx context.Context, ticker string) (*entity.DailyPrice, error) {
	var price entity.DailyPrice
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).Order("date DESC").First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &price, nil
}
