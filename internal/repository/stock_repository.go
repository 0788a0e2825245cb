package repository

import (
	"context"
	"errors"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
)

// StockRepository defines the persistence operations for stock master data.
type StockRepository interface {
	FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error)
	Exists(ctx context.Context, ticker string) (bool, error)
	Create(ctx context.Context, stock *entity.Stock) error
	Update(ctx context.Context, stock *entity.Stock) error
	List(ctx context.Context, limit int) ([]entity.Stock, error)
}

// NewStockRepository creates a new StockRepository.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

type stockRepository struct {
	db *gorm.DB
}

func (r *stockRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Stock, error) {
	var stock entity.Stock
	err := r.db.WithContext(ctx).First(&stock, "ticker = ?", ticker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) Exists(ctx context.Context, ticker string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Stock{}).Where("ticker = ?", ticker).Count(&count).Error
	return count > 0, err
}

func (r *stockRepository) Create(ctx context.Context, stock *entity.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *stockRepository) Update(ctx context.Context, stock *entity.Stock) error {
	return r.db.WithContext(ctx).Model(&entity.Stock{}).
		Where("ticker = ?", stock.Ticker).
		Select("Name", "Exchange", "AssetType", "Sector", "Industry",
			"MarketCap", "Description", "Country", "Currency", "LastUpdated").
		Updates(stock).Error
}

func (r *stockRepository) List(ctx context.Context, limit int) ([]entity.Stock, error) {
	var stocks []entity.Stock
	q := r.db.WithContext(ctx).Order("ticker")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}
