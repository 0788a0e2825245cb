package repository

import (
	"context"
	"fmt"
	"time"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsRepository defines the persistence operations for news articles.
// Articles are insert-only; duplicates by URL are silently skipped.
type NewsRepository interface {
	CreateIgnoreConflict(ctx context.Context, article *entity.News) (bool, error)
	List(ctx context.Context, since *time.Time, limit int) ([]entity.News, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

type newsRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts the article unless its URL already exists.
// Returns true when a row was actually written.
func (r *newsRepository) CreateIgnoreConflict(ctx context.Context, article *entity.News) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, fmt.Errorf("insert news article: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *newsRepository) List(ctx context.Context, since *time.Time, limit int) ([]entity.News, error) {
	var articles []entity.News
	q := r.db.WithContext(ctx).Order("published_at DESC")
	if since != nil {
		q = q.Where("published_at >= ?", *since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *newsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("published_at < ?", cutoff).Delete(&entity.News{})
	return tx.RowsAffected, tx.Error
}
