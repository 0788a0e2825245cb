package repository

import (
	"context"
	"time"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
)

// Statistics summarizes upstream API usage over a trailing window.
type Statistics struct {
	PeriodDays        int     `json:"period_days"`
	TotalRequests     int64   `json:"total_requests"`
	Successful        int64   `json:"successful"`
	Failed            int64   `json:"failed"`
	RateLimited       int64   `json:"rate_limited"`
	SuccessRate       float64 `json:"success_rate"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

// KeyUsage is the per-credential request breakdown.
type KeyUsage struct {
	APIKeyIndex  int   `json:"api_key_index"`
	RequestCount int64 `json:"request_count"`
	Successful   int64 `json:"successful"`
	RateLimited  int64 `json:"rate_limited"`
}

// FetchLogRepository records upstream call outcomes and answers aggregate
// statistics queries over the append-only fetch_logs table.
type FetchLogRepository interface {
	Create(ctx context.Context, log *entity.FetchLog) error
	List(ctx context.Context, endpoint string, status entity.FetchStatus, limit int) ([]entity.FetchLog, error)
	Statistics(ctx context.Context, days int) (*Statistics, error)
	KeyUsage(ctx context.Context, days int) ([]KeyUsage, error)
}

// NewFetchLogRepository creates a new FetchLogRepository.
func NewFetchLogRepository(db *gorm.DB) FetchLogRepository {
	return &fetchLogRepository{db: db}
}

type fetchLogRepository struct {
	db *gorm.DB
}

func (r *fetchLogRepository) Create(ctx context.Context, log *entity.FetchLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *fetchLogRepository) List(ctx context.Context, endpoint string, status entity.FetchStatus, limit int) ([]entity.FetchLog, error) {
	var logs []entity.FetchLog
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if endpoint != "" {
		q = q.Where("endpoint = ?", endpoint)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *fetchLogRepository) Statistics(ctx context.Context, days int) (*Statistics, error) {
	cutoff := windowStart(days)

	var row struct {
		Total       int64
		Successful  int64
		RateLimited int64
		AvgTime     *float64
	}
	err := r.db.WithContext(ctx).Model(&entity.FetchLog{}).
		Select(`COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS successful,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rate_limited,
			AVG(response_time_ms) AS avg_time`,
			entity.FetchStatusSuccess, entity.FetchStatusRateLimit).
		Where("created_at >= ?", cutoff).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		PeriodDays:    days,
		TotalRequests: row.Total,
		Successful:    row.Successful,
		Failed:        row.Total - row.Successful,
		RateLimited:   row.RateLimited,
	}
	if row.Total > 0 {
		stats.SuccessRate = float64(row.Successful) / float64(row.Total) * 100
	}
	if row.AvgTime != nil {
		stats.AvgResponseTimeMs = *row.AvgTime
	}
	return stats, nil
}

func (r *fetchLogRepository) KeyUsage(ctx context.Context, days int) ([]KeyUsage, error) {
	cutoff := windowStart(days)

	var usage []KeyUsage
	err := r.db.WithContext(ctx).Model(&entity.FetchLog{}).
		Select(`api_key_index,
			COUNT(*) AS request_count,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS successful,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rate_limited`,
			entity.FetchStatusSuccess, entity.FetchStatusRateLimit).
		Where("created_at >= ? AND api_key_index IS NOT NULL", cutoff).
		Group("api_key_index").
		Order("api_key_index").
		Scan(&usage).Error
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// windowStart computes midnight N days back, matching the trailing-day
// window of the statistics endpoint.
func windowStart(days int) time.Time {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.AddDate(0, 0, -days)
}
