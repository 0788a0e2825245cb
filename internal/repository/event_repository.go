package repository

import (
	"context"
	"fmt"
	"time"

	"alphavantage-pipeline/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines the persistence operations for corporate events.
// Events are insert-only per (ticker, type, date); duplicates are skipped.
type EventRepository interface {
	CreateIgnoreConflict(ctx context.Context, event *entity.Event) (bool, error)
	List(ctx context.Context, ticker string, eventType entity.EventType, since *time.Time, limit int) ([]entity.Event, error)
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

type eventRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts the event unless its composite key already
// exists. Returns true when a row was actually written.
func (r *eventRepository) CreateIgnoreConflict(ctx context.Context, event *entity.Event) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}, {Name: "event_type"}, {Name: "event_date"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, fmt.Errorf("insert event: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *eventRepository) List(ctx context.Context, ticker string, eventType entity.EventType, since *time.Time, limit int) ([]entity.Event, error) {
	var events []entity.Event
	q := r.db.WithContext(ctx).Order("event_date DESC")
	if ticker != "" {
		q = q.Where("ticker = ?", ticker)
	}
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	if since != nil {
		q = q.Where("event_date >= ?", *since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
