package entity

import "time"

// EventType categorizes a corporate event row.
type EventType string

const (
	EventTypeEarnings EventType = "earnings"
	EventTypeDividend EventType = "dividend"
	EventTypeSplit    EventType = "split"
)

// Event is a corporate event keyed by (ticker, type, date). Existing keys
// are skipped on re-fetch, never updated.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Ticker    string    `gorm:"size:16;not null;uniqueIndex:idx_events_ticker_type_date" json:"ticker"`
	EventType EventType `gorm:"size:16;not null;uniqueIndex:idx_events_ticker_type_date" json:"event_type"`
	EventDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_events_ticker_type_date" json:"event_date"`
	Value     *string   `json:"value,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Event model.
func (Event) TableName() string {
	return "events"
}
