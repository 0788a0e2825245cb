package entity

import (
	"time"

	"github.com/lib/pq"
)

// News is a single article with provider-computed sentiment. Articles are
// insert-only: an existing URL is never updated.
type News struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Headline             string         `gorm:"not null" json:"headline"`
	URL                  string         `gorm:"uniqueIndex;not null" json:"url"`
	Source               string         `json:"source"`
	Summary              string         `json:"summary"`
	PublishedAt          *time.Time     `json:"published_at,omitempty"`
	SentimentScore       *float64       `json:"sentiment_score,omitempty"`
	SentimentLabel       string         `json:"sentiment_label"`
	TickerSentimentScore *float64       `json:"ticker_sentiment_score,omitempty"`
	Topics               pq.StringArray `gorm:"type:text[]" json:"topics"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the News model.
func (News) TableName() string {
	return "news"
}
