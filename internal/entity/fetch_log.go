package entity

import (
	"time"

	"gorm.io/datatypes"
)

// FetchStatus classifies the outcome of one upstream call.
type FetchStatus string

const (
	FetchStatusSuccess   FetchStatus = "success"
	FetchStatusError     FetchStatus = "error"
	FetchStatusRateLimit FetchStatus = "rate_limit"
	FetchStatusTimeout   FetchStatus = "timeout"
)

// FetchLog is the audit record of a single upstream call. Rows are
// append-only; retention is handled outside the pipeline.
type FetchLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Endpoint       string         `gorm:"size:64;not null;index" json:"endpoint"`
	Ticker         *string        `gorm:"size:16" json:"ticker,omitempty"`
	APIKeyIndex    *int           `json:"api_key_index,omitempty"`
	Status         FetchStatus    `gorm:"size:16;not null;index" json:"status"`
	ErrorMessage   *string        `json:"error_message,omitempty"`
	ResponseTimeMs *int64         `json:"response_time_ms,omitempty"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for the FetchLog model.
func (FetchLog) TableName() string {
	return "fetch_logs"
}
