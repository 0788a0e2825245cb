package dto

import (
	"time"

	"alphavantage-pipeline/internal/repository"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LatestPriceResponse is the most recent daily close for a ticker.
type LatestPriceResponse struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *int64    `json:"volume,omitempty"`
	Cached bool      `json:"cached"`
}

// StatisticsResponse bundles fetch statistics with the per-key breakdown.
type StatisticsResponse struct {
	Days     int                    `json:"days"`
	Fetches  *repository.Statistics `json:"fetches"`
	KeyUsage []repository.KeyUsage  `json:"key_usage"`
}

// HealthResponse reports the state of the service and its dependencies.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Upstream string `json:"upstream,omitempty"`
}
