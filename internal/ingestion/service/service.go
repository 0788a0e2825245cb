package service

import (
	"context"
	"errors"
	"time"

	"alphavantage-pipeline/internal/ingestion/alphavantage"
)

// Fetcher is the consumer-side view of the upstream client shared by all
// domain services.
type Fetcher interface {
	Fetch(ctx context.Context, function, symbol string, params map[string]string) (alphavantage.Payload, error)
}

// ErrMissingRequiredFields signals that a parsed record lacks a field the
// entity contract requires (e.g. an overview without Symbol or Name).
var ErrMissingRequiredFields = errors.New("required field missing in payload")

// timeNow is swapped out by tests that pin "now" for date-window filtering.
var timeNow = time.Now
