package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/repository"
)

func dailySeriesJSON(bars map[string]string) string {
	entries := make([]string, 0, len(bars))
	for date, close := range bars {
		entries = append(entries, fmt.Sprintf(
			`"%s": {"1. open": "100.0", "2. high": "110.0", "3. low": "95.0", "4. close": "%s", "5. volume": "1000"}`,
			date, close))
	}
	return fmt.Sprintf(`{"Meta Data": {"2. Symbol": "AAPL"}, "Time Series (Daily)": {%s}}`, strings.Join(entries, ","))
}

func TestPriceService_FetchAndStore_WindowFiltering(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	pinNow(t, now)

	db := setupTestDB(t)
	prices := repository.NewDailyPriceRepository(db)
	fetcher := newFakeFetcher()
	fetcher.responses[alphavantage.FuncDailySeries] = dailySeriesJSON(map[string]string{
		now.AddDate(0, 0, -1).Format("2006-01-02"):   "150.0",
		now.AddDate(0, 0, -10).Format("2006-01-02"):  "151.0",
		now.AddDate(0, 0, -59).Format("2006-01-02"):  "152.0",
		now.AddDate(0, 0, -61).Format("2006-01-02"):  "153.0",
		now.AddDate(0, 0, -120).Format("2006-01-02"): "154.0",
		"not-a-date": "155.0",
	})
	svc := NewPriceService(fetcher, prices, testLogger())

	// Two months keeps bars from the last 60 days only.
	count, err := svc.FetchAndStore(ctx(), "aapl", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	stored, err := prices.List(ctx(), "AAPL", nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	for _, bar := range stored {
		assert.False(t, bar.Date.Before(now.AddDate(0, 0, -60)))
	}
}

func TestPriceService_FetchAndStore_Idempotent(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	pinNow(t, now)

	db := setupTestDB(t)
	prices := repository.NewDailyPriceRepository(db)
	fetcher := newFakeFetcher()
	date := now.AddDate(0, 0, -1).Format("2006-01-02")
	fetcher.responses[alphavantage.FuncDailySeries] = dailySeriesJSON(map[string]string{date: "150.0"})
	svc := NewPriceService(fetcher, prices, testLogger())

	_, err := svc.FetchAndStore(ctx(), "AAPL", 2)
	require.NoError(t, err)

	// Re-fetch with a revised close overwrites the same row.
	fetcher.responses[alphavantage.FuncDailySeries] = dailySeriesJSON(map[string]string{date: "151.5"})
	_, err = svc.FetchAndStore(ctx(), "AAPL", 2)
	require.NoError(t, err)

	stored, err := prices.List(ctx(), "AAPL", nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Close)
	assert.Equal(t, 151.5, *stored[0].Close)
}

func TestPriceService_FetchAndStore_NoSeries(t *testing.T) {
	db := setupTestDB(t)
	prices := repository.NewDailyPriceRepository(db)
	fetcher := newFakeFetcher()
	fetcher.responses[alphavantage.FuncDailySeries] = `{"Meta Data": {"2. Symbol": "AAPL"}}`
	svc := NewPriceService(fetcher, prices, testLogger())

	count, err := svc.FetchAndStore(ctx(), "AAPL", 2)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPriceService_FetchAndStore_UpstreamError(t *testing.T) {
	db := setupTestDB(t)
	prices := repository.NewDailyPriceRepository(db)
	fetcher := newFakeFetcher()
	fetcher.errs[alphavantage.FuncDailySeries] = &alphavantage.FetchError{
		Kind:    alphavantage.KindUpstream,
		Message: "This is a premium endpoint",
	}
	svc := NewPriceService(fetcher, prices, testLogger())

	count, err := svc.FetchAndStore(ctx(), "AAPL", 2)
	require.Error(t, err)
	assert.Zero(t, count)

	var fetchErr *alphavantage.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
