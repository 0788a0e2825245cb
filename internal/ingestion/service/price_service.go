package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/dto"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/utils"
)

const dailySeriesKey = "Time Series (Daily)"

// PriceService ingests daily OHLCV bars, keeping the trailing N months.
type PriceService interface {
	FetchAndStore(ctx context.Context, ticker string, months int) (int, error)
}

// NewPriceService creates a new PriceService.
func NewPriceService(fetcher Fetcher, prices repository.DailyPriceRepository, log *logger.Logger) PriceService {
	return &priceService{fetcher: fetcher, prices: prices, log: log}
}

type priceService struct {
	fetcher Fetcher
	prices  repository.DailyPriceRepository
	log     *logger.Logger
}

// FetchAndStore fetches the compact daily series for ticker and upserts all
// bars within the last months*30 days. Returns the number of bars written.
func (s *priceService) FetchAndStore(ctx context.Context, ticker string, months int) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncDailySeries, ticker, map[string]string{
		"outputsize": "compact", // free tier: last 100 trading days
	})
	if err != nil {
		return 0, fmt.Errorf("fetch daily prices for %s: %w", ticker, err)
	}

	var series map[string]dto.TimeSeriesBar
	ok, err := payload.DecodeKey(dailySeriesKey, &series)
	if err != nil {
		return 0, fmt.Errorf("decode daily series for %s: %w", ticker, err)
	}
	if !ok || len(series) == 0 {
		// Missing series is "no data", not an error.
		s.log.WarnContext(ctx, "No daily time series in response", logger.StringField("ticker", ticker))
		return 0, nil
	}

	cutoff := timeNow().AddDate(0, 0, -months*30)

	records := make([]entity.DailyPrice, 0, len(series))
	for dateStr, bar := range series {
		date, err := utils.ParseDate(dateStr)
		if err != nil {
			s.log.WarnContext(ctx, "Dropping bar with unparsable date",
				logger.StringField("ticker", ticker),
				logger.StringField("date", dateStr))
			continue
		}
		if date.Before(cutoff) {
			continue
		}
		records = append(records, entity.DailyPrice{
			Ticker: ticker,
			Date:   date,
			Open:   utils.ParseFloat(bar.Open),
			High:   utils.ParseFloat(bar.High),
			Low:    utils.ParseFloat(bar.Low),
			Close:  utils.ParseFloat(bar.Close),
			Volume: utils.ParseInt64(bar.Volume),
		})
	}

	if len(records) == 0 {
		s.log.WarnContext(ctx, "No daily bars within window", logger.StringField("ticker", ticker))
		return 0, nil
	}

	// Write order is keyed so it does not affect correctness, but keep it
	// deterministic.
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })

	if _, err := s.prices.UpsertBatch(ctx, records); err != nil {
		// Batch failures report zero written rather than a partial count.
		s.log.ErrorContext(ctx, "Failed to store daily prices",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err))
		return 0, err
	}

	s.log.InfoContext(ctx, "Stored daily prices",
		logger.StringField("ticker", ticker),
		logger.IntField("count", len(records)))
	return len(records), nil
}
