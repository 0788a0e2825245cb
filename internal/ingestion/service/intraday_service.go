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

var validIntervals = map[string]bool{
	"1min":  true,
	"5min":  true,
	"15min": true,
	"30min": true,
	"60min": true,
}

// ErrInvalidInterval is returned before any network call when the requested
// intraday interval is not one Alpha Vantage supports.
var ErrInvalidInterval = fmt.Errorf("invalid intraday interval")

// IntradayService ingests intraday OHLCV bars and prunes old ones.
type IntradayService interface {
	FetchAndStore(ctx context.Context, ticker, interval string) (int, error)
	PruneOld(ctx context.Context, ticker string, days int) (int64, error)
}

// NewIntradayService creates a new IntradayService.
func NewIntradayService(fetcher Fetcher, prices repository.IntradayPriceRepository, log *logger.Logger) IntradayService {
	return &intradayService{fetcher: fetcher, prices: prices, log: log}
}

type intradayService struct {
	fetcher Fetcher
	prices  repository.IntradayPriceRepository
	log     *logger.Logger
}

// FetchAndStore fetches the full intraday series for ticker at the given
// interval and upserts every bar. Returns the number of bars written.
func (s *intradayService) FetchAndStore(ctx context.Context, ticker, interval string) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !validIntervals[interval] {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, interval)
	}

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncIntraday, ticker, map[string]string{
		"interval":   interval,
		"outputsize": "full",
	})
	if err != nil {
		return 0, fmt.Errorf("fetch intraday prices for %s: %w", ticker, err)
	}

	seriesKey := fmt.Sprintf("Time Series (%s)", interval)
	var series map[string]dto.TimeSeriesBar
	ok, err := payload.DecodeKey(seriesKey, &series)
	if err != nil {
		return 0, fmt.Errorf("decode intraday series for %s: %w", ticker, err)
	}
	if !ok || len(series) == 0 {
		s.log.WarnContext(ctx, "No intraday time series in response",
			logger.StringField("ticker", ticker),
			logger.StringField("interval", interval))
		return 0, nil
	}

	now := timeNow()
	records := make([]entity.IntradayPrice, 0, len(series))
	for tsStr, bar := range series {
		ts, err := utils.ParseDateTime(tsStr)
		if err != nil {
			s.log.WarnContext(ctx, "Dropping bar with unparsable timestamp",
				logger.StringField("ticker", ticker),
				logger.StringField("timestamp", tsStr))
			continue
		}
		records = append(records, entity.IntradayPrice{
			Ticker:      ticker,
			Timestamp:   ts,
			Interval:    interval,
			Open:        utils.ParseFloat(bar.Open),
			High:        utils.ParseFloat(bar.High),
			Low:         utils.ParseFloat(bar.Low),
			Close:       utils.ParseFloat(bar.Close),
			Volume:      utils.ParseInt64(bar.Volume),
			LastUpdated: now,
		})
	}

	if len(records) == 0 {
		s.log.WarnContext(ctx, "No parsable intraday bars",
			logger.StringField("ticker", ticker),
			logger.StringField("interval", interval))
		return 0, nil
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp.Before(records[j].Timestamp) })

	if _, err := s.prices.UpsertBatch(ctx, records); err != nil {
		s.log.ErrorContext(ctx, "Failed to store intraday prices",
			logger.StringField("ticker", ticker),
			logger.ErrorField(err))
		return 0, err
	}

	s.log.InfoContext(ctx, "Stored intraday prices",
		logger.StringField("ticker", ticker),
		logger.StringField("interval", interval),
		logger.IntField("count", len(records)))
	return len(records), nil
}

// PruneOld deletes intraday bars for ticker older than days ago.
func (s *intradayService) PruneOld(ctx context.Context, ticker string, days int) (int64, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	cutoff := timeNow().AddDate(0, 0, -days)

	deleted, err := s.prices.DeleteOlderThan(ctx, ticker, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune intraday prices for %s: %w", ticker, err)
	}
	if deleted > 0 {
		s.log.InfoContext(ctx, "Pruned old intraday prices",
			logger.StringField("ticker", ticker),
			logger.IntField("deleted", int(deleted)))
	}
	return deleted, nil
}
