package service

import (
	"context"
	"fmt"
	"strings"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/dto"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/utils"
)

// Only the most recent quarters are kept per earnings fetch.
const maxEarningsQuarters = 8

// EventCounts reports how many events of each type a combined fetch stored.
type EventCounts struct {
	Earnings  int `json:"earnings"`
	Dividends int `json:"dividends"`
	Splits    int `json:"splits"`
}

// Total returns the sum across all event types.
func (c EventCounts) Total() int {
	return c.Earnings + c.Dividends + c.Splits
}

// EventsService ingests corporate events: earnings, dividends and splits.
type EventsService interface {
	FetchAndStoreEarnings(ctx context.Context, ticker string) (int, error)
	FetchAndStoreDividends(ctx context.Context, ticker string) (int, error)
	FetchAndStoreSplits(ctx context.Context, ticker string) (int, error)
	FetchAndStoreAll(ctx context.Context, ticker string) (EventCounts, error)
}

// NewEventsService creates a new EventsService.
func NewEventsService(fetcher Fetcher, events repository.EventRepository, log *logger.Logger) EventsService {
	return &eventsService{fetcher: fetcher, events: events, log: log}
}

type eventsService struct {
	fetcher Fetcher
	events  repository.EventRepository
	log     *logger.Logger
}

// FetchAndStoreEarnings fetches the quarterly earnings history for ticker and
// inserts the most recent quarters as earnings events, keyed by fiscal date.
func (s *eventsService) FetchAndStoreEarnings(ctx context.Context, ticker string) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncEarnings, ticker, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch earnings for %s: %w", ticker, err)
	}

	var quarters []dto.QuarterlyEarning
	ok, err := payload.DecodeKey("quarterlyEarnings", &quarters)
	if err != nil {
		return 0, fmt.Errorf("decode earnings for %s: %w", ticker, err)
	}
	if !ok || len(quarters) == 0 {
		s.log.WarnContext(ctx, "No quarterly earnings in response", logger.StringField("ticker", ticker))
		return 0, nil
	}

	// The provider orders quarters newest first.
	if len(quarters) > maxEarningsQuarters {
		quarters = quarters[:maxEarningsQuarters]
	}

	inserted := 0
	for _, q := range quarters {
		date, err := utils.ParseDate(q.FiscalDateEnding)
		if err != nil {
			s.log.WarnContext(ctx, "Dropping earnings quarter with unparsable date",
				logger.StringField("ticker", ticker),
				logger.StringField("date", q.FiscalDateEnding))
			continue
		}

		var value *string
		if eps := strings.TrimSpace(q.ReportedEPS); eps != "" && eps != "None" {
			value = &eps
		}

		created, err := s.events.CreateIgnoreConflict(ctx, &entity.Event{
			Ticker:    ticker,
			EventType: entity.EventTypeEarnings,
			EventDate: date,
			Value:     value,
		})
		if err != nil {
			return inserted, fmt.Errorf("store earnings event for %s: %w", ticker, err)
		}
		if created {
			inserted++
		}
	}

	s.log.InfoContext(ctx, "Stored earnings events",
		logger.StringField("ticker", ticker),
		logger.IntField("inserted", inserted))
	return inserted, nil
}

// FetchAndStoreDividends derives the latest dividend event from the company
// overview. The overview only carries the current ex-dividend date, so at most
// one event per fetch is recorded.
func (s *eventsService) FetchAndStoreDividends(ctx context.Context, ticker string) (int, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncOverview, ticker, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch overview for %s dividends: %w", ticker, err)
	}

	var overview dto.Overview
	if err := payload.Decode(&overview); err != nil {
		return 0, fmt.Errorf("decode overview for %s dividends: %w", ticker, err)
	}

	perShare := utils.ParseFloat(overview.DividendPerShare)
	if perShare == nil || *perShare == 0 {
		s.log.InfoContext(ctx, "No dividend on record", logger.StringField("ticker", ticker))
		return 0, nil
	}

	date, err := utils.ParseDate(overview.ExDividendDate)
	if err != nil {
		s.log.WarnContext(ctx, "Dividend present but ex-date unparsable",
			logger.StringField("ticker", ticker),
			logger.StringField("date", overview.ExDividendDate))
		return 0, nil
	}

	value := strings.TrimSpace(overview.DividendPerShare)
	created, err := s.events.CreateIgnoreConflict(ctx, &entity.Event{
		Ticker:    ticker,
		EventType: entity.EventTypeDividend,
		EventDate: date,
		Value:     &value,
	})
	if err != nil {
		return 0, fmt.Errorf("store dividend event for %s: %w", ticker, err)
	}
	if !created {
		return 0, nil
	}

	s.log.InfoContext(ctx, "Stored dividend event",
		logger.StringField("ticker", ticker),
		logger.StringField("ex_date", overview.ExDividendDate))
	return 1, nil
}

// FetchAndStoreSplits is a placeholder: the provider exposes no split history
// endpoint on the free tier, so this always reports zero events.
// TODO: switch to the SPLITS endpoint once the premium plan is available.
func (s *eventsService) FetchAndStoreSplits(ctx context.Context, ticker string) (int, error) {
	s.log.DebugContext(ctx, "Split history not available, skipping",
		logger.StringField("ticker", strings.ToUpper(strings.TrimSpace(ticker))))
	return 0, nil
}

// FetchAndStoreAll runs all event fetches for ticker. A failing fetch does not
// stop the remaining ones; the first error is returned alongside the counts.
func (s *eventsService) FetchAndStoreAll(ctx context.Context, ticker string) (EventCounts, error) {
	var counts EventCounts
	var firstErr error

	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	var err error
	counts.Earnings, err = s.FetchAndStoreEarnings(ctx, ticker)
	keep(err)
	counts.Dividends, err = s.FetchAndStoreDividends(ctx, ticker)
	keep(err)
	counts.Splits, err = s.FetchAndStoreSplits(ctx, ticker)
	keep(err)

	return counts, firstErr
}
