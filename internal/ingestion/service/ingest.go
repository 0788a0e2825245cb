package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"alphavantage-pipeline/pkg/logger"
)

// IngestOptions holds parameters for a full per-ticker ingestion pass.
type IngestOptions struct {
	Months           int
	IntradayInterval string
	NewsLimit        int
	Delay            time.Duration
}

// TickerResult collects what a single-ticker ingestion stored.
type TickerResult struct {
	Ticker       string      `json:"ticker"`
	DailyBars    int         `json:"daily_bars"`
	IntradayBars int         `json:"intraday_bars"`
	NewsItems    int         `json:"news_items"`
	Events       EventCounts `json:"events"`
	Err          error       `json:"-"`
}

// Summary aggregates a backfill run across all tickers.
type Summary struct {
	Results []TickerResult `json:"results"`
	Elapsed time.Duration  `json:"elapsed"`
}

// Ingestor runs the full ingestion flow for one or many tickers.
type Ingestor interface {
	IngestTicker(ctx context.Context, ticker string, opts IngestOptions) (TickerResult, error)
	Backfill(ctx context.Context, tickers []string, opts IngestOptions) (*Summary, error)
}

// NewIngestor creates a new Ingestor over the per-domain services.
func NewIngestor(stocks StockService, prices PriceService, intraday IntradayService, news NewsService, events EventsService, log *logger.Logger) Ingestor {
	return &ingestor{
		stocks:   stocks,
		prices:   prices,
		intraday: intraday,
		news:     news,
		events:   events,
		log:      log,
	}
}

type ingestor struct {
	stocks   StockService
	prices   PriceService
	intraday IntradayService
	news     NewsService
	events   EventsService
	log      *logger.Logger
}

// IngestTicker runs stock, price, intraday, news and event ingestion for one
// ticker. A failing stock fetch aborts the pass, since price and event rows
// would dangle without the parent stock. Later failures are recorded on the
// result but do not stop the remaining steps.
func (g *ingestor) IngestTicker(ctx context.Context, ticker string, opts IngestOptions) (TickerResult, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	result := TickerResult{Ticker: ticker}

	if err := g.stocks.FetchAndStore(ctx, ticker); err != nil {
		result.Err = fmt.Errorf("stock %s: %w", ticker, err)
		return result, result.Err
	}

	var firstErr error
	keep := func(step string, err error) {
		if err == nil {
			return
		}
		g.log.ErrorContext(ctx, "Ingestion step failed",
			logger.StringField("ticker", ticker),
			logger.StringField("step", step),
			logger.ErrorField(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("%s %s: %w", step, ticker, err)
		}
	}

	var err error
	result.DailyBars, err = g.prices.FetchAndStore(ctx, ticker, opts.Months)
	keep("daily prices", err)

	if opts.IntradayInterval != "" {
		result.IntradayBars, err = g.intraday.FetchAndStore(ctx, ticker, opts.IntradayInterval)
		keep("intraday prices", err)
	}

	result.NewsItems, err = g.news.FetchAndStore(ctx, NewsQuery{Ticker: ticker, Limit: opts.NewsLimit})
	keep("news", err)

	result.Events, err = g.events.FetchAndStoreAll(ctx, ticker)
	keep("events", err)

	result.Err = firstErr
	return result, firstErr
}

// Backfill ingests each ticker in order, sleeping opts.Delay between tickers
// to stay under the provider's per-minute quota. Per-ticker failures land in
// the summary; only context cancellation aborts the run.
func (g *ingestor) Backfill(ctx context.Context, tickers []string, opts IngestOptions) (*Summary, error) {
	start := timeNow()
	summary := &Summary{Results: make([]TickerResult, 0, len(tickers))}

	for i, ticker := range tickers {
		if i > 0 && opts.Delay > 0 {
			select {
			case <-ctx.Done():
				summary.Elapsed = timeNow().Sub(start)
				return summary, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}

		result, err := g.IngestTicker(ctx, ticker, opts)
		summary.Results = append(summary.Results, result)
		if err != nil && ctx.Err() != nil {
			summary.Elapsed = timeNow().Sub(start)
			return summary, ctx.Err()
		}
	}

	summary.Elapsed = timeNow().Sub(start)
	g.log.InfoContext(ctx, "Backfill finished",
		logger.IntField("tickers", len(tickers)),
		logger.IntField("failed", summary.FailedCount()),
		logger.StringField("elapsed", summary.Elapsed.Round(time.Second).String()))
	return summary, nil
}

// FailedCount returns how many tickers ended with an error.
func (s *Summary) FailedCount() int {
	failed := 0
	for _, r := range s.Results {
		if r.Err != nil {
			failed++
		}
	}
	return failed
}

// Format renders the run as a human-readable report, suitable for both the
// CLI and a Telegram message.
func (s *Summary) Format() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Backfill finished in %s\n", s.Elapsed.Round(time.Second)))
	for _, r := range s.Results {
		if r.Err != nil {
			b.WriteString(fmt.Sprintf("%s: FAILED (%v)\n", r.Ticker, r.Err))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %d daily, %d intraday, %d news, %d events\n",
			r.Ticker, r.DailyBars, r.IntradayBars, r.NewsItems, r.Events.Total()))
	}
	return b.String()
}
