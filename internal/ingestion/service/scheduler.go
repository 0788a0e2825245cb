package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/config"
	"alphavantage-pipeline/pkg/logger"
)

// RefreshScheduler runs the periodic price and news refresh jobs plus the
// retention pruning that keeps intraday and news tables bounded.
type RefreshScheduler struct {
	cron     *cron.Cron
	prices   PriceService
	intraday IntradayService
	news     NewsService
	newsRepo repository.NewsRepository
	cfg      *config.Scheduler
	backfill *config.Backfill
	log      *logger.Logger
}

// NewRefreshScheduler creates a scheduler over the configured cron specs.
func NewRefreshScheduler(prices PriceService, intraday IntradayService, news NewsService, newsRepo repository.NewsRepository, cfg *config.Scheduler, backfill *config.Backfill, log *logger.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		cron:     cron.New(),
		prices:   prices,
		intraday: intraday,
		news:     news,
		newsRepo: newsRepo,
		cfg:      cfg,
		backfill: backfill,
		log:      log,
	}
}

// Start registers the refresh jobs and starts the cron runner. Jobs run in
// the cron goroutine; a run in progress delays the next one.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if s.cfg.PriceRefreshCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.PriceRefreshCron, func() { s.refreshPrices(ctx) }); err != nil {
			return fmt.Errorf("register price refresh job: %w", err)
		}
	}
	if s.cfg.NewsRefreshCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.NewsRefreshCron, func() { s.refreshNews(ctx) }); err != nil {
			return fmt.Errorf("register news refresh job: %w", err)
		}
	}

	s.cron.Start()
	s.log.Info("Refresh scheduler started",
		logger.StringField("price_cron", s.cfg.PriceRefreshCron),
		logger.StringField("news_cron", s.cfg.NewsRefreshCron))
	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *RefreshScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Refresh scheduler stopped")
}

func (s *RefreshScheduler) refreshPrices(ctx context.Context) {
	delay := time.Duration(s.backfill.DelaySeconds) * time.Second

	for i, ticker := range s.backfill.Tickers {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}

		if _, err := s.prices.FetchAndStore(ctx, ticker, s.backfill.Months); err != nil {
			s.log.ErrorContext(ctx, "Scheduled price refresh failed",
				logger.StringField("ticker", ticker),
				logger.ErrorField(err))
		}
		if s.backfill.IntradayInterval != "" {
			if _, err := s.intraday.FetchAndStore(ctx, ticker, s.backfill.IntradayInterval); err != nil {
				s.log.ErrorContext(ctx, "Scheduled intraday refresh failed",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err))
			}
		}
		if s.backfill.IntradayDays > 0 {
			if _, err := s.intraday.PruneOld(ctx, ticker, s.backfill.IntradayDays); err != nil {
				s.log.ErrorContext(ctx, "Intraday pruning failed",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err))
			}
		}
	}
}

func (s *RefreshScheduler) refreshNews(ctx context.Context) {
	for _, ticker := range s.backfill.Tickers {
		if _, err := s.news.FetchAndStore(ctx, NewsQuery{Ticker: ticker, Limit: s.backfill.NewsLimit}); err != nil {
			s.log.ErrorContext(ctx, "Scheduled news refresh failed",
				logger.StringField("ticker", ticker),
				logger.ErrorField(err))
		}
	}

	if s.cfg.NewsRetentionDays > 0 {
		cutoff := timeNow().AddDate(0, 0, -s.cfg.NewsRetentionDays)
		deleted, err := s.newsRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			s.log.ErrorContext(ctx, "News pruning failed", logger.ErrorField(err))
			return
		}
		if deleted > 0 {
			s.log.InfoContext(ctx, "Pruned old news", logger.IntField("deleted", int(deleted)))
		}
	}
}
