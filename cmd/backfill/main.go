package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/config"
	"alphavantage-pipeline/internal/ingestion/keyring"
	"alphavantage-pipeline/internal/ingestion/service"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/postgres"
	"alphavantage-pipeline/pkg/telegram"
)

var (
	configPath string
	tickers    []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a historical backfill for the configured tickers",
	Run:   runBackfill,
}

func runBackfill(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	fetchLogRepo := repository.NewFetchLogRepository(db.DB)

	rotator, err := keyring.NewRotator(cfg.AlphaVantage.APIKeys)
	if err != nil {
		appLogger.Fatal("Failed to initialize key rotator", logger.ErrorField(err))
	}
	requestTimeout, err := time.ParseDuration(cfg.AlphaVantage.RequestTimeout)
	if err != nil {
		requestTimeout = 30 * time.Second
	}
	retryBackoff, err := time.ParseDuration(cfg.AlphaVantage.RetryBackoff)
	if err != nil {
		retryBackoff = 15 * time.Second
	}
	client := alphavantage.NewClient(alphavantage.Config{
		BaseURL:             cfg.AlphaVantage.BaseURL,
		RequestTimeout:      requestTimeout,
		MaxRequestPerMinute: cfg.AlphaVantage.MaxRequestPerMinute,
	}, rotator, fetchLogRepo, appLogger)
	fetcher := alphavantage.Retrying{
		Client:   client,
		Attempts: cfg.AlphaVantage.RetryAttempts,
		Backoff:  retryBackoff,
	}

	if !client.Ping(ctx) {
		appLogger.Fatal("Upstream connectivity check failed")
	}

	ingestor := service.NewIngestor(
		service.NewStockService(fetcher, repository.NewStockRepository(db.DB), appLogger),
		service.NewPriceService(fetcher, repository.NewDailyPriceRepository(db.DB), appLogger),
		service.NewIntradayService(fetcher, repository.NewIntradayPriceRepository(db.DB), appLogger),
		service.NewNewsService(fetcher, repository.NewNewsRepository(db.DB), appLogger),
		service.NewEventsService(fetcher, repository.NewEventRepository(db.DB), appLogger),
		appLogger,
	)

	targets := cfg.Backfill.Tickers
	if len(tickers) > 0 {
		targets = tickers
	}
	if len(targets) == 0 {
		appLogger.Fatal("No tickers configured for backfill")
	}

	opts := service.IngestOptions{
		Months:           cfg.Backfill.Months,
		IntradayInterval: cfg.Backfill.IntradayInterval,
		NewsLimit:        cfg.Backfill.NewsLimit,
		Delay:            time.Duration(cfg.Backfill.DelaySeconds) * time.Second,
	}

	summary, err := ingestor.Backfill(ctx, targets, opts)
	if err != nil {
		appLogger.Error("Backfill aborted", logger.ErrorField(err))
	}

	report := summary.Format()
	fmt.Println(report)
	printStatistics(ctx, fetchLogRepo, rotator)

	if cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Error("Failed to initialize Telegram notifier", logger.ErrorField(err))
			return
		}
		if err := notifier.SendMessage(report); err != nil {
			appLogger.Error("Failed to send Telegram summary", logger.ErrorField(err))
		}
	}
}

func printStatistics(ctx context.Context, fetchLogs repository.FetchLogRepository, rotator *keyring.Rotator) {
	stats, err := fetchLogs.Statistics(ctx, 1)
	if err != nil {
		return
	}
	fmt.Printf("Fetches today: %d total, %d ok, %d rate-limited, %.1f%% success\n",
		stats.TotalRequests, stats.Successful, stats.RateLimited, stats.SuccessRate)

	for index, count := range rotator.Usage() {
		fmt.Printf("  key %d: %d requests this run\n", index, count)
	}
}

func main() {
	rootCmd := &cobra.Command{Use: "backfill"}

	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	runCmd.Flags().StringSliceVarP(&tickers, "tickers", "t", nil, "Tickers to backfill (overrides config)")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing backfill CLI: %s\n", err)
		os.Exit(1)
	}
}
