package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"

	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/config"
	"alphavantage-pipeline/internal/ingestion/keyring"
	"alphavantage-pipeline/internal/ingestion/service"
	"alphavantage-pipeline/internal/repository"
	_ "alphavantage-pipeline/internal/server/docs"
	delivery "alphavantage-pipeline/internal/server/http"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/postgres"
	"alphavantage-pipeline/pkg/redis"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the pipeline service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Pipeline Service", logger.Field("name", cfg.App.Name))

	// Initialize database
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

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db.DB)
	dailyRepo := repository.NewDailyPriceRepository(db.DB)
	intradayRepo := repository.NewIntradayPriceRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)
	eventRepo := repository.NewEventRepository(db.DB)
	fetchLogRepo := repository.NewFetchLogRepository(db.DB)

	// Initialize the upstream fetch client
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

	// Initialize ingestion services
	priceSvc := service.NewPriceService(fetcher, dailyRepo, appLogger)
	intradaySvc := service.NewIntradayService(fetcher, intradayRepo, appLogger)
	newsSvc := service.NewNewsService(fetcher, newsRepo, appLogger)

	// Start the periodic refresh scheduler
	scheduler := service.NewRefreshScheduler(priceSvc, intradaySvc, newsSvc, newsRepo, &cfg.Scheduler, &cfg.Backfill, appLogger)
	if err := scheduler.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start refresh scheduler", logger.ErrorField(err))
	}
	defer scheduler.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	stockHandler := delivery.NewStockHandler(stockRepo, appLogger)
	stockHandler.RegisterRoutes(apiV1.Group("/stocks"))

	priceHandler := delivery.NewPriceHandler(dailyRepo, intradayRepo, redisClient.Client, appLogger)
	priceHandler.RegisterRoutes(apiV1)

	newsHandler := delivery.NewNewsHandler(newsRepo, appLogger)
	newsHandler.RegisterRoutes(apiV1.Group("/news"))

	eventHandler := delivery.NewEventHandler(eventRepo, appLogger)
	eventHandler.RegisterRoutes(apiV1.Group("/events"))

	statsCache := gocache.New(5*time.Minute, 10*time.Minute)
	statsHandler := delivery.NewStatisticsHandler(fetchLogRepo, statsCache, appLogger)
	statsHandler.RegisterRoutes(apiV1)

	healthHandler := delivery.NewHealthHandler(db.DB, client, appLogger)
	healthHandler.RegisterRoutes(e)

	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Market Data Pipeline API
// @version 1.0
// @description Read-only API over ingested market data.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
