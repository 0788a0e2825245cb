package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/internal/server/dto"
	"alphavantage-pipeline/pkg/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Stock{},
		&entity.DailyPrice{},
		&entity.IntradayPrice{},
		&entity.News{},
		&entity.Event{},
		&entity.FetchLog{},
	))
	return db
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedStock(t *testing.T, db *gorm.DB, ticker, name string) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Stock{Ticker: ticker, Name: name, LastUpdated: time.Now()}).Error)
}

func TestStockHandler_GetStock(t *testing.T) {
	db := setupTestDB(t)
	seedStock(t, db, "AAPL", "Apple Inc")

	e := echo.New()
	h := NewStockHandler(repository.NewStockRepository(db), logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1/stocks"))

	rec := doRequest(e, http.MethodGet, "/api/v1/stocks/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var stock entity.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stock))
	assert.Equal(t, "Apple Inc", stock.Name)

	rec = doRequest(e, http.MethodGet, "/api/v1/stocks/MSFT")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStockHandler_ListStocks(t *testing.T) {
	db := setupTestDB(t)
	seedStock(t, db, "MSFT", "Microsoft Corp")
	seedStock(t, db, "AAPL", "Apple Inc")

	e := echo.New()
	h := NewStockHandler(repository.NewStockRepository(db), logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1/stocks"))

	rec := doRequest(e, http.MethodGet, "/api/v1/stocks")
	require.Equal(t, http.StatusOK, rec.Code)

	var stocks []entity.Stock
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stocks))
	require.Len(t, stocks, 2)
	assert.Equal(t, "AAPL", stocks[0].Ticker)
}

func TestPriceHandler_ListDailyPrices(t *testing.T) {
	db := setupTestDB(t)
	closePrice := 150.0
	require.NoError(t, db.Create(&entity.DailyPrice{
		Ticker: "AAPL",
		Date:   time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		Close:  &closePrice,
	}).Error)

	e := echo.New()
	h := NewPriceHandler(repository.NewDailyPriceRepository(db), repository.NewIntradayPriceRepository(db), nil, logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1"))

	rec := doRequest(e, http.MethodGet, "/api/v1/daily-prices?ticker=aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var prices []entity.DailyPrice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prices))
	assert.Len(t, prices, 1)

	rec = doRequest(e, http.MethodGet, "/api/v1/daily-prices")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/daily-prices?ticker=AAPL&start=bad-date")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceHandler_GetLatestPrice(t *testing.T) {
	db := setupTestDB(t)
	for day, price := range map[int]float64{12: 148.0, 14: 150.0, 13: 149.0} {
		p := price
		require.NoError(t, db.Create(&entity.DailyPrice{
			Ticker: "AAPL",
			Date:   time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
			Close:  &p,
		}).Error)
	}

	e := echo.New()
	h := NewPriceHandler(repository.NewDailyPriceRepository(db), repository.NewIntradayPriceRepository(db), nil, logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1"))

	rec := doRequest(e, http.MethodGet, "/api/v1/latest-price/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.LatestPriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Close)
	assert.Equal(t, 150.0, *resp.Close)
	assert.False(t, resp.Cached)

	rec = doRequest(e, http.MethodGet, "/api/v1/latest-price/MSFT")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventHandler_ListEvents(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&entity.Event{
		Ticker:    "AAPL",
		EventType: entity.EventTypeEarnings,
		EventDate: time.Date(2025, 12, 28, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, db.Create(&entity.Event{
		Ticker:    "AAPL",
		EventType: entity.EventTypeDividend,
		EventDate: time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC),
	}).Error)

	e := echo.New()
	h := NewEventHandler(repository.NewEventRepository(db), logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1/events"))

	rec := doRequest(e, http.MethodGet, "/api/v1/events?ticker=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []entity.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 2)

	rec = doRequest(e, http.MethodGet, "/api/v1/events?type=dividend")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventTypeDividend, events[0].EventType)

	rec = doRequest(e, http.MethodGet, "/api/v1/events?type=bogus")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatisticsHandler_GetStatistics(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewFetchLogRepository(db)
	for _, status := range []entity.FetchStatus{
		entity.FetchStatusSuccess,
		entity.FetchStatusSuccess,
		entity.FetchStatusRateLimit,
		entity.FetchStatusError,
	} {
		require.NoError(t, repo.Create(context.Background(), &entity.FetchLog{
			Endpoint: "TIME_SERIES_DAILY",
			Status:   status,
		}))
	}

	e := echo.New()
	cache := gocache.New(5*time.Minute, 10*time.Minute)
	h := NewStatisticsHandler(repo, cache, logger.NewNop())
	h.RegisterRoutes(e.Group("/api/v1"))

	rec := doRequest(e, http.MethodGet, "/api/v1/statistics?days=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.StatisticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.Fetches.TotalRequests)
	assert.Equal(t, int64(2), resp.Fetches.Successful)
	assert.Equal(t, int64(1), resp.Fetches.RateLimited)

	// Second call is served from the cache.
	_, cached := cache.Get("statistics:7")
	assert.True(t, cached)
	rec = doRequest(e, http.MethodGet, "/api/v1/statistics?days=7")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler_GetHealth(t *testing.T) {
	db := setupTestDB(t)

	e := echo.New()
	h := NewHealthHandler(db, nil, logger.NewNop())
	h.RegisterRoutes(e)

	rec := doRequest(e, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Empty(t, resp.Upstream)
}
