package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/internal/server/dto"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/utils"
)

const latestPriceCacheTTL = time.Minute

// PriceHandler handles HTTP requests for stored price series. The latest
// close per ticker is cached in Redis for a minute.
type PriceHandler struct {
	daily    repository.DailyPriceRepository
	intraday repository.IntradayPriceRepository
	redis    *redis.Client
	logger   *logger.Logger
}

// NewPriceHandler creates a new PriceHandler. redisClient may be nil, in
// which case the latest-price cache is skipped.
func NewPriceHandler(daily repository.DailyPriceRepository, intraday repository.IntradayPriceRepository, redisClient *redis.Client, logger *logger.Logger) *PriceHandler {
	return &PriceHandler{daily: daily, intraday: intraday, redis: redisClient, logger: logger}
}

// RegisterRoutes registers the price routes to the Echo group.
func (h *PriceHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/daily-prices", h.ListDailyPrices)
	g.GET("/intraday-prices", h.ListIntradayPrices)
	g.GET("/latest-price/:ticker", h.GetLatestPrice)
}

// ListDailyPrices godoc
// @Summary List daily price bars
// @Description List stored daily OHLCV bars for a ticker, newest first
// @Tags prices
// @Produce json
// @Param ticker query string true "Ticker symbol"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.DailyPrice
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /daily-prices [get]
func (h *PriceHandler) ListDailyPrices(c echo.Context) error {
	ticker := strings.ToUpper(c.QueryParam("ticker"))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticker is required"})
	}

	start, err := parseDateParam(c.QueryParam("start"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start date"})
	}
	end, err := parseDateParam(c.QueryParam("end"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end date"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	prices, err := h.daily.List(c.Request().Context(), ticker, start, end, limit)
	if err != nil {
		h.logger.Error("Failed to list daily prices", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list daily prices"})
	}
	return c.JSON(http.StatusOK, prices)
}

// ListIntradayPrices godoc
// @Summary List intraday price bars
// @Description List stored intraday OHLCV bars for a ticker and interval, newest first
// @Tags prices
// @Produce json
// @Param ticker query string true "Ticker symbol"
// @Param interval query string false "Bar interval" default(5min)
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.IntradayPrice
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /intraday-prices [get]
func (h *PriceHandler) ListIntradayPrices(c echo.Context) error {
	ticker := strings.ToUpper(c.QueryParam("ticker"))
	if ticker == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticker is required"})
	}
	interval := c.QueryParam("interval")
	if interval == "" {
		interval = "5min"
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	prices, err := h.intraday.List(c.Request().Context(), ticker, interval, nil, nil, limit)
	if err != nil {
		h.logger.Error("Failed to list intraday prices", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list intraday prices"})
	}
	return c.JSON(http.StatusOK, prices)
}

// GetLatestPrice godoc
// @Summary Get the latest daily bar
// @Description Get the most recent stored daily bar for a ticker
// @Tags prices
// @Produce json
// @Param ticker path string true "Ticker symbol"
// @Success 200 {object} dto.LatestPriceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /latest-price/{ticker} [get]
func (h *PriceHandler) GetLatestPrice(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))
	ctx := c.Request().Context()

	if cached := h.cachedLatest(ctx, ticker); cached != nil {
		return c.JSON(http.StatusOK, cached)
	}

	price, err := h.daily.Latest(ctx, ticker)
	if err != nil {
		h.logger.Error("Failed to get latest price", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get latest price"})
	}
	if price == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No prices stored for ticker"})
	}

	resp := &dto.LatestPriceResponse{
		Ticker: price.Ticker,
		Date:   price.Date,
		Open:   price.Open,
		High:   price.High,
		Low:    price.Low,
		Close:  price.Close,
		Volume: price.Volume,
	}
	h.storeLatest(ctx, ticker, resp)
	return c.JSON(http.StatusOK, resp)
}

func latestPriceKey(ticker string) string {
	return fmt.Sprintf("latest_price:%s", ticker)
}

func (h *PriceHandler) cachedLatest(ctx context.Context, ticker string) *dto.LatestPriceResponse {
	if h.redis == nil {
		return nil
	}
	raw, err := h.redis.Get(ctx, latestPriceKey(ticker)).Result()
	if err != nil {
		if err != redis.Nil {
			h.logger.Warn("Latest price cache read failed", logger.ErrorField(err))
		}
		return nil
	}
	var resp dto.LatestPriceResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	resp.Cached = true
	return &resp
}

func (h *PriceHandler) storeLatest(ctx context.Context, ticker string, resp *dto.LatestPriceResponse) {
	if h.redis == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, latestPriceKey(ticker), raw, latestPriceCacheTTL).Err(); err != nil {
		h.logger.Warn("Latest price cache write failed", logger.ErrorField(err))
	}
}

func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
