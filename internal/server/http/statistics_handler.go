package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/internal/server/dto"
	"alphavantage-pipeline/pkg/logger"
)

const defaultStatisticsDays = 7

// StatisticsHandler handles HTTP requests for fetch audit data. Aggregates
// are cached in memory since they scan the whole audit window.
type StatisticsHandler struct {
	fetchLogs repository.FetchLogRepository
	cache     *gocache.Cache
	logger    *logger.Logger
}

// NewStatisticsHandler creates a new StatisticsHandler.
func NewStatisticsHandler(fetchLogs repository.FetchLogRepository, cache *gocache.Cache, logger *logger.Logger) *StatisticsHandler {
	return &StatisticsHandler{fetchLogs: fetchLogs, cache: cache, logger: logger}
}

// RegisterRoutes registers the statistics routes to the Echo group.
func (h *StatisticsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/statistics", h.GetStatistics)
	g.GET("/fetch-logs", h.ListFetchLogs)
}

// GetStatistics godoc
// @Summary Get fetch statistics
// @Description Get aggregate fetch outcomes and per-key usage over the last N days
// @Tags statistics
// @Produce json
// @Param days query int false "Aggregation window in days" default(7)
// @Success 200 {object} dto.StatisticsResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /statistics [get]
func (h *StatisticsHandler) GetStatistics(c echo.Context) error {
	days, err := strconv.Atoi(c.QueryParam("days"))
	if err != nil || days <= 0 {
		days = defaultStatisticsDays
	}

	cacheKey := fmt.Sprintf("statistics:%d", days)
	if cached, ok := h.cache.Get(cacheKey); ok {
		return c.JSON(http.StatusOK, cached)
	}

	ctx := c.Request().Context()
	stats, err := h.fetchLogs.Statistics(ctx, days)
	if err != nil {
		h.logger.Error("Failed to compute fetch statistics", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute statistics"})
	}
	keyUsage, err := h.fetchLogs.KeyUsage(ctx, days)
	if err != nil {
		h.logger.Error("Failed to compute key usage", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute key usage"})
	}

	resp := &dto.StatisticsResponse{Days: days, Fetches: stats, KeyUsage: keyUsage}
	h.cache.Set(cacheKey, resp, gocache.DefaultExpiration)
	return c.JSON(http.StatusOK, resp)
}

// ListFetchLogs godoc
// @Summary List fetch audit logs
// @Description List recent fetch attempts, optionally filtered by endpoint and status
// @Tags statistics
// @Produce json
// @Param endpoint query string false "Endpoint function name"
// @Param status query string false "Outcome status (success, error, rate_limit, timeout)"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.FetchLog
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /fetch-logs [get]
func (h *StatisticsHandler) ListFetchLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var status entity.FetchStatus
	switch s := c.QueryParam("status"); s {
	case "":
	case string(entity.FetchStatusSuccess), string(entity.FetchStatusError),
		string(entity.FetchStatusRateLimit), string(entity.FetchStatusTimeout):
		status = entity.FetchStatus(s)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status"})
	}

	logs, err := h.fetchLogs.List(c.Request().Context(), c.QueryParam("endpoint"), status, limit)
	if err != nil {
		h.logger.Error("Failed to list fetch logs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list fetch logs"})
	}
	return c.JSON(http.StatusOK, logs)
}
