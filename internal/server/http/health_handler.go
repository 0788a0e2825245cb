package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"alphavantage-pipeline/internal/server/dto"
	"alphavantage-pipeline/pkg/logger"
)

// UpstreamPinger probes the market-data provider with a lightweight request.
type UpstreamPinger interface {
	Ping(ctx context.Context) bool
}

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	db     *gorm.DB
	pinger UpstreamPinger
	logger *logger.Logger
}

// NewHealthHandler creates a new HealthHandler. pinger may be nil to skip
// the upstream probe.
func NewHealthHandler(db *gorm.DB, pinger UpstreamPinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, pinger: pinger, logger: logger}
}

// RegisterRoutes registers the health route on the Echo instance.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.GetHealth)
}

// GetHealth godoc
// @Summary Service health
// @Description Check database connectivity and, when probe=true, the upstream provider
// @Tags health
// @Produce json
// @Param probe query bool false "Also probe the upstream provider"
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c echo.Context) error {
	ctx := c.Request().Context()
	resp := dto.HealthResponse{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	if h.pinger != nil && c.QueryParam("probe") == "true" {
		if h.pinger.Ping(ctx) {
			resp.Upstream = "ok"
		} else {
			h.logger.Warn("Upstream probe failed")
			resp.Status = "degraded"
			resp.Upstream = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	return c.JSON(code, resp)
}
