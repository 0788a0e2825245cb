package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
)

// EventHandler handles HTTP requests for stored corporate events.
type EventHandler struct {
	events repository.EventRepository
	logger *logger.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events repository.EventRepository, logger *logger.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// RegisterRoutes registers the event routes to the Echo group.
func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListEvents)
}

// ListEvents godoc
// @Summary List corporate events
// @Description List stored earnings, dividend and split events, newest first
// @Tags events
// @Produce json
// @Param ticker query string false "Ticker symbol"
// @Param type query string false "Event type (earnings, dividend, split)"
// @Param since_days query int false "Only events within the last N days"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.Event
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(c echo.Context) error {
	ticker := strings.ToUpper(c.QueryParam("ticker"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var eventType entity.EventType
	switch t := c.QueryParam("type"); t {
	case "":
	case string(entity.EventTypeEarnings), string(entity.EventTypeDividend), string(entity.EventTypeSplit):
		eventType = entity.EventType(t)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid event type"})
	}

	var since *time.Time
	if days, err := strconv.Atoi(c.QueryParam("since_days")); err == nil && days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		since = &cutoff
	}

	events, err := h.events.List(c.Request().Context(), ticker, eventType, since, limit)
	if err != nil {
		h.logger.Error("Failed to list events", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list events"})
	}
	return c.JSON(http.StatusOK, events)
}
