package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
)

// NewsHandler handles HTTP requests for stored news articles.
type NewsHandler struct {
	news   repository.NewsRepository
	logger *logger.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(news repository.NewsRepository, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{news: news, logger: logger}
}

// RegisterRoutes registers the news routes to the Echo group.
func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListNews)
}

// ListNews godoc
// @Summary List news articles
// @Description List stored news articles, newest first
// @Tags news
// @Produce json
// @Param since_days query int false "Only articles published within the last N days"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.News
// @Failure 500 {object} dto.ErrorResponse
// @Router /news [get]
func (h *NewsHandler) ListNews(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	var since *time.Time
	if days, err := strconv.Atoi(c.QueryParam("since_days")); err == nil && days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		since = &cutoff
	}

	articles, err := h.news.List(c.Request().Context(), since, limit)
	if err != nil {
		h.logger.Error("Failed to list news", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list news"})
	}
	return c.JSON(http.StatusOK, articles)
}
