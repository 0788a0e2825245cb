package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
)

// StockHandler handles HTTP requests for stored company master data.
type StockHandler struct {
	stocks repository.StockRepository
	logger *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stocks repository.StockRepository, logger *logger.Logger) *StockHandler {
	return &StockHandler{stocks: stocks, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListStocks)
	g.GET("/:ticker", h.GetStock)
}

// ListStocks godoc
// @Summary List tracked stocks
// @Description List all stocks in ticker order
// @Tags stocks
// @Produce json
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} entity.Stock
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [get]
func (h *StockHandler) ListStocks(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	stocks, err := h.stocks.List(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list stocks", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to list stocks"})
	}
	return c.JSON(http.StatusOK, stocks)
}

// GetStock godoc
// @Summary Get a stock by ticker
// @Description Get a single stock by its ticker symbol
// @Tags stocks
// @Produce json
// @Param ticker path string true "Ticker symbol"
// @Success 200 {object} entity.Stock
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks/{ticker} [get]
func (h *StockHandler) GetStock(c echo.Context) error {
	ticker := strings.ToUpper(c.Param("ticker"))

	stock, err := h.stocks.FindByTicker(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("Failed to get stock", logger.StringField("ticker", ticker), logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get stock"})
	}
	if stock == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Stock not found"})
	}
	return c.JSON(http.StatusOK, stock)
}
