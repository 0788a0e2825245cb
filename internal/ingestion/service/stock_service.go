package service

import (
	"context"
	"fmt"
	"strings"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/dto"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/utils"
)

// StockService ingests company master data from the OVERVIEW endpoint.
type StockService interface {
	FetchAndStore(ctx context.Context, ticker string) error
}

// NewStockService creates a new StockService.
func NewStockService(fetcher Fetcher, stocks repository.StockRepository, log *logger.Logger) StockService {
	return &stockService{fetcher: fetcher, stocks: stocks, log: log}
}

type stockService struct {
	fetcher Fetcher
	stocks  repository.StockRepository
	log     *logger.Logger
}

// FetchAndStore fetches the company overview and upserts it by ticker: an
// existing row is updated in place, otherwise a new row is inserted.
func (s *stockService) FetchAndStore(ctx context.Context, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncOverview, ticker, nil)
	if err != nil {
		return fmt.Errorf("fetch overview for %s: %w", ticker, err)
	}

	var overview dto.Overview
	if err := payload.Decode(&overview); err != nil {
		return fmt.Errorf("decode overview for %s: %w", ticker, err)
	}
	if overview.Symbol == "" || overview.Name == "" {
		return fmt.Errorf("overview for %s: %w", ticker, ErrMissingRequiredFields)
	}

	stock := buildStock(overview)

	exists, err := s.stocks.Exists(ctx, stock.Ticker)
	if err != nil {
		return fmt.Errorf("check stock existence for %s: %w", stock.Ticker, err)
	}

	if exists {
		s.log.InfoContext(ctx, "Stock already exists, updating", logger.StringField("ticker", stock.Ticker))
		if err := s.stocks.Update(ctx, &stock); err != nil {
			return fmt.Errorf("update stock %s: %w", stock.Ticker, err)
		}
		return nil
	}

	if err := s.stocks.Create(ctx, &stock); err != nil {
		return fmt.Errorf("insert stock %s: %w", stock.Ticker, err)
	}
	s.log.InfoContext(ctx, "Stock inserted",
		logger.StringField("ticker", stock.Ticker),
		logger.StringField("name", stock.Name))
	return nil
}

func buildStock(overview dto.Overview) entity.Stock {
	return entity.Stock{
		Ticker:      strings.ToUpper(overview.Symbol),
		Name:        overview.Name,
		Exchange:    optionalString(overview.Exchange),
		AssetType:   optionalString(overview.AssetType),
		Sector:      optionalString(overview.Sector),
		Industry:    optionalString(overview.Industry),
		MarketCap:   utils.ParseFloat(overview.MarketCapitalization),
		Description: optionalString(overview.Description),
		Country:     optionalString(overview.Country),
		Currency:    optionalString(overview.Currency),
		LastUpdated: timeNow(),
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" {
		return nil
	}
	return &s
}
