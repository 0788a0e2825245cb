package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"alphavantage-pipeline/internal/entity"
	"alphavantage-pipeline/internal/ingestion/alphavantage"
	"alphavantage-pipeline/internal/ingestion/dto"
	"alphavantage-pipeline/internal/repository"
	"alphavantage-pipeline/pkg/logger"
	"alphavantage-pipeline/pkg/utils"
)

// NewsQuery narrows a NEWS_SENTIMENT fetch. Ticker scopes the feed to one
// symbol; Topics is the provider's comma-separated topic filter.
type NewsQuery struct {
	Ticker string
	Topics []string
	Limit  int
}

// NewsService ingests sentiment-scored news articles.
type NewsService interface {
	FetchAndStore(ctx context.Context, query NewsQuery) (int, error)
}

// NewNewsService creates a new NewsService.
func NewNewsService(fetcher Fetcher, news repository.NewsRepository, log *logger.Logger) NewsService {
	return &newsService{fetcher: fetcher, news: news, log: log}
}

type newsService struct {
	fetcher Fetcher
	news    repository.NewsRepository
	log     *logger.Logger
}

// FetchAndStore fetches the news feed for the query and inserts articles that
// are not already stored. Returns the number of newly inserted articles.
func (s *newsService) FetchAndStore(ctx context.Context, query NewsQuery) (int, error) {
	ticker := strings.ToUpper(strings.TrimSpace(query.Ticker))

	// NEWS_SENTIMENT scopes the feed via the tickers parameter, not symbol.
	params := map[string]string{}
	if ticker != "" {
		params["tickers"] = ticker
	}
	if len(query.Topics) > 0 {
		params["topics"] = strings.Join(query.Topics, ",")
	}
	if query.Limit > 0 {
		params["limit"] = strconv.Itoa(query.Limit)
	}

	payload, err := s.fetcher.Fetch(ctx, alphavantage.FuncNewsSentiment, "", params)
	if err != nil {
		return 0, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}

	var feed []dto.NewsArticle
	ok, err := payload.DecodeKey("feed", &feed)
	if err != nil {
		return 0, fmt.Errorf("decode news feed for %s: %w", ticker, err)
	}
	if !ok || len(feed) == 0 {
		s.log.WarnContext(ctx, "No news feed in response", logger.StringField("ticker", ticker))
		return 0, nil
	}

	inserted := 0
	for _, article := range feed {
		if strings.TrimSpace(article.URL) == "" {
			continue
		}
		record := s.buildNews(ticker, article)

		created, err := s.news.CreateIgnoreConflict(ctx, record)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to store news article",
				logger.StringField("url", article.URL),
				logger.ErrorField(err))
			return inserted, err
		}
		if created {
			inserted++
		}
	}

	s.log.InfoContext(ctx, "Stored news articles",
		logger.StringField("ticker", ticker),
		logger.IntField("fetched", len(feed)),
		logger.IntField("inserted", inserted))
	return inserted, nil
}

func (s *newsService) buildNews(ticker string, article dto.NewsArticle) *entity.News {
	topics := make(pq.StringArray, 0, len(article.Topics))
	for _, t := range article.Topics {
		if t.Topic != "" {
			topics = append(topics, t.Topic)
		}
	}

	var tickerScore *float64
	for _, ts := range article.TickerSentiment {
		if strings.EqualFold(ts.Ticker, ticker) {
			tickerScore = ts.Score.Float
			break
		}
	}

	return &entity.News{
		Headline:             article.Title,
		URL:                  article.URL,
		Source:               article.Source,
		Summary:              article.Summary,
		PublishedAt:          utils.ParseCompactTime(article.TimePublished),
		SentimentScore:       article.OverallSentimentScore.Float,
		SentimentLabel:       article.OverallSentimentLabel,
		TickerSentimentScore: tickerScore,
		Topics:               topics,
	}
}
