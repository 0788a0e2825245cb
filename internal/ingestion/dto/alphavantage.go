package dto

import (
	"strings"

	"alphavantage-pipeline/pkg/utils"
)

// Score is a sentiment or relevance score that the provider serializes
// either as a JSON number or as a quoted string. Unparsable values decode
// to nil instead of failing the article.
type Score struct {
	Float *float64
}

// UnmarshalJSON never returns an error; malformed scores become nil.
func (s *Score) UnmarshalJSON(data []byte) error {
	s.Float = utils.ParseFloat(strings.Trim(string(data), `"`))
	return nil
}

// Overview is the flat company-overview payload. Every field arrives as a
// string; numeric ones are normalized downstream.
type Overview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Exchange             string `json:"Exchange"`
	AssetType            string `json:"AssetType"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	Description          string `json:"Description"`
	Country              string `json:"Country"`
	Currency             string `json:"Currency"`
	DividendPerShare     string `json:"DividendPerShare"`
	DividendYield        string `json:"DividendYield"`
	ExDividendDate       string `json:"ExDividendDate"`
	LatestQuarter        string `json:"LatestQuarter"`
}

// TimeSeriesBar is one OHLCV entry of a daily or intraday time series. The
// provider prefixes each field name with an ordinal.
type TimeSeriesBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// NewsArticle is one entry of the NEWS_SENTIMENT feed.
type NewsArticle struct {
	Title                 string            `json:"title"`
	URL                   string            `json:"url"`
	TimePublished         string            `json:"time_published"`
	Source                string            `json:"source"`
	Summary               string            `json:"summary"`
	Topics                []NewsTopic       `json:"topics"`
	OverallSentimentScore Score             `json:"overall_sentiment_score"`
	OverallSentimentLabel string            `json:"overall_sentiment_label"`
	TickerSentiment       []TickerSentiment `json:"ticker_sentiment"`
}

// NewsTopic is one topic tag on an article.
type NewsTopic struct {
	Topic          string `json:"topic"`
	RelevanceScore Score  `json:"relevance_score"`
}

// TickerSentiment is the per-ticker sentiment sub-object of an article.
type TickerSentiment struct {
	Ticker string `json:"ticker"`
	Score  Score  `json:"ticker_sentiment_score"`
	Label  string `json:"ticker_sentiment_label"`
}

// QuarterlyEarning is one entry of the EARNINGS quarterly list.
type QuarterlyEarning struct {
	FiscalDateEnding string `json:"fiscalDateEnding"`
	ReportedDate     string `json:"reportedDate"`
	ReportedEPS      string `json:"reportedEPS"`
}
