package entity

import "time"

// DailyPrice is one OHLCV bar per ticker and trading date. Re-fetching the
// same day overwrites the previous values.
type DailyPrice struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Ticker string    `gorm:"size:16;not null;uniqueIndex:idx_daily_prices_ticker_date" json:"ticker"`
	Date   time.Time `gorm:"type:date;not null;uniqueIndex:idx_daily_prices_ticker_date" json:"date"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *int64    `json:"volume,omitempty"`
}

// TableName specifies the table name for the DailyPrice model.
func (DailyPrice) TableName() string {
	return "daily_prices"
}

// IntradayPrice is one OHLCV bar per ticker, timestamp and interval.
// Rows older than the retention window are pruned per ticker.
type IntradayPrice struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Ticker      string    `gorm:"size:16;not null;uniqueIndex:idx_intraday_ticker_ts_interval" json:"ticker"`
	Timestamp   time.Time `gorm:"not null;uniqueIndex:idx_intraday_ticker_ts_interval" json:"timestamp"`
	Interval    string    `gorm:"size:8;not null;uniqueIndex:idx_intraday_ticker_ts_interval" json:"interval"`
	Open        *float64  `json:"open,omitempty"`
	High        *float64  `json:"high,omitempty"`
	Low         *float64  `json:"low,omitempty"`
	Close       *float64  `json:"close,omitempty"`
	Volume      *int64    `json:"volume,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// TableName specifies the table name for the IntradayPrice model.
func (IntradayPrice) TableName() string {
	return "intraday_prices"
}
