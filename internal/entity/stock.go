package entity

import "time"

// Stock holds company master data keyed by ticker. Tickers are always
// stored uppercase.
type Stock struct {
	Ticker      string    `gorm:"primaryKey;size:16" json:"ticker"`
	Name        string    `gorm:"not null" json:"name"`
	Exchange    *string   `json:"exchange,omitempty"`
	AssetType   *string   `json:"asset_type,omitempty"`
	Sector      *string   `json:"sector,omitempty"`
	Industry    *string   `json:"industry,omitempty"`
	MarketCap   *float64  `json:"market_cap,omitempty"`
	Description *string   `json:"description,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Currency    *string   `json:"currency,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// TableName specifies the table name for the Stock model.
func (Stock) TableName() string {
	return "stocks"
}
