package currency

import (
	"time"
)

// Currency is immutable token metadata. Amounts denominated in a currency are
// always interpreted at its Decimals scale.
type Currency struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	CurrencyID string    `gorm:"size:32;uniqueIndex:ux_currencies_currency_id" json:"currency_id"`
	Blockchain string    `gorm:"size:32;uniqueIndex:ux_currencies_chain_token" json:"blockchain"`
	TokenID    string    `gorm:"size:64;uniqueIndex:ux_currencies_chain_token" json:"token_id"`
	Symbol     string    `gorm:"size:16" json:"symbol"`
	Decimals   uint32    `gorm:"not null" json:"decimals"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Currency) TableName() string { return "currencies" }

// ExchangeRate is an immutable price observation for a base/quote pair.
// BidPrice/AskPrice are integer strings scaled to the platform's fixed quote
// precision (18); a new observation is always a new row.
type ExchangeRate struct {
	ID              uint64    `gorm:"primaryKey;column:id" json:"-"`
	RateID          string    `gorm:"size:32;uniqueIndex:ux_exchange_rates_rate_id" json:"rate_id"`
	BaseCurrencyID  string    `gorm:"size:32;index:idx_exchange_rates_pair" json:"base_currency_id"`
	QuoteCurrencyID string    `gorm:"size:32;index:idx_exchange_rates_pair" json:"quote_currency_id"`
	BidPrice        string    `gorm:"type:decimal(65,0)" json:"bid_price"`
	AskPrice        string    `gorm:"type:decimal(65,0)" json:"ask_price"`
	Source          string    `gorm:"size:64" json:"source"`
	SourceDate      time.Time `gorm:"index" json:"source_date"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }
