package models

import (
	"encoding/json"
)

// Common constants
const (
	// DefaultTopTradersLimit is how many traders are detailed when the request names none
	DefaultTopTradersLimit = 5

	// MaxRequestAddresses caps the trader addresses accepted in one request
	MaxRequestAddresses = 100
)

// PortfolioAggregate is one TRADER_PORTFOLIO_AGG row for a category snapshot
type PortfolioAggregate struct {
	Token         *string   `json:"TOKEN" db:"token"`
	TokenAddress  *string   `json:"TOKEN_ADDRESS" db:"token_address"`
	Category      *string   `json:"CATEGORY" db:"category"`
	TotalValueUSD *float64  `json:"TOTAL_VALUE_USD" db:"total_value_usd"`
	TotalBalance  *float64  `json:"TOTAL_BALANCE" db:"total_balance"`
	TraderCount   *int64    `json:"TRADER_COUNT" db:"trader_count"`
	FetchDate     FetchDate `json:"FETCH_DATE" db:"fetch_date"`
}

// TraderDetail is one TRADERS row
type TraderDetail struct {
	DateAdded FetchDate `json:"DATE_ADDED" db:"date_added"`
	Address   *string   `json:"ADDRESS" db:"address"`
	Category  *string   `json:"CATEGORY" db:"category"`
	Freq      *int64    `json:"FREQ" db:"freq"`
}

// TokenInfo combines Birdeye metadata and trade data for one token address.
// Missing data is rendered as an empty object.
type TokenInfo struct {
	Metadata  json.RawMessage `json:"metadata"`
	TradeData json.RawMessage `json:"trade_data"`
}

// EmptyObject is the JSON rendering of a missing Birdeye entry
var EmptyObject = json.RawMessage(`{}`)

// NewTokenInfo builds a TokenInfo, substituting empty objects for missing parts
func NewTokenInfo(metadata, tradeData json.RawMessage) TokenInfo {
	return TokenInfo{
		Metadata:  orEmpty(metadata),
		TradeData: orEmpty(tradeData),
	}
}

func orEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return EmptyObject
	}
	return raw
}

// Portfolio is the data returned for a category
type Portfolio struct {
	Aggregates []PortfolioAggregate       `json:"data1"`
	Addresses  []string                   `json:"data2"`
	Traders    []TraderDetail             `json:"data3"`
	TokenData  map[string]any             `json:"token_data"`
	PriceData  map[string]json.RawMessage `json:"price_data,omitempty"`
	FetchDate  FetchDate                  `json:"-"`
}

// TokenAddresses returns the distinct non-empty token addresses of the aggregates
// in first-seen order.
func (p *Portfolio) TokenAddresses() []string {
	return UniqueTokenAddresses(p.Aggregates)
}

// UniqueTokenAddresses returns the distinct non-empty token addresses of rows
// in first-seen order.
func UniqueTokenAddresses(rows []PortfolioAggregate) []string {
	seen := make(map[string]struct{}, len(rows))
	var addresses []string
	for _, row := range rows {
		if row.TokenAddress == nil || *row.TokenAddress == "" {
			continue
		}
		if _, ok := seen[*row.TokenAddress]; ok {
			continue
		}
		seen[*row.TokenAddress] = struct{}{}
		addresses = append(addresses, *row.TokenAddress)
	}
	return addresses
}
