package birdeye

import (
	"context"
	"net/url"
	"strconv"
)

// TokenService covers token level endpoints
type TokenService struct {
	client *Client
}

// Security returns the security report of a token
func (s *TokenService) Security(ctx context.Context, address string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/token_security", url.Values{"address": {address}})
}

// Overview returns the overview of a token
func (s *TokenService) Overview(ctx context.Context, address string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/token_overview", url.Values{"address": {address}})
}

// CreationInfo returns the creation transaction of a token
func (s *TokenService) CreationInfo(ctx context.Context, address string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/token_creation_info", url.Values{"address": {address}})
}

// Trending returns trending tokens
func (s *TokenService) Trending(ctx context.Context, sortBy, sortType string, offset, limit int) (*Response, error) {
	if sortBy == "" {
		sortBy = "rank"
	}
	if sortType == "" {
		sortType = "asc"
	}
	if limit == 0 {
		limit = 20
	}
	params := url.Values{
		"sort_by":   {sortBy},
		"sort_type": {sortType},
		"offset":    {strconv.Itoa(offset)},
		"limit":     {strconv.Itoa(limit)},
	}
	return s.client.get(ctx, defiPrefix+"/token_trending", params)
}

// NewListings returns recently listed tokens. A zero timeTo means now.
func (s *TokenService) NewListings(ctx context.Context, timeTo int64, limit int, memePlatformEnabled bool) (*Response, error) {
	if limit == 0 {
		limit = 10
	}
	params := url.Values{
		"limit":                 {strconv.Itoa(limit)},
		"meme_platform_enabled": {strconv.FormatBool(memePlatformEnabled)},
	}
	setOptional(params, "time_to", timeTo)
	return s.client.get(ctx, defiPrefix+"/v2/tokens/new_listing", params)
}

// TopTradersQuery selects the top traders of a token
type TopTradersQuery struct {
	TimeFrame string
	SortType  string
	SortBy    string
	Offset    int
	Limit     int
}

// TopTraders returns the top traders of a token
func (s *TokenService) TopTraders(ctx context.Context, address string, q TopTradersQuery) (*Response, error) {
	if q.TimeFrame == "" {
		q.TimeFrame = "24h"
	}
	if q.SortType == "" {
		q.SortType = "desc"
	}
	if q.SortBy == "" {
		q.SortBy = "volume"
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	params := url.Values{
		"address":    {address},
		"time_frame": {q.TimeFrame},
		"sort_type":  {q.SortType},
		"sort_by":    {q.SortBy},
		"offset":     {strconv.Itoa(q.Offset)},
		"limit":      {strconv.Itoa(q.Limit)},
	}
	return s.client.get(ctx, defiPrefix+"/v2/tokens/top_traders", params)
}

// MetadataMultiple returns metadata for a comma-separated list of token addresses
func (s *TokenService) MetadataMultiple(ctx context.Context, listAddress string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/v3/token/meta-data/multiple", url.Values{"list_address": {listAddress}})
}

// TradeDataMultiple returns trade data for a comma-separated list of token addresses
func (s *TokenService) TradeDataMultiple(ctx context.Context, listAddress string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/v3/token/trade-data/multiple", url.Values{"list_address": {listAddress}})
}

// MarketData returns market data of a token
func (s *TokenService) MarketData(ctx context.Context, address string) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/v3/token/market-data", url.Values{"address": {address}})
}

// TopHolders returns the largest holders of a token
func (s *TokenService) TopHolders(ctx context.Context, address string, offset, limit int) (*Response, error) {
	if limit == 0 {
		limit = 100
	}
	params := url.Values{
		"address": {address},
		"offset":  {strconv.Itoa(offset)},
		"limit":   {strconv.Itoa(limit)},
	}
	return s.client.get(ctx, defiPrefix+"/v3/token/holder", params)
}
