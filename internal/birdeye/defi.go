package birdeye

import (
	"context"
	"net/url"
	"strconv"
)

const defiPrefix = "/defi"

// DefiService covers price, trade and OHLCV endpoints
type DefiService struct {
	client *Client
}

// TimeRange bounds a historical query in unix seconds. Zero values are omitted.
type TimeRange struct {
	From int64
	To   int64
}

func (r TimeRange) apply(params url.Values) {
	setOptional(params, "time_from", r.From)
	setOptional(params, "time_to", r.To)
}

// MultiPriceOptions are the optional parameters of MultiPrice
type MultiPriceOptions struct {
	CheckLiquidity   *float64
	IncludeLiquidity *bool
}

// MultiPrice returns prices for a comma-separated list of token addresses
func (s *DefiService) MultiPrice(ctx context.Context, listAddress string, opts MultiPriceOptions) (*Response, error) {
	params := url.Values{}
	if opts.CheckLiquidity != nil {
		params.Set("check_liquidity", strconv.FormatFloat(*opts.CheckLiquidity, 'f', -1, 64))
	}
	if opts.IncludeLiquidity != nil {
		params.Set("include_liquidity", strconv.FormatBool(*opts.IncludeLiquidity))
	}
	body := map[string]string{"list_address": listAddress}
	return s.client.post(ctx, defiPrefix+"/multi_price", params, body)
}

// HistoricalPrice returns price history for an address
func (s *DefiService) HistoricalPrice(ctx context.Context, address, addressType, interval string, window TimeRange) (*Response, error) {
	if addressType == "" {
		addressType = "token"
	}
	if interval == "" {
		interval = "15m"
	}
	params := url.Values{
		"address":      {address},
		"address_type": {addressType},
		"type":         {interval},
	}
	window.apply(params)
	return s.client.get(ctx, defiPrefix+"/history_price", params)
}

// HistoricalPriceUnix returns the price of a token at a unix time. A zero time means now.
func (s *DefiService) HistoricalPriceUnix(ctx context.Context, address string, unixTime int64) (*Response, error) {
	params := url.Values{"address": {address}}
	setOptional(params, "unixtime", unixTime)
	return s.client.get(ctx, defiPrefix+"/historical_price_unix", params)
}

// TradeQuery pages through trades
type TradeQuery struct {
	Offset   int
	Limit    int
	TxType   string
	SortType string
}

func (q TradeQuery) params(address string) url.Values {
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.TxType == "" {
		q.TxType = "swap"
	}
	if q.SortType == "" {
		q.SortType = "desc"
	}
	return url.Values{
		"address":   {address},
		"offset":    {strconv.Itoa(q.Offset)},
		"limit":     {strconv.Itoa(q.Limit)},
		"tx_type":   {q.TxType},
		"sort_type": {q.SortType},
	}
}

// TokenTrades returns trades of a token
func (s *DefiService) TokenTrades(ctx context.Context, address string, q TradeQuery) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/txs/token", q.params(address))
}

// PairTrades returns trades of a pair
func (s *DefiService) PairTrades(ctx context.Context, address string, q TradeQuery) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/txs/pair", q.params(address))
}

// OHLCV returns candles for a token
func (s *DefiService) OHLCV(ctx context.Context, address, interval string, window TimeRange) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/ohlcv", ohlcvParams(url.Values{"address": {address}}, interval, window))
}

// PairOHLCV returns candles for a pair
func (s *DefiService) PairOHLCV(ctx context.Context, address, interval string, window TimeRange) (*Response, error) {
	return s.client.get(ctx, defiPrefix+"/ohlcv/pair", ohlcvParams(url.Values{"address": {address}}, interval, window))
}

// BaseQuoteOHLCV returns candles for a base/quote token combination
func (s *DefiService) BaseQuoteOHLCV(ctx context.Context, baseAddress, quoteAddress, interval string, window TimeRange) (*Response, error) {
	params := url.Values{
		"base_address":  {baseAddress},
		"quote_address": {quoteAddress},
	}
	return s.client.get(ctx, defiPrefix+"/ohlcv/base_quote", ohlcvParams(params, interval, window))
}

// PriceVolumeMulti returns price and volume for a comma-separated list of token addresses
func (s *DefiService) PriceVolumeMulti(ctx context.Context, listAddress, interval string) (*Response, error) {
	if interval == "" {
		interval = "24h"
	}
	body := map[string]string{
		"list_address": listAddress,
		"type":         interval,
	}
	return s.client.post(ctx, defiPrefix+"/price_volume/multi", nil, body)
}

func ohlcvParams(params url.Values, interval string, window TimeRange) url.Values {
	if interval == "" {
		interval = "15m"
	}
	params.Set("type", interval)
	window.apply(params)
	return params
}
