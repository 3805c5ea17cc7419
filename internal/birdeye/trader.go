package birdeye

import (
	"context"
	"net/url"
	"strconv"
)

// TraderService covers trader ranking endpoints
type TraderService struct {
	client *Client
}

// GainersLosersQuery selects a trader ranking
type GainersLosersQuery struct {
	Period   string
	SortBy   string
	SortType string
	Offset   int
	Limit    int
}

// GainersLosers returns the traders with the largest gains or losses over a period
func (s *TraderService) GainersLosers(ctx context.Context, q GainersLosersQuery) (*Response, error) {
	if q.Period == "" {
		q.Period = "1W"
	}
	if q.SortBy == "" {
		q.SortBy = "PnL"
	}
	if q.SortType == "" {
		q.SortType = "desc"
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	params := url.Values{
		"type":      {q.Period},
		"sort_by":   {q.SortBy},
		"sort_type": {q.SortType},
		"offset":    {strconv.Itoa(q.Offset)},
		"limit":     {strconv.Itoa(q.Limit)},
	}
	return s.client.get(ctx, "/top_traders/gainers-losers", params)
}
