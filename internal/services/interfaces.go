package services

import (
	"context"
	"encoding/json"
	"errors"

	"trader-portfolio-api/internal/birdeye"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"
)

// Service errors mapped to responses by the handlers
var (
	// ErrDataSourceUnavailable is returned when no warehouse session could be opened
	ErrDataSourceUnavailable = errors.New("failed to connect to data source")

	// ErrTokenSourceConfig is returned when the configured token source cannot be used
	ErrTokenSourceConfig = errors.New("token source misconfigured")

	// ErrQuery is returned when a warehouse query fails
	ErrQuery = errors.New("error querying data")

	// ErrTimeout is returned when the invocation deadline is reached
	ErrTimeout = errors.New("request timed out")
)

// PortfolioService defines the portfolio read operation
type PortfolioService interface {
	// GetPortfolio returns the latest portfolio snapshot of a category.
	// The returned portfolio has no valid FetchDate when the category has no data.
	GetPortfolio(ctx context.Context, req *models.PortfolioRequest) (*models.Portfolio, error)
}

// TokenProvider gathers token data for token addresses
type TokenProvider interface {
	// Ready reports whether the configured source can serve a request
	Ready(includePrices bool) error

	// TokenData returns token data keyed by address
	TokenData(ctx context.Context, session repositories.WarehouseSession, addresses []string) (map[string]any, error)

	// PriceData returns 24h price and volume keyed by address
	PriceData(ctx context.Context, addresses []string) (map[string]json.RawMessage, error)
}

// BirdeyeAPI is the subset of the Birdeye client used for token enrichment
type BirdeyeAPI interface {
	MetadataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error)
	TradeDataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error)
	PriceVolumeMulti(ctx context.Context, listAddress, interval string) (*birdeye.Response, error)
}

// birdeyeAPI adapts *birdeye.Client to BirdeyeAPI
type birdeyeAPI struct {
	client *birdeye.Client
}

// NewBirdeyeAPI wraps a Birdeye client
func NewBirdeyeAPI(client *birdeye.Client) BirdeyeAPI {
	return &birdeyeAPI{client: client}
}

func (a *birdeyeAPI) MetadataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error) {
	return a.client.Token.MetadataMultiple(ctx, listAddress)
}

func (a *birdeyeAPI) TradeDataMultiple(ctx context.Context, listAddress string) (*birdeye.Response, error) {
	return a.client.Token.TradeDataMultiple(ctx, listAddress)
}

func (a *birdeyeAPI) PriceVolumeMulti(ctx context.Context, listAddress, interval string) (*birdeye.Response, error) {
	return a.client.Defi.PriceVolumeMulti(ctx, listAddress, interval)
}
