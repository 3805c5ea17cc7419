package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"trader-portfolio-api/internal/adapters/cache"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"
	"trader-portfolio-api/internal/tracing"

	"github.com/sirupsen/logrus"
)

// Token sources
const (
	TokenSourceBirdeye   = "birdeye"
	TokenSourceWarehouse = "warehouse"
)

// TokenServiceConfig holds token service settings
type TokenServiceConfig struct {
	Source         string
	BatchSize      int
	PriceBatchSize int
}

// tokenService implements the TokenProvider interface
type tokenService struct {
	birdeye    BirdeyeAPI
	birdeyeErr error
	cache      cache.Cache
	config     TokenServiceConfig
	logger     *logrus.Logger
}

// NewTokenService creates a token provider. birdeyeErr is the reason the client
// could not be built and is reported when a request needs Birdeye.
func NewTokenService(api BirdeyeAPI, birdeyeErr error, c cache.Cache, cfg TokenServiceConfig, logger *logrus.Logger) TokenProvider {
	if logger == nil {
		logger = logrus.New()
	}
	if c == nil {
		c = cache.Nop{}
	}
	if cfg.Source == "" {
		cfg.Source = TokenSourceBirdeye
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.PriceBatchSize <= 0 {
		cfg.PriceBatchSize = 100
	}
	return &tokenService{
		birdeye:    api,
		birdeyeErr: birdeyeErr,
		cache:      c,
		config:     cfg,
		logger:     logger,
	}
}

// Ready reports whether the configured source can serve a request
func (s *tokenService) Ready(includePrices bool) error {
	switch s.config.Source {
	case TokenSourceWarehouse:
		if includePrices {
			return s.birdeyeReady()
		}
		return nil
	case TokenSourceBirdeye:
		return s.birdeyeReady()
	default:
		return fmt.Errorf("%w: unknown token source %q", ErrTokenSourceConfig, s.config.Source)
	}
}

func (s *tokenService) birdeyeReady() error {
	if s.birdeye != nil {
		return nil
	}
	if s.birdeyeErr != nil {
		return fmt.Errorf("%w: %w", ErrTokenSourceConfig, s.birdeyeErr)
	}
	return fmt.Errorf("%w: birdeye client not configured", ErrTokenSourceConfig)
}

// TokenData returns token data keyed by address from the configured source
func (s *tokenService) TokenData(ctx context.Context, session repositories.WarehouseSession, addresses []string) (map[string]any, error) {
	unique := CleanAddresses(addresses)
	result := make(map[string]any, len(unique))
	if len(unique) == 0 {
		s.logger.Info("No token addresses provided for fetching token data")
		return result, nil
	}

	if s.config.Source == TokenSourceWarehouse {
		return s.warehouseTokenData(ctx, session, unique)
	}

	if err := s.birdeyeReady(); err != nil {
		return nil, err
	}

	// A failed cache read turns writes off for this call so a down cache costs one timeout
	hits, cacheUp := s.cachedTokens(ctx, unique)
	missing := make([]string, 0, len(unique))
	for _, address := range unique {
		if info, ok := hits[address]; ok {
			result[address] = info
			continue
		}
		missing = append(missing, address)
	}

	batches := BatchAddresses(missing, s.config.BatchSize)
	s.logger.WithFields(logrus.Fields{
		"addresses":  len(unique),
		"cache_hits": len(unique) - len(missing),
		"batches":    len(batches),
	}).Info("Fetching token data")

	for idx, batch := range batches {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}

		infos, err := s.fetchTokenBatch(ctx, batch)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"batch": idx + 1,
				"total": len(batches),
			}).Error("Error fetching token data for batch")
			continue
		}

		for address, info := range infos {
			result[address] = info
		}
		if cacheUp {
			cacheUp = s.storeTokens(ctx, infos)
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}

	s.logger.WithField("tokens", len(result)).Info("Compiled token data")
	return result, nil
}

// fetchTokenBatch fetches metadata and trade data for one batch of addresses
func (s *tokenService) fetchTokenBatch(ctx context.Context, batch []string) (map[string]models.TokenInfo, error) {
	listAddress := strings.Join(batch, ",")

	var metadata, tradeData map[string]json.RawMessage
	err := tracing.Capture(ctx, "Birdeye.TokenBatch", func(ctx context.Context) error {
		resp, err := s.birdeye.MetadataMultiple(ctx, listAddress)
		if err != nil {
			return fmt.Errorf("metadata: %w", err)
		}
		if metadata, err = resp.DataMap(); err != nil {
			return fmt.Errorf("metadata: %w", err)
		}

		resp, err = s.birdeye.TradeDataMultiple(ctx, listAddress)
		if err != nil {
			return fmt.Errorf("trade data: %w", err)
		}
		if tradeData, err = resp.DataMap(); err != nil {
			return fmt.Errorf("trade data: %w", err)
		}

		tracing.AddMetadata(ctx, "birdeye.batch_size", len(batch))
		return nil
	})
	if err != nil {
		return nil, err
	}

	infos := make(map[string]models.TokenInfo, len(batch))
	for _, address := range batch {
		infos[address] = models.NewTokenInfo(metadata[address], tradeData[address])
	}
	return infos, nil
}

func (s *tokenService) warehouseTokenData(ctx context.Context, session repositories.WarehouseSession, addresses []string) (map[string]any, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: warehouse token source needs a session", ErrTokenSourceConfig)
	}

	tokens, err := session.TokenData(ctx, addresses)
	if err != nil {
		return nil, wrapQueryError(ctx, err)
	}

	result := make(map[string]any, len(tokens))
	for address, token := range tokens {
		result[address] = token
	}

	s.logger.WithField("tokens", len(result)).Info("Fetched token data from warehouse")
	return result, nil
}

// PriceData returns 24h price and volume keyed by address
func (s *tokenService) PriceData(ctx context.Context, addresses []string) (map[string]json.RawMessage, error) {
	unique := CleanAddresses(addresses)
	result := make(map[string]json.RawMessage, len(unique))
	if len(unique) == 0 {
		return result, nil
	}

	if err := s.birdeyeReady(); err != nil {
		return nil, err
	}

	batches := BatchAddresses(unique, s.config.PriceBatchSize)
	for idx, batch := range batches {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}

		resp, err := s.birdeye.PriceVolumeMulti(ctx, strings.Join(batch, ","), "24h")
		var prices map[string]json.RawMessage
		if err == nil {
			prices, err = resp.DataMap()
		}
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"batch": idx + 1,
				"total": len(batches),
			}).Error("Error fetching price data for batch")
			continue
		}

		for _, address := range batch {
			price, ok := prices[address]
			if !ok || len(price) == 0 || string(price) == "null" {
				price = models.EmptyObject
			}
			result[address] = price
		}
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}

	s.logger.WithField("tokens", len(result)).Info("Compiled price data")
	return result, nil
}

func (s *tokenService) cachedTokens(ctx context.Context, addresses []string) (map[string]models.TokenInfo, bool) {
	entries, err := s.cache.GetMany(ctx, addresses)
	if err != nil {
		return nil, false
	}

	infos := make(map[string]models.TokenInfo, len(entries))
	for address, data := range entries {
		var info models.TokenInfo
		if err := json.Unmarshal(data, &info); err != nil {
			s.logger.WithError(err).WithField("address", address).Warn("Discarding unreadable cache entry")
			continue
		}
		infos[address] = models.NewTokenInfo(info.Metadata, info.TradeData)
	}
	return infos, true
}

// storeTokens caches one batch and reports whether the cache is still usable
func (s *tokenService) storeTokens(ctx context.Context, infos map[string]models.TokenInfo) bool {
	entries := make(map[string][]byte, len(infos))
	for address, info := range infos {
		data, err := json.Marshal(info)
		if err != nil {
			continue
		}
		entries[address] = data
	}
	return s.cache.SetMany(ctx, entries) == nil
}

// CleanAddresses trims addresses, drops blanks and removes duplicates, keeping first-seen order
func CleanAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	result := make([]string, 0, len(addresses))
	for _, address := range addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		result = append(result, address)
	}
	return result
}

// BatchAddresses splits addresses into batches of at most size
func BatchAddresses(addresses []string, size int) [][]string {
	if size <= 0 {
		size = len(addresses)
	}
	var batches [][]string
	for start := 0; start < len(addresses); start += size {
		end := start + size
		if end > len(addresses) {
			end = len(addresses)
		}
		batches = append(batches, addresses[start:end])
	}
	return batches
}
