package services

import (
	"fmt"

	"trader-portfolio-api/internal/adapters/cache"
	"trader-portfolio-api/internal/adapters/storage"
	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	PortfolioService PortfolioService
	TokenService     TokenProvider
}

// ServiceDependencies holds the adapters the services are built on
type ServiceDependencies struct {
	Warehouse repositories.Warehouse

	// Birdeye is nil when no API key is configured; BirdeyeErr says why
	Birdeye    BirdeyeAPI
	BirdeyeErr error

	Cache     cache.Cache
	Snapshots storage.SnapshotStore
	Logger    *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(deps ServiceDependencies, cfg config.TokenConfig) (*ServiceContainer, error) {
	if deps.Warehouse == nil {
		return nil, fmt.Errorf("warehouse cannot be nil")
	}

	switch cfg.Source {
	case "", TokenSourceBirdeye, TokenSourceWarehouse:
	default:
		return nil, fmt.Errorf("unsupported token source: %s", cfg.Source)
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.New()
	}

	// Create token service
	tokenService := NewTokenService(deps.Birdeye, deps.BirdeyeErr, deps.Cache, TokenServiceConfig{
		Source:         cfg.Source,
		BatchSize:      cfg.BatchSize,
		PriceBatchSize: cfg.PriceBatchSize,
	}, logger)

	// Create portfolio service
	portfolioService := NewPortfolioService(
		deps.Warehouse,
		tokenService,
		deps.Snapshots,
		cfg.TopTradersLimit,
		logger,
	)

	return &ServiceContainer{
		PortfolioService: portfolioService,
		TokenService:     tokenService,
	}, nil
}
