package server

import (
	"context"
	"errors"
	"fmt"

	"trader-portfolio-api/internal/adapters/cache"
	"trader-portfolio-api/internal/adapters/storage"
	"trader-portfolio-api/internal/birdeye"
	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/database"
	"trader-portfolio-api/internal/middleware"
	"trader-portfolio-api/internal/repositories"
	"trader-portfolio-api/internal/repositories/warehouse"
	"trader-portfolio-api/internal/services"
	"trader-portfolio-api/internal/tracing"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *logrus.Logger
	PortfolioService services.PortfolioService
	TokenService     services.TokenProvider
	AuthService      *middleware.AuthService

	// Internal dependencies
	Connector *database.Connector
	warehouse repositories.Warehouse
	cache     cache.Cache
	snapshots storage.SnapshotStore
	birdeye   *birdeye.Client
}

// NewContainer creates a new dependency injection container.
// No network connection is made; the warehouse pool opens on the first session.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := config.SetupLogging(cfg.Log)
	tracing.Enable(cfg.Invocation.TracingEnabled)

	connector := database.NewConnector(&cfg.Warehouse, logger)
	return build(ctx, cfg, logger, connector)
}

// NewContainerWithConnector creates a container over an existing connector
func NewContainerWithConnector(ctx context.Context, cfg *config.Config, connector *database.Connector, logger *logrus.Logger) (*Container, error) {
	if logger == nil {
		logger = logrus.New()
	}
	return build(ctx, cfg, logger, connector)
}

func build(ctx context.Context, cfg *config.Config, logger *logrus.Logger, connector *database.Connector) (*Container, error) {
	container := &Container{
		Config:      cfg,
		Logger:      logger,
		Connector:   connector,
		AuthService: middleware.NewAuthService(&middleware.AuthConfig{JWTSecret: cfg.Server.JWTSecret}),
		warehouse:   warehouse.NewRepository(connector, logger),
	}

	// A missing key is reported per request, so the process still starts
	client, birdeyeErr := birdeye.NewClient(cfg.Birdeye, birdeye.WithLogger(logger))
	var api services.BirdeyeAPI
	if birdeyeErr == nil {
		container.birdeye = client
		api = services.NewBirdeyeAPI(client)
	} else {
		logger.WithError(birdeyeErr).Warn("Birdeye client not configured")
	}

	tokenCache, err := cache.New(cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}
	container.cache = tokenCache

	snapshots, err := storage.CreateFromConfig(ctx, &storage.StorageConfig{
		Type:     cfg.Snapshot.Type,
		BasePath: cfg.Snapshot.LocalPath,
		Bucket:   cfg.Snapshot.S3Bucket,
		Region:   cfg.Snapshot.S3Region,
	})
	if err != nil {
		_ = tokenCache.Close()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	container.snapshots = snapshots

	serviceContainer, err := services.NewServiceContainer(services.ServiceDependencies{
		Warehouse:  container.warehouse,
		Birdeye:    api,
		BirdeyeErr: birdeyeErr,
		Cache:      tokenCache,
		Snapshots:  snapshots,
		Logger:     logger,
	}, cfg.Tokens)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	container.PortfolioService = serviceContainer.PortfolioService
	container.TokenService = serviceContainer.TokenService

	logger.WithFields(logrus.Fields{
		"driver":         connector.Driver(),
		"token_source":   cfg.Tokens.Source,
		"cache_type":     cfg.Cache.Type,
		"snapshot_type":  cfg.Snapshot.Type,
		"tracing":        tracing.Enabled(),
		"auth_required":  container.AuthService.Enabled(),
		"birdeye_config": birdeyeErr == nil,
	}).Info("Service container initialized")

	return container, nil
}

// Birdeye returns the Birdeye client, or nil when no API key is configured
func (c *Container) Birdeye() *birdeye.Client {
	return c.birdeye
}

// Close cleans up all resources
func (c *Container) Close() error {
	var errs []error

	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}

	if c.snapshots != nil {
		if err := c.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close snapshot store: %w", err))
		}
	}

	if c.warehouse != nil {
		if err := c.warehouse.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close warehouse: %w", err))
		}
	}

	return errors.Join(errs...)
}
