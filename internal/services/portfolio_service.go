package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"trader-portfolio-api/internal/adapters/storage"
	"trader-portfolio-api/internal/models"
	"trader-portfolio-api/internal/repositories"
	"trader-portfolio-api/internal/tracing"

	"github.com/sirupsen/logrus"
)

// portfolioService implements the PortfolioService interface
type portfolioService struct {
	warehouse  repositories.Warehouse
	tokens     TokenProvider
	snapshots  storage.SnapshotStore
	topTraders int
	logger     *logrus.Logger
}

// NewPortfolioService creates a new portfolio service instance
func NewPortfolioService(
	warehouse repositories.Warehouse,
	tokens TokenProvider,
	snapshots storage.SnapshotStore,
	topTraders int,
	logger *logrus.Logger,
) PortfolioService {
	if snapshots == nil {
		snapshots = storage.NopStore{}
	}
	if topTraders <= 0 {
		topTraders = models.DefaultTopTradersLimit
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &portfolioService{
		warehouse:  warehouse,
		tokens:     tokens,
		snapshots:  snapshots,
		topTraders: topTraders,
		logger:     logger,
	}
}

// GetPortfolio returns the latest portfolio snapshot of a category
func (s *portfolioService) GetPortfolio(ctx context.Context, req *models.PortfolioRequest) (*models.Portfolio, error) {
	if req == nil {
		return nil, fmt.Errorf("portfolio request cannot be nil")
	}

	logger := s.logger.WithFields(logrus.Fields{
		"category":   req.Category,
		"request_id": repositories.RequestIDFromContext(ctx),
	})

	var session repositories.WarehouseSession
	err := tracing.Capture(ctx, "Warehouse.OpenSession", func(ctx context.Context) error {
		var err error
		session, err = s.warehouse.OpenSession(ctx)
		return err
	})
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		logger.WithError(err).Error("Failed to open warehouse session")
		return nil, fmt.Errorf("%w: %w", ErrDataSourceUnavailable, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close warehouse session")
		}
	}()

	if err := s.tokens.Ready(req.IncludePrices); err != nil {
		logger.WithError(err).Error("Token source is not configured")
		return nil, err
	}

	fetchDate, err := session.MaxFetchDate(ctx, req.Category)
	if err != nil {
		return nil, wrapQueryError(ctx, err)
	}
	if !fetchDate.Valid {
		logger.Info("No data found for category")
		return &models.Portfolio{}, nil
	}
	logger = logger.WithField("fetch_date", fetchDate.String())
	tracing.AddAnnotation(ctx, "category", req.Category)

	portfolio := &models.Portfolio{FetchDate: fetchDate}

	err = tracing.Capture(ctx, "Warehouse.Portfolio", func(ctx context.Context) error {
		var err error
		if portfolio.Aggregates, err = session.PortfolioAggregates(ctx, req.Category, fetchDate); err != nil {
			return err
		}
		if portfolio.Addresses, err = session.TraderAddresses(ctx, req.Category); err != nil {
			return err
		}

		addresses := CleanAddresses(req.Addresses)
		if len(addresses) == 0 {
			if addresses, err = session.TopTraderAddresses(ctx, req.Category, s.topTraders); err != nil {
				return err
			}
		}

		portfolio.Traders, err = session.TraderDetails(ctx, addresses)
		return err
	})
	if err != nil {
		logger.WithError(err).Error("Error querying portfolio data")
		return nil, wrapQueryError(ctx, err)
	}

	tokenAddresses := portfolio.TokenAddresses()
	logger.WithFields(logrus.Fields{
		"aggregates": len(portfolio.Aggregates),
		"traders":    len(portfolio.Traders),
		"tokens":     len(tokenAddresses),
	}).Info("Fetched portfolio rows")

	err = tracing.Capture(ctx, "Tokens.Enrich", func(ctx context.Context) error {
		var err error
		if portfolio.TokenData, err = s.tokens.TokenData(ctx, session, tokenAddresses); err != nil {
			return err
		}
		if req.IncludePrices {
			portfolio.PriceData, err = s.tokens.PriceData(ctx, tokenAddresses)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.saveSnapshot(ctx, logger, req.Category, portfolio)

	return portfolio, nil
}

// saveSnapshot archives the assembled portfolio. Failures are logged only.
func (s *portfolioService) saveSnapshot(ctx context.Context, logger *logrus.Entry, category string, portfolio *models.Portfolio) {
	if _, ok := s.snapshots.(storage.NopStore); ok {
		return
	}

	data, err := json.Marshal(map[string]any{"data": portfolio})
	if err != nil {
		logger.WithError(err).Warn("Failed to encode portfolio snapshot")
		return
	}

	key := storage.SnapshotKey(category, portfolio.FetchDate.String())
	opts := &storage.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"category":   category,
			"fetch-date": portfolio.FetchDate.String(),
		},
	}
	if err := s.snapshots.Put(ctx, key, data, opts); err != nil {
		logger.WithError(err).WithField("key", key).Warn("Failed to store portfolio snapshot")
		return
	}
	logger.WithField("key", key).Debug("Stored portfolio snapshot")
}

// wrapQueryError classifies a warehouse error as a timeout or a query failure
func wrapQueryError(ctx context.Context, err error) error {
	if isTimeout(ctx, err) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrQuery, err)
}

func isTimeout(ctx context.Context, err error) bool {
	return repositories.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded)
}
