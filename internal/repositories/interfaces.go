package repositories

import (
	"context"

	"trader-portfolio-api/internal/models"
)

// Warehouse hands out read-only sessions against the data warehouse.
// One session is opened per invocation and closed when the invocation ends.
type Warehouse interface {
	OpenSession(ctx context.Context) (WarehouseSession, error)
	Close() error
}

// WarehouseSession groups the portfolio queries run during one invocation
type WarehouseSession interface {
	// MaxFetchDate returns the most recent FETCH_DATE for a category.
	// The result is not Valid when the category has no rows.
	MaxFetchDate(ctx context.Context, category string) (models.FetchDate, error)

	// PortfolioAggregates returns the TRADER_PORTFOLIO_AGG rows for a category snapshot
	PortfolioAggregates(ctx context.Context, category string, fetchDate models.FetchDate) ([]models.PortfolioAggregate, error)

	// TraderAddresses returns every trader address in a category
	TraderAddresses(ctx context.Context, category string) ([]string, error)

	// TopTraderAddresses returns the most frequent trader addresses in a category
	TopTraderAddresses(ctx context.Context, category string, limit int) ([]string, error)

	// TraderDetails returns the TRADERS rows for the given addresses ordered by address
	TraderDetails(ctx context.Context, addresses []string) ([]models.TraderDetail, error)

	// TokenData returns TOKEN_DATA rows keyed by token address
	TokenData(ctx context.Context, addresses []string) (map[string]models.WarehouseToken, error)

	Close() error
}
