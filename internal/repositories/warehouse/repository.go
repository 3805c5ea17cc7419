// Package warehouse implements the read-only portfolio queries over database/sql.
package warehouse

import (
	"context"
	"database/sql"

	"trader-portfolio-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Pool is the connection source of the repository
type Pool interface {
	DB(ctx context.Context) (*sql.DB, error)
	Driver() string
	Close() error
}

// Repository implements repositories.Warehouse
type Repository struct {
	pool   Pool
	logger *logrus.Logger
}

// NewRepository creates a warehouse repository over a lazily opened pool
func NewRepository(pool Pool, logger *logrus.Logger) *Repository {
	if logger == nil {
		logger = logrus.New()
	}
	return &Repository{
		pool:   pool,
		logger: logger,
	}
}

// OpenSession reserves a connection for the duration of one invocation
func (r *Repository) OpenSession(ctx context.Context) (repositories.WarehouseSession, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, repositories.ConnectionError(err)
	}

	entry := r.logger.WithField("driver", r.pool.Driver())
	if id := repositories.RequestIDFromContext(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}

	return NewSession(conn, DialectFor(r.pool.Driver()), entry), nil
}

// Close closes the underlying pool
func (r *Repository) Close() error {
	return r.pool.Close()
}

var _ repositories.Warehouse = (*Repository)(nil)
