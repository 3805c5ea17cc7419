package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"trader-portfolio-api/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/snowflakedb/gosnowflake"
)

// pingTimeout bounds the connectivity check done when the pool is first opened
const pingTimeout = 5 * time.Second

// Connector lazily opens one connection pool per process and shares it across
// invocations. A failed open is retried on the next call.
type Connector struct {
	config *config.WarehouseConfig
	logger *logrus.Logger

	mu sync.Mutex
	db *sql.DB
}

// NewConnector creates a new connector. No connection is made until DB is called.
func NewConnector(cfg *config.WarehouseConfig, logger *logrus.Logger) *Connector {
	if logger == nil {
		logger = logrus.New()
	}
	return &Connector{
		config: cfg,
		logger: logger,
	}
}

// NewConnectorWithDB wraps an already opened pool
func NewConnectorWithDB(cfg *config.WarehouseConfig, db *sql.DB, logger *logrus.Logger) *Connector {
	c := NewConnector(cfg, logger)
	c.db = db
	return c
}

// Driver returns the configured driver name
func (c *Connector) Driver() string {
	return c.config.Driver
}

// DB returns the shared pool, opening it on first use
func (c *Connector) DB(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	if err := c.config.Validate(); err != nil {
		c.logger.WithError(err).Error("Invalid warehouse configuration")
		return nil, err
	}

	dsn, err := BuildDSN(c.config)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(c.connectionFields()).Info("Opening warehouse connection pool")

	db, err := sql.Open(c.config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}

	db.SetMaxOpenConns(c.config.MaxOpenConns)
	db.SetMaxIdleConns(c.config.MaxIdleConns)
	db.SetConnMaxLifetime(c.config.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("warehouse ping failed: %w", err)
	}

	c.db = db
	c.logger.WithField("driver", c.config.Driver).Info("Connection to warehouse successful")
	return db, nil
}

// Close closes the pool if it was opened
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil

	if err != nil {
		return fmt.Errorf("failed to close warehouse connection: %w", err)
	}

	c.logger.Info("Warehouse connection closed")
	return nil
}

// HealthCheck pings the warehouse and runs a trivial query
func (c *Connector) HealthCheck(ctx context.Context) error {
	db, err := c.DB(ctx)
	if err != nil {
		return err
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	return nil
}

// connectionFields returns the non-sensitive connection parameters for logging
func (c *Connector) connectionFields() logrus.Fields {
	if c.config.Driver != config.DriverSnowflake {
		return logrus.Fields{"driver": c.config.Driver}
	}
	sf := c.config.Snowflake
	return logrus.Fields{
		"driver":    c.config.Driver,
		"account":   sf.FullAccount(),
		"user":      sf.User,
		"role":      sf.Role,
		"warehouse": sf.Warehouse,
		"database":  sf.Database,
		"schema":    sf.Schema,
	}
}

// BuildDSN returns the driver-specific data source name
func BuildDSN(cfg *config.WarehouseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSnowflake:
		sf := cfg.Snowflake
		dsn, err := gosnowflake.DSN(&gosnowflake.Config{
			Account:   sf.FullAccount(),
			User:      sf.User,
			Password:  sf.Password,
			Role:      sf.Role,
			Warehouse: sf.Warehouse,
			Database:  sf.Database,
			Schema:    sf.Schema,
		})
		if err != nil {
			return "", fmt.Errorf("failed to build snowflake DSN: %w", err)
		}
		return dsn, nil
	case config.DriverPostgres, config.DriverSQLite:
		return cfg.DSN, nil
	default:
		return "", fmt.Errorf("unsupported warehouse driver: %q", cfg.Driver)
	}
}
