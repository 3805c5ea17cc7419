package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported warehouse drivers
const (
	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite3"
)

// WarehouseConfig holds data warehouse connection configuration
type WarehouseConfig struct {
	Driver          string
	DSN             string // used by postgres and sqlite3
	Snowflake       SnowflakeConfig
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SnowflakeConfig holds the Snowflake account settings
type SnowflakeConfig struct {
	Account   string
	Region    string
	User      string
	Password  string
	Role      string
	Warehouse string
	Database  string
	Schema    string
}

// FullAccount returns the account identifier including the region
func (c SnowflakeConfig) FullAccount() string {
	if c.Region == "" {
		return c.Account
	}
	return c.Account + "." + c.Region
}

// Missing lists the Snowflake environment variables that are not set
func (c SnowflakeConfig) Missing() []string {
	required := []struct {
		key   string
		value string
	}{
		{"SNOWFLAKE_ACCOUNT", c.Account},
		{"SNOWFLAKE_REGION", c.Region},
		{"SNOWFLAKE_USER", c.User},
		{"SNOWFLAKE_PASSWORD", c.Password},
		{"SNOWFLAKE_ROLE", c.Role},
		{"SNOWFLAKE_WAREHOUSE", c.Warehouse},
		{"SNOWFLAKE_DATABASE", c.Database},
		{"SNOWFLAKE_SCHEMA", c.Schema},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	return missing
}

// Validate validates the warehouse configuration
func (c *WarehouseConfig) Validate() error {
	switch c.Driver {
	case DriverSnowflake:
		if missing := c.Snowflake.Missing(); len(missing) > 0 {
			return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
		}
	case DriverPostgres, DriverSQLite:
		if c.DSN == "" {
			return fmt.Errorf("WAREHOUSE_DSN is required for driver %s", c.Driver)
		}
	default:
		return fmt.Errorf("unsupported warehouse driver: %q", c.Driver)
	}

	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be at least 1")
	}

	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}

	if c.ConnMaxLifetime < time.Minute {
		return fmt.Errorf("connection max lifetime must be at least 1 minute")
	}

	return nil
}
