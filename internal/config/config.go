package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Log         LogConfig
	Warehouse   WarehouseConfig
	Birdeye     BirdeyeConfig
	Tokens      TokenConfig
	Cache       CacheConfig
	Snapshot    SnapshotConfig
	Server      ServerConfig
	Invocation  InvocationConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// BirdeyeConfig holds the Birdeye public API client configuration
type BirdeyeConfig struct {
	APIKey    string
	BaseURL   string
	Chain     string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// TokenConfig controls how token data is gathered for a portfolio
type TokenConfig struct {
	Source          string // "birdeye" or "warehouse"
	BatchSize       int
	PriceBatchSize  int
	TopTradersLimit int
}

// CacheConfig holds token cache configuration
type CacheConfig struct {
	Type          string // "none", "memory" or "redis"
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SnapshotConfig holds response snapshot archive configuration
type SnapshotConfig struct {
	Type      string // "none", "local" or "s3"
	LocalPath string
	S3Bucket  string
	S3Region  string
}

// ServerConfig holds HTTP surface configuration shared by Lambda and the dev server
type ServerConfig struct {
	AllowedOrigin  string
	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
}

// InvocationConfig holds per-invocation limits
type InvocationConfig struct {
	DeadlineMargin time.Duration
	TracingEnabled bool
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8081")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("WAREHOUSE_DRIVER", "snowflake")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("BIRDSEYE_BASE_URL", "https://public-api.birdeye.so")
	v.SetDefault("BIRDSEYE_CHAIN", "solana")
	v.SetDefault("BIRDSEYE_TIMEOUT", "10s")
	v.SetDefault("BIRDSEYE_RATE_LIMIT", 15)
	v.SetDefault("BIRDSEYE_BURST", 5)
	v.SetDefault("TOKEN_SOURCE", "birdeye")
	v.SetDefault("TOKEN_BATCH_SIZE", 10)
	v.SetDefault("PRICE_BATCH_SIZE", 100)
	v.SetDefault("TOP_TRADERS_LIMIT", 5)
	v.SetDefault("CACHE_TYPE", "none")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SNAPSHOT_TYPE", "none")
	v.SetDefault("SNAPSHOT_PATH", "./data/snapshots")
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("INVOCATION_DEADLINE_MARGIN", "500ms")
	v.SetDefault("TRACING_ENABLED", false)

	config := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Warehouse: WarehouseConfig{
			Driver:          strings.ToLower(v.GetString("WAREHOUSE_DRIVER")),
			DSN:             v.GetString("WAREHOUSE_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			Snowflake: SnowflakeConfig{
				Account:   v.GetString("SNOWFLAKE_ACCOUNT"),
				Region:    v.GetString("SNOWFLAKE_REGION"),
				User:      v.GetString("SNOWFLAKE_USER"),
				Password:  v.GetString("SNOWFLAKE_PASSWORD"),
				Role:      v.GetString("SNOWFLAKE_ROLE"),
				Warehouse: v.GetString("SNOWFLAKE_WAREHOUSE"),
				Database:  v.GetString("SNOWFLAKE_DATABASE"),
				Schema:    v.GetString("SNOWFLAKE_SCHEMA"),
			},
		},
		Birdeye: BirdeyeConfig{
			APIKey:    v.GetString("BIRDSEYE_API_KEY"),
			BaseURL:   strings.TrimRight(v.GetString("BIRDSEYE_BASE_URL"), "/"),
			Chain:     v.GetString("BIRDSEYE_CHAIN"),
			Timeout:   v.GetDuration("BIRDSEYE_TIMEOUT"),
			RateLimit: v.GetFloat64("BIRDSEYE_RATE_LIMIT"),
			Burst:     v.GetInt("BIRDSEYE_BURST"),
		},
		Tokens: TokenConfig{
			Source:          strings.ToLower(v.GetString("TOKEN_SOURCE")),
			BatchSize:       v.GetInt("TOKEN_BATCH_SIZE"),
			PriceBatchSize:  v.GetInt("PRICE_BATCH_SIZE"),
			TopTradersLimit: v.GetInt("TOP_TRADERS_LIMIT"),
		},
		Cache: CacheConfig{
			Type:          strings.ToLower(v.GetString("CACHE_TYPE")),
			TTL:           v.GetDuration("CACHE_TTL"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Snapshot: SnapshotConfig{
			Type:      strings.ToLower(v.GetString("SNAPSHOT_TYPE")),
			LocalPath: v.GetString("SNAPSHOT_PATH"),
			S3Bucket:  v.GetString("SNAPSHOT_BUCKET"),
			S3Region:  v.GetString("AWS_REGION"),
		},
		Server: ServerConfig{
			AllowedOrigin:  v.GetString("ALLOWED_ORIGIN"),
			JWTSecret:      v.GetString("AUTH_JWT_SECRET"),
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Invocation: InvocationConfig{
			DeadlineMargin: v.GetDuration("INVOCATION_DEADLINE_MARGIN"),
			TracingEnabled: v.GetBool("TRACING_ENABLED"),
		},
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
