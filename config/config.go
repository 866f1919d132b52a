package config

import (
	"os"
	"strconv"
	"time"

	"sjsage522/pricechecker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Google Sheets configuration
	SheetID         string
	CredentialsFile string
	ConfigSheetName string
	DataSheetName   string

	// Fetch configuration
	FetchTimeout   time.Duration
	RateLimitBlock time.Duration

	// Memcache configuration, empty disables rate limit blocking
	MemcacheAddr string

	// Redis configuration, empty disables the stream recorder
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Postgres configuration, empty disables the history recorder
	DatabaseURL string

	// Prometheus Pushgateway, empty disables pushing run metrics
	PushgatewayURL string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "15"))
	rateLimitBlock, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "10000"))

	return &Config{
		SheetID:              getEnv("SOURCE_SHEET_ID", ""),
		CredentialsFile:      getEnv("GOOGLE_SHEET_CREDS_JSON", ""),
		ConfigSheetName:      getEnv("CONFIG_SHEET_NAME", "Config - URL"),
		DataSheetName:        getEnv("DATA_SHEET_NAME", "python-data"),
		FetchTimeout:         time.Duration(fetchTimeout) * time.Second,
		RateLimitBlock:       time.Duration(rateLimitBlock) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "prices"),
		RedisStreamMaxLength: redisStreamMaxLength,
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		PushgatewayURL:       getEnv("PUSHGATEWAY_URL", ""),
		Environment:          getEnv("PRICECHECK_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for missing or invalid values
func (c *Config) Validate() error {
	if c.SheetID == "" {
		return errors.NewConfiguration("SOURCE_SHEET_ID is required", nil)
	}
	if c.CredentialsFile == "" {
		return errors.NewConfiguration("GOOGLE_SHEET_CREDS_JSON is required", nil)
	}
	if c.ConfigSheetName == "" || c.DataSheetName == "" {
		return errors.NewConfiguration("sheet names must not be empty", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.RateLimitBlock < 0 {
		return errors.NewConfiguration("RATE_LIMIT_BLOCK_SECONDS must not be negative", nil)
	}
	if c.RedisAddr != "" && c.RedisStream == "" {
		return errors.NewConfiguration("REDIS_STREAM is required when REDIS_ADDR is set", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
