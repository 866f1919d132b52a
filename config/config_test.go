package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/pricechecker/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "", config.SheetID)
	assert.Equal(t, "Config - URL", config.ConfigSheetName)
	assert.Equal(t, "python-data", config.DataSheetName)
	assert.Equal(t, 15*time.Second, config.FetchTimeout)
	assert.Equal(t, 300*time.Second, config.RateLimitBlock)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "prices", config.RedisStream)
	assert.Equal(t, 10000, config.RedisStreamMaxLength)
	assert.Equal(t, "development", config.Environment)

	// Test with environment variables
	t.Setenv("SOURCE_SHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SHEET_CREDS_JSON", "/tmp/creds.json")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "30")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DATA_SHEET_NAME", "history")

	config = LoadConfig()
	assert.Equal(t, "sheet-123", config.SheetID)
	assert.Equal(t, "/tmp/creds.json", config.CredentialsFile)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 2, config.RedisDB)
	assert.Equal(t, "history", config.DataSheetName)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SheetID:         "sheet-123",
			CredentialsFile: "/tmp/creds.json",
			ConfigSheetName: "Config - URL",
			DataSheetName:   "python-data",
			FetchTimeout:    15 * time.Second,
			RateLimitBlock:  time.Minute,
		}
	}

	assert.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing sheet id", func(c *Config) { c.SheetID = "" }},
		{"missing credentials", func(c *Config) { c.CredentialsFile = "" }},
		{"missing data sheet", func(c *Config) { c.DataSheetName = "" }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"negative block", func(c *Config) { c.RateLimitBlock = -time.Second }},
		{"redis without stream", func(c *Config) { c.RedisAddr = "localhost:6379"; c.RedisStream = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrorTypeConfiguration))
		})
	}
}
