package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Aptos fullnode settings
	NodeURL           string
	AggregatorAddress string

	// HTTP API settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Panora pricing API
	PanoraBaseURL string
	PanoraAPIKey  string

	// Redis settings (optional; empty disables reserve caching and venue flags)
	RedisAddr string

	// ClickHouse settings (optional; empty disables trade history)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// AI assistant (optional)
	OpenRouterAPIKey string

	// Quote engine settings
	VenueTimeout    time.Duration
	ContractTimeout time.Duration

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

func Load() *Config {
	return &Config{
		// Aptos
		NodeURL:           getEnv("APTOS_NODE_URL", "https://fullnode.mainnet.aptoslabs.com/v1"),
		AggregatorAddress: getEnv("AGGREGATOR_ADDRESS", "0x45636581cf77d041cd74a8f3ec0e97edbb0a3f827de5a004eb832a31aacba127"),

		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Panora
		PanoraBaseURL: getEnv("PANORA_BASE_URL", "https://api.panora.exchange/v1"),
		PanoraAPIKey:  getEnv("PANORA_API_KEY", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "dexonic"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),

		// Quote engine
		VenueTimeout:    getDurationEnv("VENUE_TIMEOUT", 5*time.Second),
		ContractTimeout: getDurationEnv("CONTRACT_TIMEOUT", 10*time.Second),

		// HTTP client
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 15*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 2),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 500*time.Millisecond),
	}
}

// Validate checks settings that would otherwise only fail at first use
func (c *Config) Validate() error {
	if c.NodeURL == "" {
		return fmt.Errorf("APTOS_NODE_URL must not be empty")
	}
	if c.AggregatorAddress == "" {
		return fmt.Errorf("AGGREGATOR_ADDRESS must not be empty")
	}
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR must not be empty")
	}
	if c.VenueTimeout <= 0 || c.ContractTimeout <= 0 {
		return fmt.Errorf("quote timeouts must be positive")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
