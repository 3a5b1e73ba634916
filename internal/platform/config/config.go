package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process-level configuration. Built from environment
// variables so main stays lean; empty backend settings select the in-memory
// implementations.
type Config struct {
	Addr string

	// PostgresDSN selects the postgres-backed stores when non-empty.
	PostgresDSN string

	// RedisURL enables the rate-limit middleware when non-empty.
	RedisURL string

	// KafkaBrokers enables the Kafka audit publisher when non-empty
	// (comma-separated broker list).
	KafkaBrokers string
	KafkaTopic   string

	JWTSigningKey string

	// FlushInterval is the period of the background auto-flush sweep.
	FlushInterval time.Duration

	// RateLimitPerMinute caps requests per client IP per minute.
	RateLimitPerMinute int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("VAULTNET_ADDR", ":8080"),
		PostgresDSN:        os.Getenv("VAULTNET_POSTGRES_DSN"),
		RedisURL:           os.Getenv("VAULTNET_REDIS_URL"),
		KafkaBrokers:       os.Getenv("VAULTNET_KAFKA_BROKERS"),
		KafkaTopic:         envOr("VAULTNET_KAFKA_TOPIC", "vaultnet.audit"),
		JWTSigningKey:      envOr("VAULTNET_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		FlushInterval:      envDurationOr("VAULTNET_FLUSH_INTERVAL", time.Hour),
		RateLimitPerMinute: envIntOr("VAULTNET_RATE_LIMIT_PER_MINUTE", 300),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
