// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	PostgresURL     string
	Redis           RedisConfig
	Kafka           KafkaConfig
	JWTSigningKey   string
	IdentityBaseURL string
	WinnerCacheTTL  time.Duration
}

// RedisConfig configures the winner announcement cache. An empty URL disables
// Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the notification emitter. No brokers means events
// are recorded in memory only.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("LUCKYDRAW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	ttl := 24 * time.Hour
	if v := os.Getenv("WINNER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			ttl = parsed
		}
	}

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("POSTGRES_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   os.Getenv("KAFKA_WINNER_TOPIC"),
		},
		JWTSigningKey:   jwtSigningKey,
		IdentityBaseURL: os.Getenv("IDENTITY_BASE_URL"),
		WinnerCacheTTL:  ttl,
	}
}
