// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development default; production overrides
// via APPEAL_* variables.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresURL enables the durable case and outbox stores. Empty means
	// in-memory stores (development and unit tests).
	PostgresURL string

	// Redis backs the payment idempotency keys. Empty means in-memory.
	Redis RedisConfig

	// KafkaBrokers enables the audit outbox publisher. Empty disables it.
	KafkaBrokers  []string
	AuditTopic    string
	JWTSigningKey string

	// WebhookSecret is the payment provider's shared signing secret.
	WebhookSecret    string
	WebhookTolerance time.Duration

	OCRBaseURL    string
	OCRTimeout    time.Duration
	LetterBaseURL string
	LetterTimeout time.Duration

	ShutdownTimeout time.Duration
}

// RedisConfig mirrors the go-redis client knobs we actually tune.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("APPEAL_ADDR", ":8080"),
		PostgresURL: os.Getenv("APPEAL_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("APPEAL_REDIS_URL"),
			PoolSize:     envIntOr("APPEAL_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("APPEAL_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDurationOr("APPEAL_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("APPEAL_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("APPEAL_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		KafkaBrokers:  splitNonEmpty(os.Getenv("APPEAL_KAFKA_BROKERS")),
		AuditTopic:    envOr("APPEAL_AUDIT_TOPIC", "appeal.audit"),
		JWTSigningKey: envOr("APPEAL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),

		WebhookSecret:    envOr("APPEAL_WEBHOOK_SECRET", "whsec-dev-only"),
		WebhookTolerance: envDurationOr("APPEAL_WEBHOOK_TOLERANCE", 5*time.Minute),

		OCRBaseURL:    envOr("APPEAL_OCR_URL", "http://localhost:9081"),
		OCRTimeout:    envDurationOr("APPEAL_OCR_TIMEOUT", 20*time.Second),
		LetterBaseURL: envOr("APPEAL_LETTER_URL", "http://localhost:9082"),
		LetterTimeout: envDurationOr("APPEAL_LETTER_TIMEOUT", 60*time.Second),

		ShutdownTimeout: envDurationOr("APPEAL_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}
