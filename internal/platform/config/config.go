package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, grouped by collaborator.
type Config struct {
	Server    Server
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	RequestTimeout time.Duration
}

// PostgresConfig configures the relational store. An empty URL selects the
// in-memory stores.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	TxTimeout       time.Duration
}

// RedisConfig configures the unread-count cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	UnreadTTL    time.Duration
	// BreakerCooldown is how long the unread cache stays bypassed after
	// repeated Redis failures before a trial call is let through.
	BreakerCooldown time.Duration
}

// KafkaConfig configures the audit stream. No brokers means audit events go
// to the structured log only.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	ClientID   string
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSigningKey  string
	Issuer         string
	AccessTokenTTL time.Duration
}

// RateLimitConfig bounds unauthenticated auth requests per client IP.
type RateLimitConfig struct {
	Disabled   bool
	AuthLimit  int
	AuthWindow time.Duration
}

// FromEnv builds the configuration from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// real environment variables win over it.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Server: Server{
			Addr:           getEnv("HIRETRACK_ADDR", ":8080"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			TxTimeout:       getDuration("DB_TX_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			UnreadTTL:    getDuration("UNREAD_COUNT_TTL", 30*time.Second),

			BreakerCooldown: getDuration("REDIS_BREAKER_COOLDOWN", 10*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "hiretrack.audit"),
			ClientID:   getEnv("KAFKA_CLIENT_ID", "hiretrack"),
		},
		Auth: AuthConfig{
			// Development default; override in every deployed environment.
			JWTSigningKey:  getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:         getEnv("JWT_ISSUER", "hiretrack"),
			AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Disabled:   getBool("RATE_LIMIT_DISABLED", false),
			AuthLimit:  getInt("RATE_LIMIT_AUTH_REQUESTS", 20),
			AuthWindow: getDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// splitList splits a comma-separated value, dropping blanks and repeats.
func splitList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
