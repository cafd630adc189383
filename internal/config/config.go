// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config captures runtime configuration values for the exercise tracker.
type Config struct {
	HTTPAddress         string
	StoreBackend        string
	MongoURL            string
	MongoDatabase       string
	MongoConnectTimeout time.Duration
	PostgresURL         string
	StoreMaxConns       int
	KafkaBrokers        []string
	KafkaTopicPrefix    string
	PublishTimeout      time.Duration
	CORSOrigins         []string
	RequestTimeout      time.Duration
	ShutdownTimeout     time.Duration
	LogLevel            string
	LogFormat           string
}

// Load reads an optional .env file and then environment variables into Config,
// applying defaults for local dev.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddress:         getEnv("HTTP_ADDRESS", ":"+getEnv("PORT", "3000")),
		StoreBackend:        strings.ToLower(getEnv("STORE_BACKEND", "")),
		MongoURL:            getEnv("MONGO_URL", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "exercisetracker"),
		MongoConnectTimeout: getDurationEnv("MONGO_CONNECT_TIMEOUT", 5*time.Second),
		PostgresURL:         getEnv("POSTGRES_URL", ""),
		StoreMaxConns:       getIntEnv("STORE_MAX_CONNS", 10),
		KafkaBrokers:        splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopicPrefix:    getEnv("KAFKA_TOPIC_PREFIX", "exercisetracker."),
		PublishTimeout:      getDurationEnv("PUBLISH_TIMEOUT", 500*time.Millisecond),
		CORSOrigins:         splitAndTrim(getEnv("CORS_ORIGINS", "*")),
		RequestTimeout:      getDurationEnv("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout:     getDurationEnv("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
	}

	if cfg.StoreBackend == "" {
		switch {
		case cfg.MongoURL != "":
			cfg.StoreBackend = BackendMongo
		case cfg.PostgresURL != "":
			cfg.StoreBackend = BackendPostgres
		default:
			cfg.StoreBackend = BackendMemory
		}
	}
	return cfg
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required when STORE_BACKEND=mongo")
		}
	case BackendPostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of %s, %s, %s; got %q", BackendMemory, BackendMongo, BackendPostgres, c.StoreBackend)
	}
	if c.StoreMaxConns <= 0 {
		return errors.New("STORE_MAX_CONNS must be positive")
	}
	if c.PublishTimeout <= 0 {
		return errors.New("PUBLISH_TIMEOUT must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
