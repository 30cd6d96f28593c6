// Package config loads the daemon configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/tair/stockroom/pkg/database"
)

// Config holds everything the daemon needs to start.
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	DB database.Config

	// KafkaBrokers enables the event publisher when non-empty.
	KafkaBrokers []string

	// ReconcileSpec is the cron schedule of the orphan sweeper.
	ReconcileSpec string
}

// Load reads the configuration. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		ServiceName: getEnv("SERVICE_NAME", "stockroom"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DB: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "stockroom"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		ReconcileSpec: getEnv("RECONCILE_SPEC", "@every 10m"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

// IsDevelopment reports whether the daemon runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
