package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the tracker service.
type Config struct {
	// Schedule store. DatabaseURL takes precedence when set (postgres://);
	// otherwise the SQLite file at DatabasePath is used.
	DatabasePath string
	DatabaseURL  string

	// HTTP server
	Port           string
	AllowedOrigins []string

	// Simulation
	TickInterval    time.Duration
	WalkParallelism int
	ChaosSeed       int64
}

// Load reads configuration from environment variables with sensible
// defaults.
func Load() *Config {
	return &Config{
		DatabasePath: getEnv("SQLITE_DATABASE", "/data/metro.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		Port:           getEnv("PORT", "8081"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),

		TickInterval:    time.Duration(getEnvInt("TICK_INTERVAL_SECONDS", 3)) * time.Second,
		WalkParallelism: getEnvInt("WALK_PARALLELISM", 8),
		ChaosSeed:       int64(getEnvInt("CHAOS_SEED", 0)),
	}
}

// UsePostgres reports whether the Postgres store backend is configured.
func (c *Config) UsePostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
