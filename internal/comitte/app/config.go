package app

import (
	"os"
	"strconv"
	"time"

	"github.com/ls-softworks/comitte/pkg/jwtx"
	"github.com/ls-softworks/comitte/pkg/sessionx"
)

type Config struct {
	Issuer    string // Optional: issuer claim for tokens (default: comitte)
	JWTSecret string // Optional: base64 HS512 signing secret; a random one is generated when unset

	TokenTTL          time.Duration // Optional: access token lifetime (default: 1h)
	InactivityWindow  time.Duration // Optional: server-side session inactivity window (default: 300s)
	DatabaseFile      string        // Optional: path to SQLite database file (default: ./comitte.db)
	PepperFile        string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env               string        // Environment (dev, staging, prod) (default: dev)
	LogLevel          string        // Log level (debug, info, warn, error) (default: info)
	LogFormat         string        // Log format (json, text) (default: json)
	Port              int           // HTTP server port (default: 8080)
	ShutdownGrace     time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:            getEnvOrDefault("COMITTE_ISSUER", "comitte"),
		JWTSecret:         os.Getenv("COMITTE_JWT_SECRET"),
		TokenTTL:          getEnvDurationOrDefault("COMITTE_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		InactivityWindow:  getEnvDurationOrDefault("COMITTE_SESSION_INACTIVITY_WINDOW", sessionx.DefaultInactivityWindow),
		DatabaseFile:      getEnvOrDefault("COMITTE_DATABASE_FILE", "comitte.db"),
		PepperFile:        getEnvOrDefault("COMITTE_PEPPER_FILE", "pepper"),
		Env:               getEnvOrDefault("ENV", "dev"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
		Port:              getEnvIntOrDefault("PORT", 8080),
		ShutdownGrace:     getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
