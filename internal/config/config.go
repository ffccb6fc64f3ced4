// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// defaultMaxUploadBytes caps photo upload bodies at 10 MiB unless overridden.
const defaultMaxUploadBytes = 10 << 20

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// UploadDir is the root directory for uploaded photo files.
	// Photos are written under UploadDir/photos. Defaults to "uploads".
	UploadDir string

	// PublicBaseURL, when set, is used to build photo URLs in responses
	// (e.g. "https://api.example.com"). When empty, each request's own
	// scheme and host are used instead.
	PublicBaseURL string

	// MaxUploadBytes limits incoming request body sizes. Defaults to 10 MiB.
	MaxUploadBytes int64

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["*"]. Set CORS_ORIGINS to a comma-separated list to
	// restrict it in production.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, and for
// numeric variables that do not parse.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "*")),
	}

	maxUpload := getEnv("MAX_UPLOAD_BYTES", "")
	if maxUpload == "" {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	} else {
		n, err := strconv.ParseInt(maxUpload, 10, 64)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", maxUpload)
		}
		cfg.MaxUploadBytes = n
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
