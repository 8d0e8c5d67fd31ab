// Package config loads zd's settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is the dashboard's development API address.
const DefaultAPIURL = "http://localhost:3040"

type Config struct {
	APIURL   string        // ZAYAFKA_API_URL (default "http://localhost:3040")
	Timeout  time.Duration // ZAYAFKA_TIMEOUT (default 10s)
	Debounce time.Duration // ZAYAFKA_DEBOUNCE (default 300ms)
	NATSURL  string        // ZAYAFKA_NATS_URL (optional, empty = watch polls)
	LogLevel slog.Level    // ZAYAFKA_LOG_LEVEL (default "warn")

	// Export settings
	ExportDir        string // ZAYAFKA_EXPORT_DIR (default ".")
	ExportS3Bucket   string // ZAYAFKA_EXPORT_S3_BUCKET (enables S3 delivery when set)
	ExportS3Prefix   string // ZAYAFKA_EXPORT_S3_PREFIX
	ExportS3Region   string // ZAYAFKA_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Endpoint string // ZAYAFKA_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)

	// APIURLSet reports whether ZAYAFKA_API_URL was given explicitly.
	APIURLSet bool
}

// Load reads the environment after merging envFiles into it. Variables
// already set are never overridden by a file. With no files, ".env" in the
// working directory is used if present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	c := &Config{
		APIURL:           envOrDefault("ZAYAFKA_API_URL", DefaultAPIURL),
		APIURLSet:        os.Getenv("ZAYAFKA_API_URL") != "",
		NATSURL:          os.Getenv("ZAYAFKA_NATS_URL"),
		ExportDir:        envOrDefault("ZAYAFKA_EXPORT_DIR", "."),
		ExportS3Bucket:   os.Getenv("ZAYAFKA_EXPORT_S3_BUCKET"),
		ExportS3Prefix:   os.Getenv("ZAYAFKA_EXPORT_S3_PREFIX"),
		ExportS3Region:   envOrDefault("ZAYAFKA_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Endpoint: os.Getenv("ZAYAFKA_EXPORT_S3_ENDPOINT"),
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	var err error
	if c.Timeout, err = durationEnv("ZAYAFKA_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.Debounce, err = durationEnv("ZAYAFKA_DEBOUNCE", "300ms"); err != nil {
		return nil, err
	}
	if c.LogLevel, err = ParseLevel(envOrDefault("ZAYAFKA_LOG_LEVEL", "warn")); err != nil {
		return nil, fmt.Errorf("ZAYAFKA_LOG_LEVEL: %w", err)
	}
	return c, nil
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
