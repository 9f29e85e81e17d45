package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the process configuration, read from the environment (with
// optional .env support in main). The mileage rate is deliberately NOT here:
// it lives in the persisted document's settings.
type Config struct {
	// HTTP
	Port string
	Host string

	// DataDir holds the JSON document, receives CSV/PDF exports and is
	// scanned for importable workbooks.
	DataDir string

	// Currency is the symbol prefixed to all rendered amounts.
	Currency string

	LogLevel slog.Level
}

// Load reads configuration from environment variables, falling back to
// defaults that work out of the box.
func Load() *Config {
	return &Config{
		Port:     getEnv("TIMESHEET_PORT", "8086"),
		Host:     getEnv("TIMESHEET_HOST", "127.0.0.1"),
		DataDir:  getEnv("TIMESHEET_DATA_DIR", defaultDataDir()),
		Currency: getEnv("TIMESHEET_CURRENCY", "£"),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// Validate checks the configuration and returns an aggregate error when
// anything is unusable.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	}
	if c.Currency == "" {
		errs = append(errs, "currency symbol cannot be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".timesheet")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
