package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TIMESHEET_PORT", "TIMESHEET_HOST", "TIMESHEET_DATA_DIR", "TIMESHEET_CURRENCY", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8086", cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "£", cfg.Currency)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8086", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TIMESHEET_PORT", "9000")
	t.Setenv("TIMESHEET_HOST", "0.0.0.0")
	t.Setenv("TIMESHEET_DATA_DIR", "/tmp/ts")
	t.Setenv("TIMESHEET_CURRENCY", "€")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "/tmp/ts", cfg.DataDir)
	assert.Equal(t, "€", cfg.Currency)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
}

func TestValidate(t *testing.T) {
	valid := &Config{Port: "8086", Host: "127.0.0.1", DataDir: "/tmp/ts", Currency: "£"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data directory"},
		{"empty currency", func(c *Config) { c.Currency = "" }, "currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("garbage"))
}
