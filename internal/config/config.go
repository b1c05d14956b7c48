// Package config loads the league settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	// SQLite file holding every competition
	DBPath string

	// How often the daemon closes expired voting windows
	SweepInterval time.Duration

	LogLevel slog.Level
}

// Load reads configuration from environment variables with defaults for
// anything unset.
func Load() (*Config, error) {
	interval, err := time.ParseDuration(envOr("LEAGUE_SWEEP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_SWEEP_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("LEAGUE_SWEEP_INTERVAL must be positive, got %s", interval)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(envOr("LEAGUE_LOG_LEVEL", "info")))); err != nil {
		return nil, fmt.Errorf("LEAGUE_LOG_LEVEL: %w", err)
	}

	return &Config{
		DBPath:        envOr("LEAGUE_DB_PATH", "league.db"),
		SweepInterval: interval,
		LogLevel:      level,
	}, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
