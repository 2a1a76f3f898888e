// Package config loads service settings from an optional TOML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/midbel/toml"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

// Config holds the server settings. Flags override values loaded from file.
type Config struct {
	HTTPAddr     string `toml:"http_addr"`
	TemporalAddr string `toml:"temporal_addr"`
	Namespace    string `toml:"namespace"`
	TaskQueue    string `toml:"task_queue"`
	LogLevel     string `toml:"log_level"`
	DBPath       string `toml:"db_path"` // empty keeps results in memory
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		HTTPAddr:     ":8080",
		TemporalAddr: "localhost:7233",
		Namespace:    "default",
		TaskQueue:    temporal.DefaultTaskQueue,
		LogLevel:     "info",
	}
}

// Load overlays the TOML file at path onto the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}

// NewLogger builds the text logger used by every command. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := ParseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
