// Package config loads settings for the tictactoe binaries from flags, with
// TICTACTOE_* environment variables supplying the defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config holds the settings shared by the server and the terminal client.
type Config struct {
	Addr              string
	ComputerDelay     time.Duration
	HeartbeatInterval time.Duration
	LogLevel          slog.Level
	LogFormat         string
	Mode              string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ComputerDelay:     250 * time.Millisecond,
		HeartbeatInterval: 15 * time.Second,
		LogLevel:          slog.LevelInfo,
		LogFormat:         "text",
		Mode:              "computer",
	}
}

// Load parses args (without the program name). getenv may be nil, in which
// case the process environment is used. On -h or -help the flag usage goes
// to stderr and the returned error wraps flag.ErrHelp.
func Load(name string, args []string, getenv func(string) string) (Config, error) {
	return load(name, args, getenv, os.Stderr)
}

func load(name string, args []string, getenv func(string) string, usage io.Writer) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()
	var err error
	if v := getenv("TICTACTOE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if cfg.ComputerDelay, err = envDuration(getenv, "TICTACTOE_COMPUTER_DELAY", cfg.ComputerDelay); err != nil {
		return cfg, err
	}
	if cfg.HeartbeatInterval, err = envDuration(getenv, "TICTACTOE_HEARTBEAT", cfg.HeartbeatInterval); err != nil {
		return cfg, err
	}
	level := cfg.LogLevel.String()
	if v := getenv("TICTACTOE_LOG_LEVEL"); v != "" {
		level = v
	}
	if v := getenv("TICTACTOE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv("TICTACTOE_MODE"); v != "" {
		cfg.Mode = v
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.DurationVar(&cfg.ComputerDelay, "computer-delay", cfg.ComputerDelay, "Pause before the computer replies")
	fs.DurationVar(&cfg.HeartbeatInterval, "heartbeat", cfg.HeartbeatInterval, "SSE/WebSocket keepalive interval")
	fs.StringVar(&level, "log-level", level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Starting mode: computer or pvp")
	if err := fs.Parse(args); err != nil {
		return cfg, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return cfg, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return cfg, fmt.Errorf("log format %q: want text or json", cfg.LogFormat)
	}
	cfg.Mode = strings.ToLower(cfg.Mode)
	if cfg.Mode != "computer" && cfg.Mode != "pvp" {
		return cfg, fmt.Errorf("mode %q: want computer or pvp", cfg.Mode)
	}
	if cfg.ComputerDelay < 0 {
		return cfg, fmt.Errorf("computer delay must not be negative, got %s", cfg.ComputerDelay)
	}
	return cfg, nil
}

func envDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// NewLogger builds the process logger described by cfg.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
