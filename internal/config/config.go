// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvThreshold = "VOC_AUTOLABEL_THRESHOLD"
	EnvLabel     = "VOC_AUTOLABEL_LABEL"
	EnvWorkers   = "VOC_AUTOLABEL_WORKERS"
	EnvLogLevel  = "VOC_AUTOLABEL_LOG_LEVEL"
	EnvBackend   = "VOC_AUTOLABEL_BACKEND"
)

// Config holds settings shared by the CLI and the MCP server.
type Config struct {
	// Threshold is the foreground gray-level cutoff (0-255).
	Threshold uint8

	// Label is the default object label. Empty means callers must supply one.
	Label string

	// Workers is the batch worker pool size.
	Workers int

	// LogLevel is the minimum level logged.
	LogLevel slog.Level

	// Backend names the contour tracer: "trace" or "gocv".
	Backend string
}

// Load reads an optional .env file in the working directory, then the
// environment. Variables already set in the environment take precedence
// over the file.
func Load() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults for
// unset ones.
func FromEnv() (*Config, error) {
	threshold, err := strconv.ParseUint(getEnv(EnvThreshold, "240"), 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be an integer in 0-255", EnvThreshold)
	}

	workers, err := strconv.Atoi(getEnv(EnvWorkers, strconv.Itoa(runtime.NumCPU())))
	if err != nil || workers <= 0 {
		return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvWorkers)
	}

	level, err := ParseLevel(getEnv(EnvLogLevel, "info"))
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnv(EnvBackend, "trace"))
	if backend != "trace" && backend != "gocv" {
		return nil, fmt.Errorf("invalid %s: %q (want trace or gocv)", EnvBackend, backend)
	}

	return &Config{
		Threshold: uint8(threshold),
		Label:     os.Getenv(EnvLabel),
		Workers:   workers,
		LogLevel:  level,
		Backend:   backend,
	}, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid %s: %q", EnvLogLevel, s)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
