package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvThreshold, EnvLabel, EnvWorkers, EnvLogLevel, EnvBackend} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, uint8(240), cfg.Threshold)
	require.Equal(t, "", cfg.Label)
	require.Equal(t, runtime.NumCPU(), cfg.Workers)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Equal(t, "trace", cfg.Backend)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvThreshold, "200")
	t.Setenv(EnvLabel, "biscuit")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvBackend, "gocv")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, uint8(200), cfg.Threshold)
	require.Equal(t, "biscuit", cfg.Label)
	require.Equal(t, 3, cfg.Workers)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, "gocv", cfg.Backend)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvThreshold, "256"},
		{EnvThreshold, "-1"},
		{EnvThreshold, "light"},
		{EnvWorkers, "0"},
		{EnvWorkers, "many"},
		{EnvLogLevel, "verbose"},
		{EnvBackend, "tensorflow"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvLabel)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvLabel+"=from-file\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Label)
	os.Unsetenv(EnvLabel)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warning")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("error")
	require.NoError(t, err)
	require.Equal(t, slog.LevelError, lvl)

	_, err = ParseLevel("trace")
	require.Error(t, err)
}
