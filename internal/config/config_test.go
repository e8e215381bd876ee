package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lumen/internal/colour"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, hclog.Info, cfg.Level())
	assert.Equal(t, colour.White, cfg.White())
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval.Duration)
}

func TestBuildFromFile(t *testing.T) {
	path := writeFile(t, `
log_level = "debug"
tick_interval = "50ms"
listen_addr = ":9000"
white_reference = [1.0, 0.9, 0.8]
`)
	cfg, err := NewBuilder().WithFile(path).Build()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval.Duration)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.InDelta(t, 0.8, cfg.White().B, 1e-12)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().MaxCurveBytes, cfg.MaxCurveBytes)
}

func TestBuildMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, err := NewBuilder().WithFile(missing).Build()
	assert.Error(t, err)

	cfg, err := NewBuilder().WithOptionalFile(missing).Build()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestBuildRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, `log_levle = "debug"`)
	_, err := NewBuilder().WithFile(path).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, `log_level = "debug"`)
	cfg, err := NewBuilder().
		WithFile(path).
		WithEnvConfig().
		WithLookupEnv(envMap(map[string]string{
			"LUMEN_LOG_LEVEL":       "warn",
			"LUMEN_LOG_JSON":        "true",
			"LUMEN_TICK_INTERVAL":   "1s",
			"LUMEN_MAX_CURVE_BYTES": "1024",
			"LUMEN_WHITE_REFERENCE": "1, 0.5, 0.25",
			"LUMEN_LISTEN_ADDR":     " ",
		})).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, time.Second, cfg.TickInterval.Duration)
	assert.Equal(t, int64(1024), cfg.MaxCurveBytes)
	assert.Equal(t, []float64{1, 0.5, 0.25}, cfg.WhiteReference)
	// Blank values are ignored.
	assert.Equal(t, Default().ListenAddr, cfg.ListenAddr)
}

func TestEnvIgnoredWithoutWithEnvConfig(t *testing.T) {
	cfg, err := NewBuilder().
		WithLookupEnv(envMap(map[string]string{"LUMEN_LOG_LEVEL": "error"})).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad level", map[string]string{"LUMEN_LOG_LEVEL": "loud"}},
		{"bad bool", map[string]string{"LUMEN_LOG_JSON": "maybe"}},
		{"bad duration", map[string]string{"LUMEN_TICK_INTERVAL": "soon"}},
		{"zero tick", map[string]string{"LUMEN_TICK_INTERVAL": "0s"}},
		{"zero curve bytes", map[string]string{"LUMEN_MAX_CURVE_BYTES": "0"}},
		{"short white", map[string]string{"LUMEN_WHITE_REFERENCE": "1,1"}},
		{"black white", map[string]string{"LUMEN_WHITE_REFERENCE": "0,0,0"}},
		{"negative white", map[string]string{"LUMEN_WHITE_REFERENCE": "1,-1,1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().WithEnvConfig().WithLookupEnv(envMap(tt.env)).Build()
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "trace"
	cfg.TickInterval = Duration{250 * time.Millisecond}

	data, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), "250ms")

	got, err := NewBuilder().WithFile(writeFile(t, string(data))).Build()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/lumen/config.toml", DefaultPath())
}
