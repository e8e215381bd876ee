// Package config loads lumen's settings from a TOML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/spectral"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LUMEN_"

// Duration is a time.Duration written as a string ("16ms") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all settings.
type Config struct {
	// LogLevel is one of trace, debug, info, warn, error.
	LogLevel string `toml:"log_level" json:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `toml:"log_json" json:"log_json"`

	// TickInterval is how often live modes process queued changes.
	TickInterval Duration `toml:"tick_interval" json:"tick_interval"`

	// ListenAddr is the HTTP API address for serve.
	ListenAddr string `toml:"listen_addr" json:"listen_addr"`

	// MaxCurveBytes bounds the decoded size of SPD curve files.
	MaxCurveBytes int64 `toml:"max_curve_bytes" json:"max_curve_bytes"`

	// WhiteReference is the linear RGB white spectral colours are mixed with.
	WhiteReference []float64 `toml:"white_reference" json:"white_reference"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:       "info",
		TickInterval:   Duration{16 * time.Millisecond},
		ListenAddr:     "127.0.0.1:8088",
		MaxCurveBytes:  spectral.DefaultMaxCurveBytes,
		WhiteReference: colour.White.Slice(),
	}
}

// White returns WhiteReference as a colour.
func (c Config) White() colour.Linear {
	w, ok := colour.FromSlice(c.WhiteReference)
	if !ok {
		return colour.White
	}
	return w
}

// Level returns the hclog level for LogLevel.
func (c Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// Validate checks every setting.
func (c Config) Validate() error {
	var errs []error
	if c.Level() == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.TickInterval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval: must be > 0"))
	}
	if c.MaxCurveBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_curve_bytes: must be > 0"))
	}
	if len(c.WhiteReference) != 3 {
		errs = append(errs, fmt.Errorf("white_reference: need 3 components, got %d", len(c.WhiteReference)))
	} else if w := c.White(); w.Min() < 0 || w.Max() <= 0 {
		errs = append(errs, fmt.Errorf("white_reference: components must be >= 0 and not all zero"))
	}
	return errors.Join(errs...)
}

// Encode renders the config as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// DefaultPath returns $XDG_CONFIG_HOME/lumen/config.toml (or the platform
// equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lumen", "config.toml")
}

// Builder assembles a Config from defaults, a file and the environment, in
// that order of precedence (later wins).
type Builder struct {
	config   Config
	path     string
	required bool
	useEnv   bool
	lookup   func(string) (string, bool)
}

// NewBuilder creates a builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{
		config: Default(),
		lookup: os.LookupEnv,
	}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(c Config) *Builder {
	b.config = c
	return b
}

// WithFile reads path, which must exist.
func (b *Builder) WithFile(path string) *Builder {
	b.path = path
	b.required = true
	return b
}

// WithOptionalFile reads path if it exists.
func (b *Builder) WithOptionalFile(path string) *Builder {
	b.path = path
	b.required = false
	return b
}

// WithEnvConfig applies LUMEN_* environment overrides.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithLookupEnv replaces os.LookupEnv (useful for testing).
func (b *Builder) WithLookupEnv(fn func(string) (string, bool)) *Builder {
	b.lookup = fn
	return b
}

// Build constructs and validates the configuration.
func (b *Builder) Build() (Config, error) {
	cfg := b.config

	if b.path != "" {
		data, err := os.ReadFile(b.path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", b.path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !b.required:
		default:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if b.useEnv {
		if err := applyEnv(&cfg, b.lookup); err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := get("LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_JSON: %w", EnvPrefix, err)
		}
		cfg.LogJSON = b
	}
	if v, ok := get("TICK_INTERVAL"); ok {
		if err := cfg.TickInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%sTICK_INTERVAL: %w", EnvPrefix, err)
		}
	}
	if v, ok := get("LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := get("MAX_CURVE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_CURVE_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxCurveBytes = n
	}
	if v, ok := get("WHITE_REFERENCE"); ok {
		w, err := parseTriple(v)
		if err != nil {
			return fmt.Errorf("%sWHITE_REFERENCE: %w", EnvPrefix, err)
		}
		cfg.WhiteReference = w
	}
	return nil
}

// parseTriple parses "r,g,b".
func parseTriple(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected r,g,b, got %q", s)
	}
	out := make([]float64, 3)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
