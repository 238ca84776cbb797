// Package config loads inkmap settings from a YAML file with environment
// overrides, and turns them into engine and logger configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"inkmap/internal/mindmap"
)

// Config is the full inkmap configuration
type Config struct {
	Layout    Layout    `yaml:"layout"`
	Insertion Insertion `yaml:"insertion"`
	Gestures  Gestures  `yaml:"gestures"`
	Log       Log       `yaml:"log"`
	Assist    Assist    `yaml:"assist"`

	// LoadedFrom lists the sources applied, lowest priority first
	LoadedFrom []string `yaml:"-"`
}

// Layout holds canvas geometry
type Layout struct {
	HorizontalSpacing float64 `yaml:"horizontal_spacing" validate:"gt=0"`
	VerticalSpacing   float64 `yaml:"vertical_spacing" validate:"gt=0"`
	NodeWidth         float64 `yaml:"node_width" validate:"gt=0"`
	NodeHeight        float64 `yaml:"node_height" validate:"gt=0"`
	OriginX           float64 `yaml:"origin_x"`
	OriginY           float64 `yaml:"origin_y"`
}

// Insertion holds the parent scoring weights
type Insertion struct {
	HorizontalWeight float64 `yaml:"horizontal_weight" validate:"gt=0"`
	VerticalWeight   float64 `yaml:"vertical_weight" validate:"gt=0"`
}

// Gestures holds pointer timing
type Gestures struct {
	DoubleClickWindow time.Duration `yaml:"double_click_window" validate:"gt=0"`
}

// Log selects level and encoding of the CLI logger
type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Assist configures the external suggestion generator
type Assist struct {
	Generator string        `yaml:"generator"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxStderr int           `yaml:"max_stderr" validate:"gte=0"`
}

// Default returns the built-in configuration
func Default() *Config {
	mc := mindmap.DefaultConfig()
	return &Config{
		Layout: Layout{
			HorizontalSpacing: mc.HorizontalSpacing,
			VerticalSpacing:   mc.VerticalSpacing,
			NodeWidth:         mc.NodeWidth,
			NodeHeight:        mc.NodeHeight,
		},
		Insertion: Insertion{
			HorizontalWeight: mc.HorizontalWeight,
			VerticalWeight:   mc.VerticalWeight,
		},
		Gestures: Gestures{DoubleClickWindow: mc.DoubleClickWindow},
		Log:      Log{Level: "warn", Format: "console"},
		Assist:   Assist{Timeout: 2 * time.Minute, MaxStderr: 10 * 1024},
	}
}

// DefaultPath returns INKMAP_CONFIG, or ~/.config/inkmap/config.yaml
func DefaultPath() string {
	if p := os.Getenv("INKMAP_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "inkmap", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path, and
// environment variables, in that order of priority. An empty path means
// DefaultPath, and a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.LoadedFrom = []string{"defaults"}

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		err := cfg.loadFile(path)
		switch {
		case err == nil:
			cfg.LoadedFrom = append(cfg.LoadedFrom, path)
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	applied, err := cfg.applyEnv()
	if err != nil {
		return nil, err
	}
	if applied {
		cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}
	return nil
}

// applyEnv overlays INKMAP_* variables and reports whether any was set
func (c *Config) applyEnv() (bool, error) {
	applied := false
	if v := os.Getenv("INKMAP_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
		applied = true
	}
	if v := os.Getenv("INKMAP_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
		applied = true
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"INKMAP_H_SPACING", &c.Layout.HorizontalSpacing},
		{"INKMAP_V_SPACING", &c.Layout.VerticalSpacing},
	}
	for _, f := range floats {
		v := os.Getenv(f.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, fmt.Errorf("parsing %s: %w", f.name, err)
		}
		*f.dst = parsed
		applied = true
	}
	if v := os.Getenv("INKMAP_GENERATOR"); v != "" {
		c.Assist.Generator = v
		applied = true
	}
	return applied, nil
}

var validate = validator.New()

// Validate checks the struct tags and returns one readable error
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
	switch e.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Mindmap converts the settings into engine configuration
func (c *Config) Mindmap() mindmap.Config {
	return mindmap.Config{
		HorizontalSpacing: c.Layout.HorizontalSpacing,
		VerticalSpacing:   c.Layout.VerticalSpacing,
		NodeWidth:         c.Layout.NodeWidth,
		NodeHeight:        c.Layout.NodeHeight,
		Origin:            mindmap.Position{X: c.Layout.OriginX, Y: c.Layout.OriginY},
		HorizontalWeight:  c.Insertion.HorizontalWeight,
		VerticalWeight:    c.Insertion.VerticalWeight,
		DoubleClickWindow: c.Gestures.DoubleClickWindow,
	}
}

// NewLogger builds a stderr logger. verbose forces debug level.
func (l Log) NewLogger(verbose bool) (*zap.Logger, error) {
	var zc zap.Config
	if l.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}

	level := zap.WarnLevel
	switch l.Level {
	case "debug":
		level = zap.DebugLevel
	case "info":
		level = zap.InfoLevel
	case "error":
		level = zap.ErrorLevel
	}
	if verbose {
		level = zap.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
