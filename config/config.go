// Package config provides configuration parsing for the transparency overlay.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/transparency/collectors/cpu"
	"gitlab.com/tinyland/lab/transparency/scale"
)

// View selects the overlay presentation.
type View string

const (
	ViewGauge     View = "gauge"
	ViewHistogram View = "histogram"
)

// Defaults applied by DefaultConfig and by Normalize.
const (
	DefaultRefreshMS  = 2000
	DefaultOpacity    = 0.6
	DefaultBackground = "#1E1B2E"

	// MinRefreshMS is the smallest interval the overlay accepts.
	MinRefreshMS = 250
	// MaxRefreshMS is the largest interval the overlay accepts.
	MaxRefreshMS = 60_000
)

// Config represents the overlay configuration.
type Config struct {
	// RefreshMS is the sampling interval in milliseconds.
	RefreshMS int `yaml:"refresh_ms"`
	// Opacity is copied into each new sample, in (0, 1].
	Opacity float64 `yaml:"opacity"`
	// View is "gauge" or "histogram".
	View View `yaml:"view"`
	// Scale is "log" or "linear".
	Scale scale.Mode `yaml:"scale"`
	// GaugeMax is K for the gauge view.
	GaugeMax float64 `yaml:"gauge_max"`
	// HistogramMax is K for the histogram view.
	HistogramMax float64 `yaml:"histogram_max"`
	// LinearClamp is the upper clamp of the linear curve.
	LinearClamp float64 `yaml:"linear_clamp"`
	// Sampler names the CPU backend: "auto", "gopsutil" or "procstat".
	Sampler string `yaml:"sampler"`
	// Background is the hex color tier swatches are blended over.
	Background string `yaml:"background"`
	// BorderSize is the overlay border width in cells (0 disables it).
	BorderSize int `yaml:"border_size"`
	// CtrlRowBottom places the control row below the widget.
	CtrlRowBottom bool `yaml:"ctrl_row_bottom"`
	// Logging enables the log file.
	Logging bool `yaml:"logging"`
	// LogFile is the path for log output.
	LogFile string `yaml:"log_file"`
	// CacheDir holds the cpu.json snapshot.
	CacheDir string `yaml:"cache_dir"`
	// Snapshot enables writing cpu.json for the prompt segment.
	Snapshot bool `yaml:"snapshot"`
}

// InvalidError reports a malformed field that was replaced with its default.
type InvalidError struct {
	Field   string
	Value   any
	Default any
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("config: invalid %s %v, using default %v", e.Field, e.Value, e.Default)
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		RefreshMS:     DefaultRefreshMS,
		Opacity:       DefaultOpacity,
		View:          ViewGauge,
		Scale:         scale.ModeLog,
		GaugeMax:      scale.GaugeMax,
		HistogramMax:  scale.HistogramMax,
		LinearClamp:   scale.DefaultClamp,
		Sampler:       cpu.NameAuto,
		Background:    DefaultBackground,
		BorderSize:    1,
		CtrlRowBottom: true,
		Logging:       true,
		LogFile:       filepath.Join(home, ".local", "log", "transparency.log"),
		CacheDir:      filepath.Join(home, ".cache", "transparency"),
		Snapshot:      true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/transparency/config.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "transparency", "config.yaml")
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	config.LogFile = ExpandHome(config.LogFile)
	config.CacheDir = ExpandHome(config.CacheDir)
	return config, nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Normalize replaces every malformed field with its default and returns one
// *InvalidError per correction. A malformed configuration is never fatal.
func (c *Config) Normalize() []error {
	def := DefaultConfig()
	var errs []error
	invalid := func(field string, value, fallback any) {
		errs = append(errs, &InvalidError{Field: field, Value: value, Default: fallback})
	}

	if c.RefreshMS < MinRefreshMS || c.RefreshMS > MaxRefreshMS {
		invalid("refresh_ms", c.RefreshMS, def.RefreshMS)
		c.RefreshMS = def.RefreshMS
	}
	if math.IsNaN(c.Opacity) || c.Opacity <= 0 || c.Opacity > 1 {
		invalid("opacity", c.Opacity, def.Opacity)
		c.Opacity = def.Opacity
	}
	if c.View != ViewGauge && c.View != ViewHistogram {
		invalid("view", c.View, def.View)
		c.View = def.View
	}
	if mode, err := scale.ParseMode(string(c.Scale)); err != nil {
		invalid("scale", c.Scale, def.Scale)
		c.Scale = def.Scale
	} else {
		c.Scale = mode
	}
	if !validCeiling(c.GaugeMax) {
		invalid("gauge_max", c.GaugeMax, def.GaugeMax)
		c.GaugeMax = def.GaugeMax
	}
	if !validCeiling(c.HistogramMax) {
		invalid("histogram_max", c.HistogramMax, def.HistogramMax)
		c.HistogramMax = def.HistogramMax
	}
	if !validCeiling(c.LinearClamp) {
		invalid("linear_clamp", c.LinearClamp, def.LinearClamp)
		c.LinearClamp = def.LinearClamp
	}
	switch c.Sampler {
	case cpu.NameAuto, cpu.NameGopsutil, cpu.NameProcStat:
	default:
		invalid("sampler", c.Sampler, def.Sampler)
		c.Sampler = def.Sampler
	}
	if !validHex(c.Background) {
		invalid("background", c.Background, def.Background)
		c.Background = def.Background
	}
	if c.BorderSize < 0 || c.BorderSize > 1 {
		invalid("border_size", c.BorderSize, def.BorderSize)
		c.BorderSize = def.BorderSize
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}

	return errs
}

// Interval returns the refresh interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshMS) * time.Millisecond
}

// ScaleMax returns K for the configured view.
func (c *Config) ScaleMax() float64 {
	if c.View == ViewHistogram {
		return c.HistogramMax
	}
	return c.GaugeMax
}

// ScaleMode returns the curve in effect for the configured view. The gauge
// always uses the log curve; the linear mode only applies to the histogram.
func (c *Config) ScaleMode() scale.Mode {
	if c.View == ViewHistogram {
		return c.Scale
	}
	return scale.ModeLog
}

// Scaler builds the scaler for the configured view and mode. Its Max is the
// ceiling the view draws against.
func (c *Config) Scaler() scale.Scaler {
	return scale.For(c.ScaleMode(), c.ScaleMax(), c.LinearClamp)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func validCeiling(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 1 && v <= 1000
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
