// Package common provides shared utilities for Strata
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/strata/internal/models"
)

// Config holds all configuration for Strata
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Chart       ChartConfig   `toml:"chart"`
	Format      FormatConfig  `toml:"format"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int     `toml:"burst"`

	// Durations in time.ParseDuration form ("30s"). Write covers PNG export.
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetReadTimeout parses the read timeout, defaulting to 30s.
func (c ServerConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout parses the write timeout, defaulting to 60s.
func (c ServerConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 60*time.Second)
}

// GetIdleTimeout parses the keep-alive idle timeout, defaulting to 60s.
func (c ServerConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

// GetShutdownTimeout parses the graceful shutdown budget, defaulting to 10s.
func (c ServerConfig) GetShutdownTimeout() time.Duration {
	return parseDuration(c.ShutdownTimeout, 10*time.Second)
}

// ChartConfig holds the defaults applied to charts that leave options unset.
type ChartConfig struct {
	Width              float64              `toml:"width"`
	Height             float64              `toml:"height"`
	Margin             models.Margin        `toml:"margin"`
	Type               string               `toml:"type"`
	Prefix             string               `toml:"prefix"`
	Suffix             string               `toml:"suffix"`
	DisplayRoundedData bool                 `toml:"display_rounded_data"`
	HighContrast       bool                 `toml:"high_contrast"`
	MaxCharts          int                  `toml:"max_charts"` // live chart instances held by the service
	Palette            []models.SeriesStyle `toml:"palette"`
}

// FormatConfig holds legend formatting settings.
type FormatConfig struct {
	Locale     string `toml:"locale"`      // BCP 47 tag, e.g. "en-AU"
	DateLayout string `toml:"date_layout"` // Go time layout for the date label
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			RateLimit:       20,
			Burst:           40,
			ReadTimeout:     "30s",
			WriteTimeout:    "60s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "10s",
		},
		Chart: ChartConfig{
			Width:     600,
			Height:    300,
			Margin:    models.Margin{Top: 10, Right: 10, Bottom: 20, Left: 10},
			Type:      string(models.ChartTypeBar),
			MaxCharts: 100,
		},
		Format: FormatConfig{
			Locale:     "en",
			DateLayout: "January 2006",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console"},
			FilePath:   "./logs/strata.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STRATA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STRATA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STRATA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STRATA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("STRATA_RATE_LIMIT"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil {
			config.Server.RateLimit = r
		}
	}

	// Chart defaults
	if v := os.Getenv("STRATA_CHART_WIDTH"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			config.Chart.Width = w
		}
	}
	if v := os.Getenv("STRATA_CHART_HEIGHT"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil {
			config.Chart.Height = h
		}
	}
	if v := os.Getenv("STRATA_HIGH_CONTRAST"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Chart.HighContrast = b
		}
	}
}

// Validate rejects chart defaults that could never render.
func (c *Config) Validate() error {
	ch := c.Chart
	if ch.Width <= 0 || ch.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", ch.Width, ch.Height)
	}
	if ch.Width-ch.Margin.Left-ch.Margin.Right <= 0 || ch.Height-ch.Margin.Top-ch.Margin.Bottom <= 0 {
		return fmt.Errorf("chart margin leaves no plot area in %vx%v", ch.Width, ch.Height)
	}
	if ch.Type != "" && !models.ChartType(ch.Type).Valid() {
		return fmt.Errorf("unknown default chart type %q", ch.Type)
	}
	if ch.MaxCharts < 0 {
		return fmt.Errorf("max_charts must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	for name, v := range map[string]string{
		"read_timeout":     c.Server.ReadTimeout,
		"write_timeout":    c.Server.WriteTimeout,
		"idle_timeout":     c.Server.IdleTimeout,
		"shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("server.%s: %w", name, err)
		}
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ChartDefaults fills unset fields of opts from the [chart] section. Options
// the request set explicitly, false and "" included, are kept.
func (c *Config) ChartDefaults(opts models.ChartOptions) models.ChartOptions {
	if opts.Type == "" {
		opts.Type = models.ChartType(c.Chart.Type)
	}
	if opts.Width <= 0 {
		opts.Width = c.Chart.Width
	}
	if opts.Height <= 0 {
		opts.Height = c.Chart.Height
	}
	if opts.Margin == nil {
		m := c.Chart.Margin
		opts.Margin = &m
	}
	if opts.Prefix == nil {
		opts.Prefix = models.StringOption(c.Chart.Prefix)
	}
	if opts.Suffix == nil {
		opts.Suffix = models.StringOption(c.Chart.Suffix)
	}
	if opts.DisplayRoundedData == nil {
		opts.DisplayRoundedData = models.BoolOption(c.Chart.DisplayRoundedData)
	}
	if opts.IsHighContrastMode == nil {
		opts.IsHighContrastMode = models.BoolOption(c.Chart.HighContrast)
	}
	if len(opts.Palette) == 0 {
		opts.Palette = c.Chart.Palette
	}
	return opts
}
