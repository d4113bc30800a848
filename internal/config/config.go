// Package config defines the application configuration for driftwatch tools
// and the loader that reads it from file and environment.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Detector  DetectorConfig  `mapstructure:"detector"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DetectorConfig represents PCA-CD detector configuration. All values are
// fixed at detector construction.
type DetectorConfig struct {
	WindowSize       int     `mapstructure:"window_size"`       // size of the reference and test windows (required)
	EVThreshold      float64 `mapstructure:"ev_threshold"`      // cumulative explained variance for PC selection, in (0, 1]
	Delta            float64 `mapstructure:"delta"`             // minimum change magnitude for the Page-Hinkley test
	DivergenceMetric string  `mapstructure:"divergence_metric"` // kl, llh, intersection
	SamplePeriod     float64 `mapstructure:"sample_period"`     // fraction of window size between evaluations, in (0, 1]
	OnlineScaling    bool    `mapstructure:"online_scaling"`    // standardize observations against the reference window
	TrackState       bool    `mapstructure:"track_state"`       // retain Page-Hinkley snapshots on drift
}

// SimulatorConfig represents synthetic-stream simulator configuration
type SimulatorConfig struct {
	Dimensions     int     `mapstructure:"dimensions"`      // observation dimensionality
	TotalSamples   int     `mapstructure:"total_samples"`   // number of observations to stream
	ShiftAt        int     `mapstructure:"shift_at"`        // sample index at which the mean shift is injected
	ShiftMagnitude float64 `mapstructure:"shift_magnitude"` // size of the injected mean shift
	Noise          float64 `mapstructure:"noise"`           // standard deviation of the synthetic stream
	Seed           int64   `mapstructure:"seed"`            // RNG seed, fixed for reproducible runs
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}

	if err := c.Simulator.Validate(); err != nil {
		return fmt.Errorf("simulator config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates detector configuration
func (c *DetectorConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", c.WindowSize)
	}

	if c.EVThreshold <= 0 || c.EVThreshold > 1 {
		return fmt.Errorf("ev_threshold must be in (0, 1], got %v", c.EVThreshold)
	}

	if c.SamplePeriod <= 0 || c.SamplePeriod > 1 {
		return fmt.Errorf("sample_period must be in (0, 1], got %v", c.SamplePeriod)
	}

	validMetrics := map[string]bool{
		"kl":           true,
		"llh":          true,
		"intersection": true,
	}

	if !validMetrics[c.DivergenceMetric] {
		return fmt.Errorf("divergence_metric must be one of: kl, llh, intersection")
	}

	return nil
}

// Validate validates simulator configuration
func (c *SimulatorConfig) Validate() error {
	if c.Dimensions < 1 {
		return fmt.Errorf("dimensions must be at least 1")
	}

	if c.TotalSamples < 1 {
		return fmt.Errorf("total_samples must be at least 1")
	}

	if c.ShiftAt < 0 || c.ShiftAt > c.TotalSamples {
		return fmt.Errorf("shift_at must be within [0, total_samples]")
	}

	if c.Noise < 0 {
		return fmt.Errorf("noise cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
