package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/driftwatch") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("DRIFTWATCH")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Detector defaults
	v.SetDefault("detector.window_size", 100)
	v.SetDefault("detector.ev_threshold", 0.99)
	v.SetDefault("detector.delta", 0.1)
	v.SetDefault("detector.divergence_metric", "kl")
	v.SetDefault("detector.sample_period", 0.05)
	v.SetDefault("detector.online_scaling", false)
	v.SetDefault("detector.track_state", false)

	// Simulator defaults
	v.SetDefault("simulator.dimensions", 3)
	v.SetDefault("simulator.total_samples", 1000)
	v.SetDefault("simulator.shift_at", 500)
	v.SetDefault("simulator.shift_magnitude", 5.0)
	v.SetDefault("simulator.noise", 1.0)
	v.SetDefault("simulator.seed", 42)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			WindowSize:       100,
			EVThreshold:      0.99,
			Delta:            0.1,
			DivergenceMetric: "kl",
			SamplePeriod:     0.05,
		},
		Simulator: SimulatorConfig{
			Dimensions:     3,
			TotalSamples:   1000,
			ShiftAt:        500,
			ShiftMagnitude: 5.0,
			Noise:          1.0,
			Seed:           42,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
