// Package config provides configuration loading and management for tractreg.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Registration parameters
	Registration struct {
		// Kind selects the transform family: "rigid" or "affine"
		Kind string `yaml:"kind"`

		// Metric selects the distance policy: "sum" or "min"
		Metric string `yaml:"metric"`

		// MaxIterations caps the optimizer iterations
		MaxIterations int `yaml:"maxIterations"`

		// Tolerance is the absolute objective-change convergence threshold
		Tolerance float64 `yaml:"tolerance"`

		// FullOutput keeps the optimizer diagnostics on the result
		FullOutput bool `yaml:"fullOutput"`
	} `yaml:"registration"`

	// Resampling parameters
	Resample struct {
		// NumPoints is the fixed per-streamline point count fed to the metric
		NumPoints int `yaml:"numPoints"`
	} `yaml:"resample"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for batch registration
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// VoxelSize is the edge length in mm of the diagnostic overlap grid
		VoxelSize float64 `yaml:"voxelSize"`

		// SaveOverlapSlices saves occupancy slice images after registration
		SaveOverlapSlices bool `yaml:"saveOverlapSlices"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default registration parameters
	cfg.Registration.Kind = "rigid"
	cfg.Registration.Metric = "sum"
	cfg.Registration.MaxIterations = 2000
	cfg.Registration.Tolerance = 1e-8
	cfg.Registration.FullOutput = true

	// Set default resampling parameters
	cfg.Resample.NumPoints = 12

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default output parameters
	cfg.Output.VoxelSize = 1.0
	cfg.Output.SaveOverlapSlices = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
