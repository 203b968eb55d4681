// Package config provides configuration loading and management for
// mricoilcombine. It handles loading configuration from YAML files and
// provides default values.
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
	// Processing parameters
	Processing struct {
		// Workers specifies how many goroutines to use when splitting
		// the spatial index range; 0 means one per available CPU
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Phantom acquisition parameters for the demo pipeline
	Phantom struct {
		// Width and Height are the in-plane grid sizes in pixels
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// Coils is the number of simulated receive coils
		Coils int `yaml:"coils"`

		// Echoes is the number of simulated echo times
		Echoes int `yaml:"echoes"`

		// EchoSpacingMs is the time between echoes in milliseconds
		EchoSpacingMs float64 `yaml:"echoSpacingMs"`

		// OffResonanceHz is the peak B0 off-resonance in Hz
		OffResonanceHz float64 `yaml:"offResonanceHz"`

		// T2StarMs is the apparent transverse decay constant in
		// milliseconds; 0 disables decay
		T2StarMs float64 `yaml:"t2StarMs"`
	} `yaml:"phantom"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.Workers = runtime.NumCPU()

	// Set default phantom parameters
	cfg.Phantom.Width = 64
	cfg.Phantom.Height = 64
	cfg.Phantom.Coils = 8
	cfg.Phantom.Echoes = 3
	cfg.Phantom.EchoSpacingMs = 2.0
	cfg.Phantom.OffResonanceHz = 50.0
	cfg.Phantom.T2StarMs = 30.0

	// Set default output parameters
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
