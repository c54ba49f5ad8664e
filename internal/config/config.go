// Package config loads and validates training run configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gradflow-ml/gradflow/internal/trainer"
)

// Data source formats accepted by Config.DataFormat.
const (
	FormatIDX       = "idx"
	FormatCSV       = "csv"
	FormatSynthetic = "synthetic"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	HiddenUnits  int     `yaml:"hidden_units"`
	Seed         int64   `yaml:"seed"`
	Optimizer    string  `yaml:"optimizer"`
	LogEvery     int     `yaml:"log_every"`

	DataFormat string `yaml:"data_format"` // idx, csv, or synthetic
	DataPath   string `yaml:"data_path"`   // IDX directory or CSV file
	MaxSamples int    `yaml:"max_samples"` // 0 loads everything

	CheckpointPath string `yaml:"checkpoint_path"` // optional model export
	MetricsPath    string `yaml:"metrics_path"`    // optional CSV metrics export
}

// Overrides captures CLI-supplied values. Zero values leave the config
// untouched.
type Overrides struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	HiddenUnits  int
	Seed         int64
	Optimizer    string
	DataFormat   string
	DataPath     string
	MaxSamples   int
}

// Default returns the standard configuration: the classic MNIST MLP
// trained with SGD on synthetic data until a real source is pointed at.
func Default() *Config {
	t := trainer.DefaultConfig()
	return &Config{
		LearningRate: t.LearningRate,
		Epochs:       t.Epochs,
		BatchSize:    t.BatchSize,
		HiddenUnits:  t.HiddenUnits,
		Seed:         t.Seed,
		Optimizer:    t.Optimizer,
		LogEvery:     t.LogEvery,
		DataFormat:   FormatSynthetic,
		MaxSamples:   0,
	}
}

// Load reads a YAML config from path, filling unset fields with
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.HiddenUnits > 0 {
		c.HiddenUnits = o.HiddenUnits
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Optimizer != "" {
		c.Optimizer = o.Optimizer
	}
	if o.DataFormat != "" {
		c.DataFormat = o.DataFormat
	}
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	tc := c.Trainer()
	if err := tc.Validate(); err != nil {
		return err
	}

	switch c.DataFormat {
	case FormatIDX, FormatCSV:
		if c.DataPath == "" {
			return fmt.Errorf("data_path is required for data_format %q", c.DataFormat)
		}
	case FormatSynthetic:
		// No path needed.
	default:
		return fmt.Errorf("unknown data_format %q (want %q, %q, or %q)",
			c.DataFormat, FormatIDX, FormatCSV, FormatSynthetic)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	return nil
}

// Trainer converts the config into the trainer's view of it.
func (c *Config) Trainer() trainer.Config {
	return trainer.Config{
		LearningRate: c.LearningRate,
		Epochs:       c.Epochs,
		BatchSize:    c.BatchSize,
		HiddenUnits:  c.HiddenUnits,
		Seed:         c.Seed,
		Optimizer:    c.Optimizer,
		LogEvery:     c.LogEvery,
	}
}
