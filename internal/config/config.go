// Package config handles xkttool configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/xktkit/internal/logger"
	"github.com/Faultbox/xktkit/pkg/loader"
	"github.com/Faultbox/xktkit/pkg/metadata"
)

// Config holds all xkttool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader"`
	Source  SourceConfig  `yaml:"source"`
	Logging LoggingConfig `yaml:"logging"`
}

// Batch policy names.
const (
	BatchNever     = "never"
	BatchAlways    = "always"
	BatchThreshold = "threshold"
)

// LoaderConfig holds scene assembly settings.
type LoaderConfig struct {
	ModelID             string   `yaml:"model_id"`
	GlobalizeIDs        bool     `yaml:"globalize_ids"`
	IncludeTypes        []string `yaml:"include_types"`
	ExcludeTypes        []string `yaml:"exclude_types"`
	ExcludeUnclassified bool     `yaml:"exclude_unclassified"`
	EmbeddedMetadata    bool     `yaml:"embedded_metadata"`
	DecodeTextures      bool     `yaml:"decode_textures"`
	Workers             int      `yaml:"workers"`

	ForceBatch        string `yaml:"force_batch"` // never, always or threshold
	BatchMaxPositions int    `yaml:"batch_max_positions"`
	BatchMinUses      int    `yaml:"batch_min_uses"`

	IFCDefaults  bool   `yaml:"ifc_defaults"`  // Apply the built-in IFC type defaults
	DefaultsFile string `yaml:"defaults_file"` // YAML table merged over the built-in one
}

// SourceConfig holds data source settings.
type SourceConfig struct {
	BaseURL      string        `yaml:"base_url"` // Prefix for relative sources
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	CacheEntries int           `yaml:"cache_entries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	File   logger.FileConfig `yaml:"file"` // Empty path disables file logging
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			ModelID:           loader.DefaultModelID,
			EmbeddedMetadata:  true,
			Workers:           4,
			ForceBatch:        BatchNever,
			BatchMaxPositions: 64,
			BatchMinUses:      16,
			IFCDefaults:       true,
		},
		Source: SourceConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "xkttool/1.0",
			CacheEntries: 16,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logger.FormatConsole,
		},
	}
}

// Validate checks values the loader cannot recover from.
func (c *Config) Validate() error {
	switch c.Loader.ForceBatch {
	case "", BatchNever, BatchAlways, BatchThreshold:
	default:
		return fmt.Errorf("loader.force_batch: unknown policy %q", c.Loader.ForceBatch)
	}
	if c.Loader.Workers < 0 {
		return fmt.Errorf("loader.workers: must not be negative, got %d", c.Loader.Workers)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout: must not be negative, got %v", c.Source.Timeout)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// BatchPolicy returns the configured force-batch policy.
func (c *Config) BatchPolicy() loader.BatchPolicy {
	switch c.Loader.ForceBatch {
	case BatchAlways:
		return loader.AlwaysForceBatch{}
	case BatchThreshold:
		return loader.ThresholdPolicy{
			MaxPositions: c.Loader.BatchMaxPositions,
			MinUses:      c.Loader.BatchMinUses,
		}
	default:
		return loader.NeverForceBatch{}
	}
}

// DefaultsTable returns the object-type defaults to apply, or nil for none.
func (c *Config) DefaultsTable() (metadata.Table, error) {
	var table metadata.Table
	if c.Loader.IFCDefaults {
		table = metadata.IFCDefaults()
	}
	if c.Loader.DefaultsFile != "" {
		custom, err := metadata.LoadTable(c.Loader.DefaultsFile)
		if err != nil {
			return nil, fmt.Errorf("loading defaults table: %w", err)
		}
		table = table.Merge(custom)
	}
	return table, nil
}

// LoaderOptions converts the loader section to loader options.
func (c *Config) LoaderOptions() (loader.Options, error) {
	table, err := c.DefaultsTable()
	if err != nil {
		return loader.Options{}, err
	}
	opts := loader.Options{
		ModelID:      c.Loader.ModelID,
		GlobalizeIDs: c.Loader.GlobalizeIDs,
		Filter: loader.Filter{
			IncludeTypes:        c.Loader.IncludeTypes,
			ExcludeTypes:        c.Loader.ExcludeTypes,
			ExcludeUnclassified: c.Loader.ExcludeUnclassified,
		},
		UseEmbeddedMetadata: c.Loader.EmbeddedMetadata,
		BatchPolicy:         c.BatchPolicy(),
		DecodeTextures:      c.Loader.DecodeTextures,
		Workers:             c.Loader.Workers,
	}
	if table != nil {
		opts.Defaults = table
	}
	return opts, nil
}

// LoggerConfig converts the logging section to logger settings.
func (c *Config) LoggerConfig() logger.Config {
	file := c.Logging.File
	if file.Path != "" && file.MaxSizeMB == 0 {
		rotation := logger.DefaultFileConfig(file.Path)
		file.MaxSizeMB = rotation.MaxSizeMB
		file.MaxBackups = rotation.MaxBackups
		file.MaxAgeDays = rotation.MaxAgeDays
	}
	return logger.Config{
		Level:   c.Logging.Level,
		Format:  c.Logging.Format,
		Console: true,
		File:    file,
	}
}
