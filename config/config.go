// Package config loads adapter configuration from YAML files and
// GRIDFS_* environment variables and assembles ready filesystem
// instances from it.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures everything needed to run the adapter against one
// store: the logging setup, the connection parameters and the
// adapter tuning knobs.
//
// Sources in order of precedence:
//  1. Environment variables (GRIDFS_*)
//  2. Configuration file (YAML)
//  3. Defaults
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Connection carries the store driver selection and its
	// connection parameters
	Connection ConnectionConfig `mapstructure:"connection"`

	// Adapter tunes the filesystem layered on top of the connection
	Adapter AdapterConfig `mapstructure:"adapter"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// JSON switches output from text lines to JSON entries
	JSON bool `mapstructure:"json"`

	// File appends log output to a rotated file when set
	File string `mapstructure:"file"`
}

// ConnectionConfig selects a store driver and carries its connection
// parameters. Driver-specific settings travel in Options.
type ConnectionConfig struct {
	// Driver names a registered store driver
	Driver string `mapstructure:"driver" validate:"required"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`

	// Zone is the top-level collection all paths resolve under
	Zone string `mapstructure:"zone" validate:"required"`

	Username   string `mapstructure:"username"`
	Credential string `mapstructure:"credential"`

	// Options carries driver-specific settings (bucket, database, ...)
	Options map[string]string `mapstructure:"options"`
}

// AdapterConfig tunes the filesystem adapter. Zero values inherit the
// adapter defaults.
type AdapterConfig struct {
	// Root anchors the adapter below the zone, such as /zone/home/user
	Root string `mapstructure:"root"`

	// PoolSize is the number of pooled sessions
	PoolSize int `mapstructure:"pool_size" validate:"gte=0"`

	// ChunkSize is the stream buffer size in bytes
	ChunkSize int `mapstructure:"chunk_size" validate:"gte=0"`

	// Timeout bounds a single store operation
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Protected lists top-level names spared by a recursive removal
	// of the root
	Protected []string `mapstructure:"protected"`
}

// Load reads configuration from file, environment, and defaults.
// An empty configPath searches the working directory for
// gridfs.yaml; a missing file is fine and leaves the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper wires environment variables and the config file location.
// Environment variables use the GRIDFS_ prefix with underscores, so
// GRIDFS_CONNECTION_DRIVER=sqlite selects the sqlite driver.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("GRIDFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("gridfs")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}
