// Package config loads flow settings from a .flow file and FLOW_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/flow/pkg/store"
)

type Config struct {
	Backend string       `mapstructure:"backend" validate:"required,oneof=diskv sqlite memory"`
	Path    string       `mapstructure:"path" validate:"required"`
	User    string       `mapstructure:"user" validate:"required,excludes=/"`
	Log     LogConfig    `mapstructure:"log"`
	Retry   RetryConfig  `mapstructure:"retry"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

type RetryConfig struct {
	Attempts uint          `mapstructure:"attempts" validate:"min=1,max=10"`
	Delay    time.Duration `mapstructure:"delay" validate:"min=0"`
}

type SQLiteConfig struct {
	WAL  bool   `mapstructure:"wal"`
	Sync string `mapstructure:"sync" validate:"omitempty,oneof=OFF NORMAL FULL EXTRA off normal full extra"`
}

// Load reads configFile, or a .flow file found in $FLOW_CONFIG_PATH, the
// current directory or the home directory. Every key may be overridden by
// FLOW_<KEY>, e.g. FLOW_LOG_LEVEL.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".flow")
		if override := os.Getenv("FLOW_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix("FLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", string(store.BackendDiskv))
	v.SetDefault("path", "~/.flow")
	v.SetDefault("user", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", 100*time.Millisecond)
	v.SetDefault("sqlite.wal", true)
	v.SetDefault("sqlite.sync", "NORMAL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	path, err := homedir.Expand(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expand path %q: %w", cfg.Path, err)
	}
	cfg.Path = path

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Store returns the storage settings.
func (c *Config) Store() store.Config {
	return store.Config{
		Backend: store.Backend(c.Backend),
		Path:    c.Path,
		WAL:     c.SQLite.WAL,
		Sync:    c.SQLite.Sync,
		Retry: store.RetryPolicy{
			Attempts: c.Retry.Attempts,
			Delay:    c.Retry.Delay,
		},
	}
}
