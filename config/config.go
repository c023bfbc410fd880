// Copyright 2026 The Artigraph Authors. All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config loads process-level Artigraph settings: which backend to
// use, where local storage roots live, executor parallelism, and the log
// level. Artigraph is a library, so nothing here is required — hosts that
// construct everything programmatically can ignore this package — but
// hosts that want file/env-driven wiring get the standard shape.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/artigraph/artigraph/errs"
	"github.com/artigraph/artigraph/logging"
)

// Config is the process-level Artigraph configuration.
type Config struct {
	// LogLevel is one of "error", "warn", "info", "debug".
	LogLevel string `mapstructure:"log_level"`
	// Parallelism bounds how many independent graph nodes an Executor
	// builds concurrently. Zero means "use the executor default"
	// (GOMAXPROCS).
	Parallelism int `mapstructure:"parallelism"`
	// Backend selects and parameterizes the metadata backend.
	Backend BackendConfig `mapstructure:"backend"`
	// Storage holds settings shared by storage drivers.
	Storage StorageConfig `mapstructure:"storage"`
	// PathTags are substituted for every {path_tags} placeholder in a
	// graph's storage path templates.
	PathTags map[string]string `mapstructure:"path_tags"`
}

// BackendConfig selects the metadata backend.
type BackendConfig struct {
	// Kind names the backend implementation; "inmem" is the reference
	// implementation shipped with Artigraph.
	Kind string `mapstructure:"kind"`
}

// StorageConfig holds settings shared by storage drivers.
type StorageConfig struct {
	// Root is prepended to relative LocalFile path templates by hosts
	// that want one configurable data directory.
	Root string `mapstructure:"root"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Backend:  BackendConfig{Kind: "inmem"},
		PathTags: map[string]string{},
	}
}

// Load reads configuration from the YAML file at path (optional — an
// empty path skips the file) and from ARTIGRAPH_* environment variables,
// with environment taking precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("parallelism", 0)
	v.SetDefault("backend.kind", "inmem")
	v.SetDefault("storage.root", "")

	v.SetEnvPrefix("ARTIGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errs.Wrap(err, errs.DefinitionErr, "config: reading %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, errs.DefinitionErr, "config: unmarshaling %q", path)
	}
	if err := cfg.validateAndInjectDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validateAndInjectDefaults() error {
	switch c.LogLevel {
	case "error", "warn", "info", "debug":
	default:
		return errs.New(errs.DefinitionErr, "config: unknown log_level %q", c.LogLevel)
	}
	if c.Parallelism < 0 {
		return errs.New(errs.DefinitionErr, "config: parallelism must be >= 0, got %d", c.Parallelism)
	}
	if c.PathTags == nil {
		c.PathTags = map[string]string{}
	}
	return nil
}

// Logger returns a logging.Logger at the configured level.
func (c Config) Logger() logging.Logger {
	l := logging.New()
	switch c.LogLevel {
	case "error":
		l.SetLevel(logging.Error)
	case "warn":
		l.SetLevel(logging.Warn)
	case "debug":
		l.SetLevel(logging.Debug)
	default:
		l.SetLevel(logging.Info)
	}
	return l
}
