// Package config loads coresch settings from an optional YAML file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName = "coresch"
	fileType = "yaml"

	envPrefix = "CORESCH"

	KeyLibraryPaths = "library_paths"
	KeyLogLevel     = "log_level"

	defaultLogLevel = "info"
)

// Flags bound to configuration keys when present on the flag set.
var flagKeys = map[string]string{
	"lib":       KeyLibraryPaths,
	"log-level": KeyLogLevel,
}

// Config is the resolved configuration.
type Config struct {
	LibraryPaths []string `mapstructure:"library_paths"`
	LogLevel     string   `mapstructure:"log_level"`
}

// Load reads path, or coresch.yaml from the working directory when path is
// empty. A missing default file is not an error; a missing explicit file is.
// Environment variables use the CORESCH_ prefix. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyLogLevel, defaultLogLevel)
	v.SetDefault(KeyLibraryPaths, []string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind --%s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{
		LibraryPaths: v.GetStringSlice(KeyLibraryPaths),
		LogLevel:     v.GetString(KeyLogLevel),
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: %s: %w", KeyLogLevel, err)
	}
	return lvl, nil
}
