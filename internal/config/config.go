// Package config loads application settings from an optional YAML file
// and MATHENIQUE_* environment variables, environment taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API APIConfig `mapstructure:"api"`
	Log LogConfig `mapstructure:"log"`
}

// APIConfig points the app at the backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultBaseURL is the hosted backend.
const DefaultBaseURL = "https://mathenique.onrender.com"

// Load reads configuration. A missing config file is not an error; the
// defaults describe the hosted backend.
func Load() (*Config, error) {
	return load("")
}

// LoadFile reads configuration from a specific file instead of the
// default search path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("log.level", "warn")

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := defaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	// A missing default config is fine; anything else, a missing explicit
	// file included, is reported.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MATHENIQUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"api.base_url", "api.timeout", "log.level"} {
		envVar := "MATHENIQUE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url must not be empty")
	}
	return &cfg, nil
}

func defaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mathenique"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mathenique"), nil
}
