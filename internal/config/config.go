// Package config loads service configuration from defaults, an
// optional YAML file and WINDSITE_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_sec"`
	AllowOrigins    []string `mapstructure:"allow_origins"`
}

// ProvidersConfig groups the upstream data sources.
type ProvidersConfig struct {
	OpenMeteo OpenMeteoConfig `mapstructure:"open_meteo"`
	Overpass  OverpassConfig  `mapstructure:"overpass"`
}

// OpenMeteoConfig controls the wind forecast provider.
type OpenMeteoConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// OverpassConfig controls the OpenStreetMap obstacle provider.
type OverpassConfig struct {
	BaseURL    string  `mapstructure:"base_url"`
	TimeoutSec int     `mapstructure:"timeout_sec"`
	MaxAreaKm2 float64 `mapstructure:"max_area_km2"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration in precedence order: defaults, then an
// optional config.yaml found in "." or "./configs", then WINDSITE_*
// environment variables (WINDSITE_SERVER_PORT overrides server.port).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_sec", 15)
	v.SetDefault("server.write_timeout_sec", 60)
	v.SetDefault("server.allow_origins", []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})
	v.SetDefault("providers.open_meteo.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("providers.open_meteo.timeout_sec", 10)
	v.SetDefault("providers.open_meteo.max_concurrent", 16)
	v.SetDefault("providers.overpass.base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("providers.overpass.timeout_sec", 20)
	v.SetDefault("providers.overpass.max_area_km2", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("WINDSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeoutSec < 1 {
		errs = append(errs, "server.read_timeout_sec must be at least 1")
	}
	if c.Server.WriteTimeoutSec < 1 {
		errs = append(errs, "server.write_timeout_sec must be at least 1")
	}
	if c.Providers.OpenMeteo.BaseURL == "" {
		errs = append(errs, "providers.open_meteo.base_url must not be empty")
	}
	if c.Providers.OpenMeteo.TimeoutSec < 1 {
		errs = append(errs, "providers.open_meteo.timeout_sec must be at least 1")
	}
	if c.Providers.OpenMeteo.MaxConcurrent < 1 {
		errs = append(errs, "providers.open_meteo.max_concurrent must be at least 1")
	}
	if c.Providers.Overpass.BaseURL == "" {
		errs = append(errs, "providers.overpass.base_url must not be empty")
	}
	if c.Providers.Overpass.TimeoutSec < 1 {
		errs = append(errs, "providers.overpass.timeout_sec must be at least 1")
	}
	if c.Providers.Overpass.MaxAreaKm2 <= 0 {
		errs = append(errs, "providers.overpass.max_area_km2 must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
