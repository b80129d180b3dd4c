package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the KW_
// prefix with underscores for nesting (e.g. KW_DATABASE_URL) and take
// precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep a bare environment runnable; only the database URL
	// has no sensible default.
	v.SetDefault("server.log_level", "info")
	v.SetDefault("sync.interval_minutes", 720)
	v.SetDefault("sync.worker_count", 4)
	v.SetDefault("sync.queue_size", 256)
	v.SetDefault("sync.full_sync", false)
	v.SetDefault("sync.due_flag_interval_minutes", 15)
	v.SetDefault("sync.catalog_refresh_interval_hours", 24)
	v.SetDefault("wanikani.base_url", "https://api.wanikani.com/v2")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; the environment can carry
		// everything. Any other read failure is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
