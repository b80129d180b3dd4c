// Package config loads and validates application configuration from the
// environment and an optional config file.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync" validate:"required"`
	Wanikani WanikaniConfig `mapstructure:"wanikani" validate:"required"`
}

// ServerConfig contains process-level settings.
type ServerConfig struct {
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SyncConfig controls the periodic synchronization machinery.
type SyncConfig struct {
	// IntervalMinutes is how often a sync pass is enqueued for every
	// eligible profile.
	IntervalMinutes int `mapstructure:"interval_minutes" validate:"required,gt=0"`

	// WorkerCount is the number of concurrent per-profile sync passes.
	// Passes for different profiles touch disjoint review rows, so they
	// are safe to run in parallel.
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`

	// QueueSize bounds the in-memory task queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// FullSync forces every pass to fetch all vocabulary assignments
	// instead of the recent-levels incremental window.
	FullSync bool `mapstructure:"full_sync"`

	// DueFlagIntervalMinutes is how often overdue reviews are flagged.
	DueFlagIntervalMinutes int `mapstructure:"due_flag_interval_minutes" validate:"required,gt=0"`

	// CatalogRefreshIntervalHours is how often the shared vocabulary
	// catalog is reconciled. Zero disables catalog refreshes.
	CatalogRefreshIntervalHours int `mapstructure:"catalog_refresh_interval_hours" validate:"gte=0"`
}

// WanikaniConfig holds the remote provider settings.
type WanikaniConfig struct {
	// BaseURL is the remote API root.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// CatalogAPIKey is the service-level credential used for catalog
	// refreshes. Empty disables catalog refreshes; per-user sync still
	// runs under each profile's own key.
	CatalogAPIKey string `mapstructure:"catalog_api_key"`
}
