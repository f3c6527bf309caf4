// Package config loads runtime settings for the medminder CLI, in the
// layering defaults -> JSON file -> command-line flags, later sources
// overriding earlier ones.
package config

import "time"

// Config holds runtime settings for the medminder CLI.
//
// Fields:
//   - DatabasePath: location of the local SQLite store.
//   - TickInterval: how often the scheduler polls the wall clock.
//   - CleanupInterval / BackupInterval: cadence of the maintenance jobs.
//   - BackupKeepCount: snapshots retained by the periodic backup job.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	DatabasePath    string
	TickInterval    time.Duration
	CleanupInterval time.Duration
	BackupInterval  time.Duration
	BackupKeepCount int
	LogLevel        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "medminder.db"
	c.TickInterval = time.Minute
	c.CleanupInterval = 24 * time.Hour
	c.BackupInterval = 7 * 24 * time.Hour
	c.BackupKeepCount = 5
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
