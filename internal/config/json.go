package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medminder/internal/flagx"
	"github.com/dmitrijs2005/medminder/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "60s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabasePath    string         `json:"database_path"`
	TickInterval    timex.Duration `json:"tick_interval"`
	CleanupInterval timex.Duration `json:"cleanup_interval"`
	BackupInterval  timex.Duration `json:"backup_interval"`
	BackupKeepCount int            `json:"backup_keep_count"`
	LogLevel        string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file named via
// the -c or -config flags. Absent file path means no JSON is loaded. Fields
// left empty/zero in the file keep their current values.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.TickInterval.Duration > 0 {
		cfg.TickInterval = jc.TickInterval.Duration
	}
	if jc.CleanupInterval.Duration > 0 {
		cfg.CleanupInterval = jc.CleanupInterval.Duration
	}
	if jc.BackupInterval.Duration > 0 {
		cfg.BackupInterval = jc.BackupInterval.Duration
	}
	if jc.BackupKeepCount > 0 {
		cfg.BackupKeepCount = jc.BackupKeepCount
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
