package models

import "time"

// FormatVersion is written into every backup and export envelope and
// required on import.
const FormatVersion = "1.0"

// Backup is a whole-state snapshot stored under its own key.
type Backup struct {
	Medications []Medication `json:"medications"`
	Records     []Record     `json:"records"`
	Settings    Settings     `json:"settings"`
	Delays      Delays       `json:"delays"`
	BackupDate  time.Time    `json:"backupDate"`
	Version     string       `json:"version"`
}

// BackupRef is an index entry pointing at a stored backup.
type BackupRef struct {
	Key  string    `json:"key"`
	Date time.Time `json:"date"`
}

// BackupInfo is a BackupRef enriched with collection counts for display.
type BackupInfo struct {
	BackupRef
	MedicationsCount int `json:"medicationsCount"`
	RecordsCount     int `json:"recordsCount"`
}

// Export is the import/export envelope. It carries the same collections as
// a Backup; import rejects the whole envelope unless Version is present and
// every collection validates.
type Export struct {
	Medications []Medication `json:"medications"`
	Records     []Record     `json:"records"`
	Settings    *Settings    `json:"settings"`
	Delays      Delays       `json:"delays"`
	Version     string       `json:"version"`
	ExportedAt  time.Time    `json:"exportedAt"`
}
