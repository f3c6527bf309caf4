package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/dmitrijs2005/medminder/internal/repositories/kv"
)

// CreateBackup snapshots all four collections under a fresh backup key and
// registers it in the backup index. The snapshot and the index update are
// written in one transaction.
func (m *Manager) CreateBackup(ctx context.Context) (*models.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createBackupLocked(ctx)
}

func (m *Manager) createBackupLocked(ctx context.Context) (*models.Backup, error) {
	now := m.now()
	backup := models.Backup{
		Medications: m.medicationsLocked(ctx),
		Records:     m.recordsLocked(ctx),
		Settings:    m.settingsLocked(ctx),
		Delays:      m.delaysLocked(ctx),
		BackupDate:  now,
		Version:     models.FormatVersion,
	}

	key := backupKeyPrefix + strconv.FormatInt(now.UnixMilli(), 10)
	index := m.backupIndexLocked(ctx)
	index = append(index, models.BackupRef{Key: key, Date: now})

	err := m.withTx(ctx, func(repo kv.Repository) error {
		if err := m.saveJSON(ctx, repo, key, backup); err != nil {
			return err
		}
		return m.saveJSON(ctx, repo, keyBackupIndex, index)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating backup: %w", common.ErrStorage, err)
	}
	return &backup, nil
}

// backupIndexLocked loads the snapshot index and reconciles it against a
// prefix scan of the store, so snapshots whose index entry was lost are
// found again. A recovered index is persisted back.
func (m *Manager) backupIndexLocked(ctx context.Context) []models.BackupRef {
	var index []models.BackupRef
	m.loadJSON(ctx, keyBackupIndex, &index)

	indexed := make(map[string]struct{}, len(index))
	for _, ref := range index {
		indexed[ref.Key] = struct{}{}
	}

	keys, err := m.kv.Keys(ctx, backupKeyPrefix)
	if err != nil {
		m.log.Error(ctx, "failed to scan for backups", "error", err)
		keys = nil
	}

	recovered := false
	for _, key := range keys {
		// the index itself lives under the same prefix
		if key == keyBackupIndex {
			continue
		}
		if _, ok := indexed[key]; ok {
			continue
		}
		raw, err := m.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var b models.Backup
		if err := json.Unmarshal(raw, &b); err != nil {
			m.log.Warn(ctx, "skipping corrupt unindexed backup", "key", key, "error", err)
			continue
		}
		index = append(index, models.BackupRef{Key: key, Date: b.BackupDate})
		recovered = true
	}
	if recovered {
		if err := m.saveJSON(ctx, m.kv, keyBackupIndex, index); err != nil {
			m.log.Error(ctx, "failed to persist recovered backup index", "error", err)
		}
	}

	if index == nil {
		index = []models.BackupRef{}
	}
	return index
}

// Backups lists the stored snapshots with their collection counts.
// Index entries whose snapshot can no longer be read are skipped.
func (m *Manager) Backups(ctx context.Context) []models.BackupInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.backupIndexLocked(ctx)
	result := make([]models.BackupInfo, 0, len(index))
	for _, ref := range index {
		raw, err := m.kv.Get(ctx, ref.Key)
		if err != nil {
			m.log.Warn(ctx, "skipping unreadable backup", "key", ref.Key, "error", err)
			continue
		}
		var b models.Backup
		if err := json.Unmarshal(raw, &b); err != nil {
			m.log.Warn(ctx, "skipping corrupt backup", "key", ref.Key, "error", err)
			continue
		}
		result = append(result, models.BackupInfo{
			BackupRef:        ref,
			MedicationsCount: len(b.Medications),
			RecordsCount:     len(b.Records),
		})
	}
	return result
}

// RestoreBackup replaces all collections with the snapshot stored under
// key. The snapshot is validated as a whole before anything is written.
func (m *Manager) RestoreBackup(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: backup %q: %w", common.ErrInvalidImport, key, err)
	}
	var b models.Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return fmt.Errorf("%w: backup %q: %w", common.ErrInvalidImport, key, err)
	}
	if b.Version == "" || b.Medications == nil || b.Records == nil {
		return fmt.Errorf("%w: backup %q is incomplete", common.ErrInvalidImport, key)
	}
	if err := validateCollections(b.Medications, b.Records); err != nil {
		return fmt.Errorf("%w: backup %q: %w", common.ErrInvalidImport, key, err)
	}

	delays := b.Delays
	if delays == nil {
		delays = models.Delays{}
	}

	err = m.withTx(ctx, func(repo kv.Repository) error {
		if err := m.saveJSON(ctx, repo, keyMedications, b.Medications); err != nil {
			return err
		}
		if err := m.saveJSON(ctx, repo, keyRecords, b.Records); err != nil {
			return err
		}
		if err := m.saveJSON(ctx, repo, keySettings, b.Settings); err != nil {
			return err
		}
		return m.saveJSON(ctx, repo, keyDelays, delays)
	})
	if err != nil {
		return fmt.Errorf("%w: restoring backup: %w", common.ErrStorage, err)
	}
	return nil
}

// DeleteBackup removes a snapshot and its index entry. Returns false when
// the key is not in the index.
func (m *Manager) DeleteBackup(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteBackupLocked(ctx, key)
}

func (m *Manager) deleteBackupLocked(ctx context.Context, key string) (bool, error) {
	index := m.backupIndexLocked(ctx)
	kept := make([]models.BackupRef, 0, len(index))
	found := false
	for _, ref := range index {
		if ref.Key == key {
			found = true
			continue
		}
		kept = append(kept, ref)
	}
	if !found {
		return false, nil
	}

	err := m.withTx(ctx, func(repo kv.Repository) error {
		if err := repo.Delete(ctx, key); err != nil {
			return err
		}
		return m.saveJSON(ctx, repo, keyBackupIndex, kept)
	})
	if err != nil {
		return false, fmt.Errorf("%w: deleting backup: %w", common.ErrStorage, err)
	}
	return true, nil
}

// CleanupOldBackups keeps the newest keep snapshots (by backup date) and
// deletes the rest, returning how many were removed.
func (m *Manager) CleanupOldBackups(ctx context.Context, keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := m.backupIndexLocked(ctx)
	if len(index) <= keep {
		return 0, nil
	}

	sort.Slice(index, func(i, j int) bool { return index[i].Date.After(index[j].Date) })

	deleted := 0
	for _, ref := range index[keep:] {
		ok, err := m.deleteBackupLocked(ctx, ref.Key)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

// ExportData assembles the full application state into an export envelope.
func (m *Manager) ExportData(ctx context.Context) models.Export {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := m.settingsLocked(ctx)
	return models.Export{
		Medications: m.medicationsLocked(ctx),
		Records:     m.recordsLocked(ctx),
		Settings:    &settings,
		Delays:      m.delaysLocked(ctx),
		Version:     models.FormatVersion,
		ExportedAt:  m.now(),
	}
}

// ImportData replaces all collections with the contents of the envelope.
// The import is all-or-nothing: it is rejected unless the version is
// present, the three core collections are present, and every medication
// and record validates. A backup is taken right after a successful import.
func (m *Manager) ImportData(ctx context.Context, data models.Export) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if data.Version == "" {
		return fmt.Errorf("%w: missing version", common.ErrInvalidImport)
	}
	if data.Medications == nil || data.Records == nil || data.Settings == nil {
		return fmt.Errorf("%w: incomplete data", common.ErrInvalidImport)
	}
	if err := validateCollections(data.Medications, data.Records); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidImport, err)
	}

	delays := data.Delays
	if delays == nil {
		delays = models.Delays{}
	}

	err := m.withTx(ctx, func(repo kv.Repository) error {
		if err := m.saveJSON(ctx, repo, keyMedications, data.Medications); err != nil {
			return err
		}
		if err := m.saveJSON(ctx, repo, keyRecords, data.Records); err != nil {
			return err
		}
		if err := m.saveJSON(ctx, repo, keySettings, data.Settings); err != nil {
			return err
		}
		return m.saveJSON(ctx, repo, keyDelays, delays)
	})
	if err != nil {
		return fmt.Errorf("%w: importing data: %w", common.ErrStorage, err)
	}

	if _, err := m.createBackupLocked(ctx); err != nil {
		m.log.Warn(ctx, "post-import backup failed", "error", err)
	}
	return nil
}

func validateCollections(meds []models.Medication, records []models.Record) error {
	for _, med := range meds {
		if err := med.Validate(); err != nil {
			return fmt.Errorf("medication %q: %w", med.ID, err)
		}
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %q: %w", r.ID, err)
		}
	}
	return nil
}
