// Package storage implements the persistence gateway over the key/value
// store: the four data collections (medications, response records, delays,
// settings), backup snapshots, export/import and retention cleanup.
//
// Collections are read and written whole. Read paths are fail-soft: entries
// that fail validation are dropped, the cleaned collection is persisted
// back, and the caller gets a safe default on storage failure. Write paths
// are fail-loud: nothing is persisted unless it validates first.
//
// All operations take a single Manager mutex. Each operation is its own
// read-modify-write cycle against the store, so serializing them preserves
// the append-only record log and the one-delay-per-medication invariant
// when ticks and user actions overlap.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/dbx"
	"github.com/dmitrijs2005/medminder/internal/logging"
	"github.com/dmitrijs2005/medminder/internal/repositories/kv"
)

// Storage keys. The names mirror the collections they hold; backup
// snapshots live under backupKeyPrefix plus a millisecond timestamp.
const (
	keyMedications = "medication_reminders"
	keyRecords     = "medication_records"
	keySettings    = "app_settings"
	keyDelays      = "medication_delays"
	keyBackupIndex = "backup_timestamps"

	backupKeyPrefix = "backup_"
)

// Manager is the persistence gateway. Construct it with NewManager.
type Manager struct {
	kv  kv.Repository
	db  *sql.DB
	log logging.Logger

	mu    sync.Mutex
	nowFn func() time.Time
}

// NewManager returns a Manager over the given database handle.
func NewManager(db *sql.DB, log logging.Logger) *Manager {
	return &Manager{
		kv:    kv.NewSQLiteRepository(db),
		db:    db,
		log:   log,
		nowFn: time.Now,
	}
}

// loadJSON reads key into v. It returns false when the key is absent or the
// stored value cannot be decoded; decode failures are logged and treated as
// an empty collection so one corrupt value never wedges the application.
func (m *Manager) loadJSON(ctx context.Context, key string, v any) bool {
	raw, err := m.kv.Get(ctx, key)
	if errors.Is(err, common.ErrNotFound) {
		return false
	}
	if err != nil {
		m.log.Error(ctx, "failed to read collection", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		m.log.Error(ctx, "corrupt collection, using empty default", "key", key, "error", err)
		return false
	}
	return true
}

// saveJSON marshals v and writes it under key.
func (m *Manager) saveJSON(ctx context.Context, repo kv.Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return repo.Set(ctx, key, raw)
}

// withTx runs fn against a transaction-scoped repository so multi-key
// writes (import, restore) land atomically.
func (m *Manager) withTx(ctx context.Context, fn func(repo kv.Repository) error) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(kv.NewSQLiteRepository(tx))
	})
}

func (m *Manager) now() time.Time {
	return m.nowFn()
}
