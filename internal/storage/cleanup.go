package storage

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// DefaultRecordRetentionDays is how long response records are kept before
// the periodic cleanup drops them.
const DefaultRecordRetentionDays = 365

// CleanupResult reports what a maintenance pass removed.
type CleanupResult struct {
	ExpiredRecords int       `json:"expiredRecordsCleaned"`
	OrphanDelays   int       `json:"invalidDelaysCleaned"`
	CleanedAt      time.Time `json:"cleanedAt"`
}

// CleanupExpiredRecords drops response records older than days and returns
// how many were removed.
func (m *Manager) CleanupExpiredRecords(ctx context.Context, days int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -days)
	records := m.recordsLocked(ctx)
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := m.saveRecordsLocked(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// CleanupOrphanDelays removes delay entries referencing medications that no
// longer exist and returns how many were removed.
func (m *Manager) CleanupOrphanDelays(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delays := m.delaysLocked(ctx)
	ids := map[string]struct{}{}
	for _, med := range m.medicationsLocked(ctx) {
		ids[med.ID] = struct{}{}
	}

	removed := 0
	for id := range delays {
		if _, ok := ids[id]; !ok {
			delete(delays, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	if err := m.saveDelaysLocked(ctx, delays); err != nil {
		return 0, err
	}
	return removed, nil
}

// CleanupData runs the full maintenance pass: expired-record retention and
// orphan-delay removal. Failures are logged, not propagated; cleanup is a
// background task and must never take the application down.
func (m *Manager) CleanupData(ctx context.Context) CleanupResult {
	result := CleanupResult{CleanedAt: m.now()}

	expired, err := m.CleanupExpiredRecords(ctx, DefaultRecordRetentionDays)
	if err != nil {
		m.log.Error(ctx, "record cleanup failed", "error", err)
	}
	result.ExpiredRecords = expired

	orphans, err := m.CleanupOrphanDelays(ctx)
	if err != nil {
		m.log.Error(ctx, "delay cleanup failed", "error", err)
	}
	result.OrphanDelays = orphans

	return result
}
