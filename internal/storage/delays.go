package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
)

// Delays returns the pending postponements keyed by medication id.
func (m *Manager) Delays(ctx context.Context) models.Delays {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delaysLocked(ctx)
}

func (m *Manager) delaysLocked(ctx context.Context) models.Delays {
	delays := models.Delays{}
	m.loadJSON(ctx, keyDelays, &delays)
	if delays == nil {
		delays = models.Delays{}
	}
	return delays
}

func (m *Manager) saveDelaysLocked(ctx context.Context, delays models.Delays) error {
	if err := m.saveJSON(ctx, m.kv, keyDelays, delays); err != nil {
		return fmt.Errorf("%w: saving delays: %w", common.ErrStorage, err)
	}
	return nil
}

// SetDelay postpones the reminder of a medication by delayMinutes from
// originalTime. A medication has at most one pending delay; setting a new
// one replaces the previous (last write wins).
func (m *Manager) SetDelay(ctx context.Context, medicationID string, delayMinutes int, originalTime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delays := m.delaysLocked(ctx)
	delays[medicationID] = models.Delay{
		OriginalTime: originalTime,
		DelayTime:    originalTime.Add(time.Duration(delayMinutes) * time.Minute),
		DelayMinutes: delayMinutes,
	}
	return m.saveDelaysLocked(ctx, delays)
}

// DelayFor returns the pending delay of a medication, if any.
func (m *Manager) DelayFor(ctx context.Context, medicationID string) (models.Delay, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.delaysLocked(ctx)[medicationID]
	return d, ok
}

func (m *Manager) clearDelayLocked(ctx context.Context, medicationID string) error {
	delays := m.delaysLocked(ctx)
	if _, ok := delays[medicationID]; !ok {
		return nil
	}
	delete(delays, medicationID)
	return m.saveDelaysLocked(ctx, delays)
}

// ClearDelay removes the pending delay of a medication. Clearing an absent
// delay is a no-op.
func (m *Manager) ClearDelay(ctx context.Context, medicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearDelayLocked(ctx, medicationID)
}
