package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
)

// Settings returns the stored settings, falling back to the documented
// defaults when the collection is absent or unreadable.
func (m *Manager) Settings(ctx context.Context) models.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsLocked(ctx)
}

func (m *Manager) settingsLocked(ctx context.Context) models.Settings {
	s := models.DefaultSettings()
	m.loadJSON(ctx, keySettings, &s)
	return s
}

// SaveSettings replaces the settings record.
func (m *Manager) SaveSettings(ctx context.Context, s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveJSON(ctx, m.kv, keySettings, s); err != nil {
		return fmt.Errorf("%w: saving settings: %w", common.ErrStorage, err)
	}
	return nil
}
