package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/google/uuid"
)

// Medications returns all stored medications. Entries failing validation
// are dropped and the cleaned collection is persisted back.
func (m *Manager) Medications(ctx context.Context) []models.Medication {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.medicationsLocked(ctx)
}

func (m *Manager) medicationsLocked(ctx context.Context) []models.Medication {
	var meds []models.Medication
	if !m.loadJSON(ctx, keyMedications, &meds) {
		return []models.Medication{}
	}

	valid := make([]models.Medication, 0, len(meds))
	for _, med := range meds {
		if err := med.Validate(); err != nil {
			m.log.Warn(ctx, "dropping invalid medication", "id", med.ID, "error", err)
			continue
		}
		valid = append(valid, med)
	}

	if len(valid) != len(meds) {
		if err := m.saveJSON(ctx, m.kv, keyMedications, valid); err != nil {
			m.log.Error(ctx, "failed to persist cleaned medications", "error", err)
		}
	}

	return valid
}

func (m *Manager) saveMedicationsLocked(ctx context.Context, meds []models.Medication) error {
	valid := make([]models.Medication, 0, len(meds))
	for _, med := range meds {
		if err := med.Validate(); err != nil {
			m.log.Warn(ctx, "refusing to persist invalid medication", "id", med.ID, "error", err)
			continue
		}
		valid = append(valid, med)
	}
	if err := m.saveJSON(ctx, m.kv, keyMedications, valid); err != nil {
		return fmt.Errorf("%w: saving medications: %w", common.ErrStorage, err)
	}
	return nil
}

// SaveMedications replaces the whole collection. Invalid entries are
// filtered out before the write.
func (m *Manager) SaveMedications(ctx context.Context, meds []models.Medication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveMedicationsLocked(ctx, meds)
}

// AddMedication assigns a fresh id and creation timestamp, enables the
// medication and appends it. The medication must otherwise be valid.
func (m *Manager) AddMedication(ctx context.Context, med models.Medication) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	med.ID = uuid.NewString()
	med.CreatedAt = m.now()
	med.Enabled = true

	if err := med.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	meds := m.medicationsLocked(ctx)
	meds = append(meds, med)
	if err := m.saveMedicationsLocked(ctx, meds); err != nil {
		return "", err
	}
	return med.ID, nil
}

// UpdateMedication applies apply to the medication with the given id and
// persists the result. It returns false when the id is unknown and an error
// when the updated medication no longer validates.
func (m *Manager) UpdateMedication(ctx context.Context, id string, apply func(*models.Medication)) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meds := m.medicationsLocked(ctx)
	for i := range meds {
		if meds[i].ID != id {
			continue
		}
		updated := meds[i]
		apply(&updated)
		// id and epoch are immutable
		updated.ID = meds[i].ID
		updated.CreatedAt = meds[i].CreatedAt
		if err := updated.Validate(); err != nil {
			return false, fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		meds[i] = updated
		if err := m.saveMedicationsLocked(ctx, meds); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// DeleteMedication removes the medication, its response records and any
// pending delay. It returns false when the id is unknown.
func (m *Manager) DeleteMedication(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meds := m.medicationsLocked(ctx)
	kept := make([]models.Medication, 0, len(meds))
	found := false
	for _, med := range meds {
		if med.ID == id {
			found = true
			continue
		}
		kept = append(kept, med)
	}
	if !found {
		return false, nil
	}

	if err := m.saveMedicationsLocked(ctx, kept); err != nil {
		return false, err
	}
	if err := m.deleteRecordsForMedicationLocked(ctx, id); err != nil {
		return false, err
	}
	if err := m.clearDelayLocked(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteMedicationTime removes a single (time, slot) entry. When the last
// entry goes, the whole medication is removed. Returns false when either
// the medication or the entry is unknown.
func (m *Manager) DeleteMedicationTime(ctx context.Context, id, timeStr string, slot models.TimeSlot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	meds := m.medicationsLocked(ctx)
	for i := range meds {
		if meds[i].ID != id {
			continue
		}
		kept := make([]models.TimeEntry, 0, len(meds[i].Times))
		removed := false
		for _, e := range meds[i].Times {
			if e.Time == timeStr && e.Slot == slot {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		if !removed {
			return false, nil
		}
		if len(kept) == 0 {
			meds = append(meds[:i], meds[i+1:]...)
		} else {
			meds[i].Times = kept
		}
		if err := m.saveMedicationsLocked(ctx, meds); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
