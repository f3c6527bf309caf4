package storage

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/google/uuid"
)

// Records returns the full response log, oldest first. Invalid entries are
// dropped on read and the cleaned log is persisted back.
func (m *Manager) Records(ctx context.Context) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recordsLocked(ctx)
}

func (m *Manager) recordsLocked(ctx context.Context) []models.Record {
	var records []models.Record
	if !m.loadJSON(ctx, keyRecords, &records) {
		return []models.Record{}
	}

	valid := make([]models.Record, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			m.log.Warn(ctx, "dropping invalid record", "id", r.ID, "error", err)
			continue
		}
		valid = append(valid, r)
	}

	if len(valid) != len(records) {
		if err := m.saveJSON(ctx, m.kv, keyRecords, valid); err != nil {
			m.log.Error(ctx, "failed to persist cleaned records", "error", err)
		}
	}

	return valid
}

func (m *Manager) saveRecordsLocked(ctx context.Context, records []models.Record) error {
	if err := m.saveJSON(ctx, m.kv, keyRecords, records); err != nil {
		return fmt.Errorf("%w: saving records: %w", common.ErrStorage, err)
	}
	return nil
}

// RecordResponse appends one immutable response record for the medication.
// The record is validated before anything is written; on a validation
// failure nothing is persisted. delayMinutes is zero unless the response
// resolves a snoozed reminder.
func (m *Manager) RecordResponse(ctx context.Context, medicationID string, action models.Action, delayMinutes int) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := models.Record{
		ID:           uuid.NewString(),
		MedicationID: medicationID,
		Action:       action,
		Timestamp:    m.now(),
		DelayMinutes: delayMinutes,
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	records := m.recordsLocked(ctx)
	records = append(records, record)
	if err := m.saveRecordsLocked(ctx, records); err != nil {
		return nil, err
	}
	return &record, nil
}

// RecordsForMedication returns the log entries referencing one medication.
func (m *Manager) RecordsForMedication(ctx context.Context, medicationID string) []models.Record {
	all := m.Records(ctx)
	result := make([]models.Record, 0, len(all))
	for _, r := range all {
		if r.MedicationID == medicationID {
			result = append(result, r)
		}
	}
	return result
}

func (m *Manager) deleteRecordsForMedicationLocked(ctx context.Context, medicationID string) error {
	records := m.recordsLocked(ctx)
	kept := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.MedicationID != medicationID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return m.saveRecordsLocked(ctx, kept)
}

// DeleteRecordsForMedication removes all records of one medication.
func (m *Manager) DeleteRecordsForMedication(ctx context.Context, medicationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteRecordsForMedicationLocked(ctx, medicationID)
}

// ClearRecords drops the whole response log.
func (m *Manager) ClearRecords(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, keyRecords); err != nil {
		return fmt.Errorf("%w: clearing records: %w", common.ErrStorage, err)
	}
	return nil
}
