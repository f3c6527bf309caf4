package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medminder/internal/common"
	"github.com/dmitrijs2005/medminder/internal/models"
)

// steppingClock returns a nowFn that advances by one minute on every call,
// so consecutive backups land under distinct keys.
func steppingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestCreateBackup_SnapshotsAndIndexes(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	id, err := m.AddMedication(ctx, testMedication("Aspirin"))
	require.NoError(t, err)
	_, err = m.RecordResponse(ctx, id, models.ActionTaken, 0)
	require.NoError(t, err)

	b, err := m.CreateBackup(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.FormatVersion, b.Version)
	require.Len(t, b.Medications, 1)
	require.Len(t, b.Records, 1)

	infos := m.Backups(ctx)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].MedicationsCount)
	assert.Equal(t, 1, infos[0].RecordsCount)
}

func TestRestoreBackup_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	id, err := m.AddMedication(ctx, testMedication("Aspirin"))
	require.NoError(t, err)
	_, err = m.CreateBackup(ctx)
	require.NoError(t, err)

	infos := m.Backups(ctx)
	require.Len(t, infos, 1)
	key := infos[0].Key

	// mutate state after the snapshot
	_, err = m.DeleteMedication(ctx, id)
	require.NoError(t, err)
	require.Empty(t, m.Medications(ctx))

	require.NoError(t, m.RestoreBackup(ctx, key))

	meds := m.Medications(ctx)
	require.Len(t, meds, 1)
	assert.Equal(t, id, meds[0].ID)
}

func TestRestoreBackup_UnknownKey(t *testing.T) {
	m := newTestManager(t)
	err := m.RestoreBackup(context.Background(), "backup_123")
	require.ErrorIs(t, err, common.ErrInvalidImport)
}

func TestRestoreBackup_CorruptSnapshot(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.kv.Set(ctx, "backup_1", []byte("{broken")))
	err := m.RestoreBackup(ctx, "backup_1")
	require.ErrorIs(t, err, common.ErrInvalidImport)
}

func TestDeleteBackup(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	_, err := m.CreateBackup(ctx)
	require.NoError(t, err)
	key := m.Backups(ctx)[0].Key

	ok, err := m.DeleteBackup(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, m.Backups(ctx))

	_, err = m.kv.Get(ctx, key)
	require.ErrorIs(t, err, common.ErrNotFound)

	ok, err = m.DeleteBackup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCleanupOldBackups_KeepsNewest(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.CreateBackup(ctx)
		require.NoError(t, err)
	}

	deleted, err := m.CleanupOldBackups(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	infos := m.Backups(ctx)
	require.Len(t, infos, 2)
	// the survivors are the two most recent snapshots (minutes 4 and 5)
	cutoff := time.Date(2024, 1, 5, 8, 3, 0, 0, time.Local)
	for _, info := range infos {
		assert.True(t, info.Date.After(cutoff), info.Key)
	}

	// already within the limit
	deleted, err = m.CleanupOldBackups(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestBackups_RecoversUnindexedSnapshot(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	// a snapshot whose index entry was lost
	orphan := models.Backup{
		Medications: []models.Medication{},
		Records:     []models.Record{},
		Settings:    models.DefaultSettings(),
		Delays:      models.Delays{},
		BackupDate:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local),
		Version:     models.FormatVersion,
	}
	raw, err := json.Marshal(orphan)
	require.NoError(t, err)
	require.NoError(t, m.kv.Set(ctx, "backup_1704103200000", raw))

	infos := m.Backups(ctx)
	require.Len(t, infos, 1)
	assert.Equal(t, "backup_1704103200000", infos[0].Key)
	assert.WithinDuration(t, orphan.BackupDate, infos[0].Date, 0)

	// the repaired index was persisted, so the snapshot is restorable
	// and prunable like any other
	stored, err := m.kv.Get(ctx, keyBackupIndex)
	require.NoError(t, err)
	var index []models.BackupRef
	require.NoError(t, json.Unmarshal(stored, &index))
	require.Len(t, index, 1)

	require.NoError(t, m.RestoreBackup(ctx, infos[0].Key))

	deleted, err := m.CleanupOldBackups(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Empty(t, m.Backups(ctx))
}

func TestBackups_IgnoresCorruptUnindexedValue(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.kv.Set(ctx, "backup_42", []byte("{broken")))
	assert.Empty(t, m.Backups(ctx))
}

func TestExportImport_RoundTrip(t *testing.T) {
	m := newTestManager(t)
	m.nowFn = steppingClock(time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	ctx := context.Background()

	id, err := m.AddMedication(ctx, testMedication("Aspirin"))
	require.NoError(t, err)
	_, err = m.RecordResponse(ctx, id, models.ActionTaken, 0)
	require.NoError(t, err)
	require.NoError(t, m.SetDelay(ctx, id, 5, m.now()))

	export := m.ExportData(ctx)
	assert.Equal(t, models.FormatVersion, export.Version)
	require.NotNil(t, export.Settings)
	require.Len(t, export.Medications, 1)
	require.Len(t, export.Records, 1)
	require.Len(t, export.Delays, 1)

	// start over and import
	m2 := newTestManager(t)
	m2.nowFn = steppingClock(time.Date(2024, 2, 1, 8, 0, 0, 0, time.Local))
	require.NoError(t, m2.ImportData(ctx, export))

	meds := m2.Medications(ctx)
	require.Len(t, meds, 1)
	assert.Equal(t, id, meds[0].ID)
	require.Len(t, m2.Records(ctx), 1)
	_, ok := m2.DelayFor(ctx, id)
	assert.True(t, ok)

	// a successful import triggers an automatic backup
	assert.Len(t, m2.Backups(ctx), 1)
}

func TestImportData_Rejections(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	settings := models.DefaultSettings()
	valid := models.Export{
		Medications: []models.Medication{},
		Records:     []models.Record{},
		Settings:    &settings,
		Version:     models.FormatVersion,
	}

	tests := []struct {
		name   string
		mutate func(*models.Export)
	}{
		{name: "missing version", mutate: func(e *models.Export) { e.Version = "" }},
		{name: "missing medications", mutate: func(e *models.Export) { e.Medications = nil }},
		{name: "missing records", mutate: func(e *models.Export) { e.Records = nil }},
		{name: "missing settings", mutate: func(e *models.Export) { e.Settings = nil }},
		{
			name: "invalid medication",
			mutate: func(e *models.Export) {
				e.Medications = []models.Medication{{ID: "m1", Name: ""}}
			},
		},
		{
			name: "invalid record",
			mutate: func(e *models.Export) {
				e.Records = []models.Record{{ID: "r1", Action: "snoozed"}}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := valid
			tc.mutate(&data)
			err := m.ImportData(ctx, data)
			require.ErrorIs(t, err, common.ErrInvalidImport)
		})
	}

	// nothing was persisted by the rejected imports
	assert.Empty(t, m.Medications(ctx))
	assert.Empty(t, m.Backups(ctx))
}
