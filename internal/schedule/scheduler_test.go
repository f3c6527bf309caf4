package schedule

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medminder/internal/adherence"
	"github.com/dmitrijs2005/medminder/internal/logging"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/dmitrijs2005/medminder/internal/storage"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *storage.Manager {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE kv (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return storage.NewManager(db, log)
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type captureFires struct {
	fired []Reminder
}

func (c *captureFires) fire(r Reminder) {
	c.fired = append(c.fired, r)
}

func aspirin(createdAt time.Time) models.Medication {
	return models.Medication{
		ID:        "med1",
		Name:      "Aspirin",
		Times:     []models.TimeEntry{{Time: "08:00", Slot: models.TimeSlotMorning}},
		Frequency: models.FrequencyDaily,
		Enabled:   true,
		CreatedAt: createdAt,
	}
}

func TestCheck_FiresAtMatchingMinute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{aspirin(created)}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))

	require.Len(t, capture.fired, 1)
	r := capture.fired[0]
	assert.Equal(t, "Aspirin", r.Medication.Name)
	assert.Equal(t, "08:00", r.Time)
	assert.Equal(t, models.TimeSlotMorning, r.Slot)
	assert.False(t, r.Delayed)
}

func TestCheck_NoFireOffMinute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{aspirin(created)}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 1, 0, 0, time.Local))
	assert.Empty(t, capture.fired)
}

func TestCheck_MatchesWithinWholeMinute(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{aspirin(created)}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	// seconds are irrelevant to the minute match
	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 42, 0, time.Local))
	require.Len(t, capture.fired, 1)
}

func TestCheck_SingleDigitHourEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	med := aspirin(time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local))
	med.Times = []models.TimeEntry{{Time: "8:00", Slot: models.TimeSlotMorning}}
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{med}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	require.Len(t, capture.fired, 1)
}

func TestCheck_SkipsDisabled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	med := aspirin(time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local))
	med.Enabled = false
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{med}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	assert.Empty(t, capture.fired)
}

func TestCheck_RespectsRecurrence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	med := aspirin(time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local))
	med.Frequency = models.FrequencyCustom
	med.CustomInterval = 3
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{med}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	// day 2 of a 3-day cycle: not due
	s.Check(ctx, time.Date(2024, 1, 3, 8, 0, 0, 0, time.Local))
	assert.Empty(t, capture.fired)

	// day 3: due
	s.Check(ctx, time.Date(2024, 1, 4, 8, 0, 0, 0, time.Local))
	require.Len(t, capture.fired, 1)
}

func TestCheck_DuplicateEntriesFireIndependently(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	med := aspirin(time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local))
	med.Times = []models.TimeEntry{
		{Time: "08:00", Slot: models.TimeSlotMorning},
		{Time: "08:00", Slot: models.TimeSlotMorning},
	}
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{med}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	assert.Len(t, capture.fired, 2)
}

func TestCheck_SnoozeSuppressesAndReschedules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{aspirin(created)}))

	// user snoozed 5 minutes at 08:00
	original := time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SetDelay(ctx, "med1", 5, original))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	// the pending delay suppresses the normal 08:00 entry entirely
	s.Check(ctx, original)
	assert.Empty(t, capture.fired)

	// between the original and rescheduled minutes: nothing
	s.Check(ctx, original.Add(3*time.Minute))
	assert.Empty(t, capture.fired)

	// at the rescheduled minute the delayed reminder fires and the
	// delay is cleared
	s.Check(ctx, original.Add(5*time.Minute))
	require.Len(t, capture.fired, 1)
	r := capture.fired[0]
	assert.True(t, r.Delayed)
	assert.Equal(t, 5, r.DelayedBy)
	assert.Equal(t, "08:05", r.Time)

	_, pending := store.DelayFor(ctx, "med1")
	assert.False(t, pending)

	// a later tick at the same minute fires nothing more
	s.Check(ctx, original.Add(5*time.Minute).Add(30*time.Second))
	assert.Len(t, capture.fired, 1)
}

func TestFireRecordAdherenceFlow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)
	require.NoError(t, store.SaveMedications(ctx, []models.Medication{aspirin(created)}))

	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire)

	s.Check(ctx, time.Date(2024, 1, 5, 8, 0, 0, 0, time.Local))
	require.Len(t, capture.fired, 1)

	// the user takes the medication
	_, err := store.RecordResponse(ctx, "med1", models.ActionTaken, 0)
	require.NoError(t, err)

	stats := adherence.Calculate(store.Records(ctx), "med1")
	assert.Equal(t, 1, stats.TotalRecords)
	assert.InDelta(t, 100, stats.AdherenceRate, 0.0001)
}

func TestClockEqual(t *testing.T) {
	assert.True(t, clockEqual("8:00", "08:00"))
	assert.True(t, clockEqual("08:05", "8:05"))
	assert.False(t, clockEqual("08:00", "08:01"))
	assert.False(t, clockEqual("abc", "08:00"))
	assert.False(t, clockEqual("08:00", "25:00"))
}

func TestEverySpec(t *testing.T) {
	assert.Equal(t, "@every 60s", everySpec(time.Minute))
	assert.Equal(t, "@every 1s", everySpec(0))
}

func TestStartStop(t *testing.T) {
	store := newTestStore(t)
	capture := &captureFires{}
	s := New(store, discardLogger(), capture.fire, WithTick(time.Hour))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	// starting again must not leave a second ticker behind
	require.NoError(t, s.Start(ctx))
	s.Stop()
	// stopping a stopped scheduler is a no-op
	s.Stop()
}
