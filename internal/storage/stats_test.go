package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medminder/internal/models"
)

func TestDataOverview(t *testing.T) {
	m := newTestManager(t)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	m.nowFn = fixedNow(now)
	ctx := context.Background()

	morning := testMedication("Aspirin")
	evening := testMedication("Melatonin")
	evening.Times = []models.TimeEntry{{Time: "22:00", Slot: models.TimeSlotEvening}}
	evening.Frequency = models.FrequencyCustom
	evening.CustomInterval = 2

	id1, err := m.AddMedication(ctx, morning)
	require.NoError(t, err)
	id2, err := m.AddMedication(ctx, evening)
	require.NoError(t, err)

	_, err = m.UpdateMedication(ctx, id2, func(med *models.Medication) { med.Enabled = false })
	require.NoError(t, err)

	_, err = m.RecordResponse(ctx, id1, models.ActionTaken, 0)
	require.NoError(t, err)
	_, err = m.RecordResponse(ctx, id1, models.ActionCancelled, 0)
	require.NoError(t, err)
	require.NoError(t, m.SetDelay(ctx, id1, 5, now))

	o := m.DataOverview(ctx)
	assert.Equal(t, 2, o.TotalMedications)
	assert.Equal(t, 1, o.ActiveMedications)
	assert.Equal(t, 2, o.TotalRecords)
	assert.Equal(t, 1, o.TakenRecords)
	assert.Equal(t, 1, o.CancelledRecords)
	assert.Equal(t, 1, o.PendingDelays)
	assert.Equal(t, 1, o.TimeSlotCounts[models.TimeSlotMorning])
	assert.Equal(t, 1, o.TimeSlotCounts[models.TimeSlotEvening])
	assert.Equal(t, 1, o.FrequencyCounts[models.FrequencyDaily])
	assert.Equal(t, 1, o.FrequencyCounts[models.FrequencyCustom])
	assert.Equal(t, 2, o.RecentWeek.Total)
	assert.Equal(t, 1, o.RecentWeek.Taken)
	assert.InDelta(t, 50.0, o.RecentWeek.Rate, 0.001)
	assert.Equal(t, now, o.LastUpdated)
}

func TestDataOverview_Empty(t *testing.T) {
	m := newTestManager(t)
	o := m.DataOverview(context.Background())

	assert.Zero(t, o.TotalMedications)
	assert.Zero(t, o.TotalRecords)
	assert.Zero(t, o.RecentWeek.Rate)
	assert.NotNil(t, o.TimeSlotCounts)
	assert.NotNil(t, o.FrequencyCounts)
}
