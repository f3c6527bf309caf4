package storage

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medminder/internal/logging"
	"github.com/dmitrijs2005/medminder/internal/models"

	_ "modernc.org/sqlite"
)

func newTestManager(t *testing.T) *Manager {
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
	return NewManager(db, log)
}

func testMedication(name string) models.Medication {
	return models.Medication{
		Name:      name,
		Times:     []models.TimeEntry{{Time: "08:00", Slot: models.TimeSlotMorning}},
		Frequency: models.FrequencyDaily,
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
