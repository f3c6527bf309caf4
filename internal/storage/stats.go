package storage

import (
	"context"
	"math"
	"time"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// Overview is a point-in-time summary of the stored data, shown by the
// stats command next to the adherence figures.
type Overview struct {
	TotalMedications  int                      `json:"totalMedications"`
	ActiveMedications int                      `json:"activeMedications"`
	TotalRecords      int                      `json:"totalRecords"`
	TakenRecords      int                      `json:"takenRecords"`
	CancelledRecords  int                      `json:"cancelledRecords"`
	PendingDelays     int                      `json:"pendingDelays"`
	TimeSlotCounts    map[models.TimeSlot]int  `json:"timeSlotStats"`
	FrequencyCounts   map[models.Frequency]int `json:"frequencyStats"`
	RecentWeek        RecentWeek               `json:"recentWeekStats"`
	LastUpdated       time.Time                `json:"lastUpdated"`
}

// RecentWeek summarizes the last seven days of responses.
type RecentWeek struct {
	Total int     `json:"total"`
	Taken int     `json:"taken"`
	Rate  float64 `json:"rate"`
}

// DataOverview builds the summary from the current collections.
func (m *Manager) DataOverview(ctx context.Context) Overview {
	m.mu.Lock()
	defer m.mu.Unlock()

	meds := m.medicationsLocked(ctx)
	records := m.recordsLocked(ctx)
	delays := m.delaysLocked(ctx)
	now := m.now()

	o := Overview{
		TotalMedications: len(meds),
		TotalRecords:     len(records),
		PendingDelays:    len(delays),
		TimeSlotCounts:   map[models.TimeSlot]int{},
		FrequencyCounts:  map[models.Frequency]int{},
		LastUpdated:      now,
	}

	for _, med := range meds {
		if med.Enabled {
			o.ActiveMedications++
		}
		o.FrequencyCounts[med.Frequency]++
		for _, e := range med.Times {
			o.TimeSlotCounts[e.Slot]++
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	for _, r := range records {
		switch r.Action {
		case models.ActionTaken:
			o.TakenRecords++
		case models.ActionCancelled:
			o.CancelledRecords++
		}
		if !r.Timestamp.Before(weekAgo) {
			o.RecentWeek.Total++
			if r.Action == models.ActionTaken {
				o.RecentWeek.Taken++
			}
		}
	}
	if o.RecentWeek.Total > 0 {
		o.RecentWeek.Rate = round2(float64(o.RecentWeek.Taken) / float64(o.RecentWeek.Total) * 100)
	}

	return o
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
