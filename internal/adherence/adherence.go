// Package adherence derives taken/total statistics from the response log.
// Everything here is a pure function of its inputs.
package adherence

import (
	"math"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// MonthKeyFormat is the layout of the YYYY-MM keys in MonthlyStats,
// computed from each record's local calendar month.
const MonthKeyFormat = "2006-01"

// MonthStats aggregates one calendar month.
type MonthStats struct {
	Total         int     `json:"total"`
	Taken         int     `json:"taken"`
	AdherenceRate float64 `json:"adherenceRate"`
}

// Stats is the result of Calculate.
type Stats struct {
	TotalRecords  int                   `json:"totalRecords"`
	TakenRecords  int                   `json:"takenRecords"`
	AdherenceRate float64               `json:"adherenceRate"`
	MonthlyStats  map[string]MonthStats `json:"monthlyStats"`
}

// Calculate aggregates the response log into overall and per-month
// adherence. When medicationID is non-empty only that medication's records
// count. An empty record set yields a zero rate, never a division fault.
func Calculate(records []models.Record, medicationID string) Stats {
	stats := Stats{MonthlyStats: map[string]MonthStats{}}

	for _, r := range records {
		if medicationID != "" && r.MedicationID != medicationID {
			continue
		}

		stats.TotalRecords++
		taken := r.Action == models.ActionTaken
		if taken {
			stats.TakenRecords++
		}

		key := r.Timestamp.Local().Format(MonthKeyFormat)
		month := stats.MonthlyStats[key]
		month.Total++
		if taken {
			month.Taken++
		}
		stats.MonthlyStats[key] = month
	}

	stats.AdherenceRate = Rate(stats.TakenRecords, stats.TotalRecords)
	for key, month := range stats.MonthlyStats {
		month.AdherenceRate = Rate(month.Taken, month.Total)
		stats.MonthlyStats[key] = month
	}

	return stats
}

// Rate returns taken/total as a percentage rounded to two decimal places,
// and 0 when total is zero.
func Rate(taken, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(taken)/float64(total)*100*100) / 100
}
