package cli

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/dmitrijs2005/medminder/internal/models"
)

var dateArgRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// History prints the response log, newest first. Arguments are positional
// and optional: a medication query and up to two YYYY-MM-DD dates bounding
// the range (inclusive).
func (a *App) History(ctx context.Context, args []string) error {
	var medID string
	var dates []string
	for _, arg := range args {
		if dateArgRe.MatchString(arg) {
			dates = append(dates, arg)
			continue
		}
		med, err := a.findMedication(ctx, arg)
		if err != nil {
			return err
		}
		medID = med.ID
	}
	var from, to string
	if len(dates) > 0 {
		from = dates[0]
	}
	if len(dates) > 1 {
		to = dates[1]
	}

	records := a.filterRecords(ctx, medID, from, to)
	if len(records) == 0 {
		fmt.Println(mutedStyle.Render("no matching records"))
		return nil
	}

	names := a.medicationNames(ctx)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	for _, r := range records {
		name, ok := names[r.MedicationID]
		if !ok {
			name = "unknown medication"
		}
		line := fmt.Sprintf("[%s] %s — %s", r.Timestamp.Local().Format("2006-01-02 15:04"), name, r.Action)
		if r.DelayMinutes > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" (after %d min snooze)", r.DelayMinutes))
		}
		fmt.Println(line)
	}
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%d records", len(records))))
	return nil
}

// filterRecords applies medication and inclusive local-date bounds, the
// same filter the history and export views share.
func (a *App) filterRecords(ctx context.Context, medID, from, to string) []models.Record {
	all := a.store.Records(ctx)
	result := make([]models.Record, 0, len(all))
	for _, r := range all {
		day := r.Timestamp.Local().Format("2006-01-02")
		if medID != "" && r.MedicationID != medID {
			continue
		}
		if from != "" && day < from {
			continue
		}
		if to != "" && day > to {
			continue
		}
		result = append(result, r)
	}
	return result
}

func (a *App) medicationNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	for _, med := range a.store.Medications(ctx) {
		names[med.ID] = med.Name
	}
	return names
}
