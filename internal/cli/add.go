package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// Add interactively registers a medication: name, one or more reminder
// times with their day slot, a recurrence rule and optional notes.
func (a *App) Add(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Medication name:", os.Stdout)
	if err != nil {
		return err
	}

	var times []models.TimeEntry
	for {
		prompt := "Reminder time (HH:MM, empty line to finish):"
		if len(times) == 0 {
			prompt = "Reminder time (HH:MM):"
		}
		t, err := GetSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if t == "" {
			if len(times) == 0 {
				continue // at least one time is required
			}
			break
		}
		if !models.ValidTimeString(t) {
			fmt.Println(errorStyle.Render("expected HH:MM, e.g. 08:30"))
			continue
		}
		slot, err := GetTextWithDefault(a.reader, "Slot (morning/noon/evening)", guessSlot(t), os.Stdout)
		if err != nil {
			return err
		}
		entry := models.TimeEntry{Time: t, Slot: models.TimeSlot(slot)}
		if err := entry.Validate(); err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		times = append(times, entry)
	}

	freq, err := GetTextWithDefault(a.reader, "Frequency (once/daily/weekly/custom)", string(models.FrequencyDaily), os.Stdout)
	if err != nil {
		return err
	}

	med := models.Medication{
		Name:      name,
		Times:     times,
		Frequency: models.Frequency(freq),
	}

	if med.Frequency == models.FrequencyCustom {
		s, err := GetSimpleText(a.reader, "Interval in days:", os.Stdout)
		if err != nil {
			return err
		}
		interval, err := strconv.Atoi(s)
		if err != nil || interval <= 0 {
			return fmt.Errorf("interval must be a positive number of days")
		}
		med.CustomInterval = interval
	}

	notes, err := GetMultiline(a.reader, "Notes (optional):", os.Stdout)
	if err != nil {
		return err
	}
	med.Notes = notes

	id, err := a.store.AddMedication(ctx, med)
	if err != nil {
		return err
	}
	a.printSuccess(fmt.Sprintf("Added %s (%s)", med.Name, shortID(id)))
	return nil
}

// guessSlot proposes a day slot from the hour of a HH:MM string.
func guessSlot(t string) string {
	h, err := strconv.Atoi(strings.SplitN(t, ":", 2)[0])
	if err != nil {
		return string(models.TimeSlotMorning)
	}
	switch {
	case h < 11:
		return string(models.TimeSlotMorning)
	case h < 17:
		return string(models.TimeSlotNoon)
	default:
		return string(models.TimeSlotEvening)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
