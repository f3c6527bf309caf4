package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// List prints all medications with their reminder times and state.
func (a *App) List(ctx context.Context) error {
	meds := a.store.Medications(ctx)
	if len(meds) == 0 {
		fmt.Println(mutedStyle.Render("no medications yet, use 'add'"))
		return nil
	}

	delays := a.store.Delays(ctx)

	for _, med := range meds {
		state := ""
		if !med.Enabled {
			state = mutedStyle.Render(" [disabled]")
		}
		if d, ok := delays[med.ID]; ok {
			state += mutedStyle.Render(fmt.Sprintf(" [snoozed until %s]", d.DelayTime.Local().Format("15:04")))
		}
		fmt.Printf("%s  %s%s\n", mutedStyle.Render(shortID(med.ID)), titleStyle.Render(med.Name), state)
		fmt.Printf("      %s, %s\n", formatTimes(med.Times), frequencyText(med))
		if med.Notes != "" {
			fmt.Printf("      %s\n", mutedStyle.Render(med.Notes))
		}
	}
	return nil
}

func formatTimes(times []models.TimeEntry) string {
	parts := make([]string, len(times))
	for i, e := range times {
		parts[i] = fmt.Sprintf("%s (%s)", e.Time, e.Slot)
	}
	return strings.Join(parts, ", ")
}

func frequencyText(med models.Medication) string {
	switch med.Frequency {
	case models.FrequencyOnce:
		return "once"
	case models.FrequencyDaily:
		return "every day"
	case models.FrequencyWeekly:
		return "weekly"
	case models.FrequencyCustom:
		return fmt.Sprintf("every %d days", med.CustomInterval)
	default:
		return string(med.Frequency)
	}
}

// Enable re-enables a medication for scheduling.
func (a *App) Enable(ctx context.Context, args []string) error {
	return a.setEnabled(ctx, args, true)
}

// Disable stops a medication from being scheduled; it stays in storage.
func (a *App) Disable(ctx context.Context, args []string) error {
	return a.setEnabled(ctx, args, false)
}

func (a *App) setEnabled(ctx context.Context, args []string, enabled bool) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable|disable <medication>")
	}
	med, err := a.findMedication(ctx, args[0])
	if err != nil {
		return err
	}
	ok, err := a.store.UpdateMedication(ctx, med.ID, func(m *models.Medication) {
		m.Enabled = enabled
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("medication %q not found", args[0])
	}
	if enabled {
		a.printSuccess(med.Name + " enabled")
	} else {
		a.printSuccess(med.Name + " disabled")
	}
	return nil
}

// Delete removes a whole medication, or a single reminder time when called
// as: delete <med> <HH:MM> <slot>. Deleting the last time entry removes the
// medication.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete <medication> [HH:MM slot]")
	}
	med, err := a.findMedication(ctx, args[0])
	if err != nil {
		return err
	}

	if len(args) >= 3 {
		ok, err := a.store.DeleteMedicationTime(ctx, med.ID, args[1], models.TimeSlot(args[2]))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s has no %s %s reminder", med.Name, args[1], args[2])
		}
		a.printSuccess(fmt.Sprintf("Removed %s %s from %s", args[1], args[2], med.Name))
		return nil
	}

	confirm, err := GetSimpleText(a.reader,
		fmt.Sprintf("Delete %s and all its records? (y/N)", med.Name), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		fmt.Println(mutedStyle.Render("cancelled"))
		return nil
	}

	ok, err := a.store.DeleteMedication(ctx, med.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("medication %q not found", args[0])
	}
	a.printSuccess(med.Name + " deleted")
	return nil
}
