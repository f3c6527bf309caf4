package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// Export writes the full application state as a JSON envelope to a file.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: export <file>")
	}
	data := a.store.ExportData(ctx)
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], raw, 0o600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	a.printSuccess(fmt.Sprintf("Exported %d medications and %d records to %s",
		len(data.Medications), len(data.Records), args[0]))
	return nil
}

// Import replaces all state with the envelope read from a file. The import
// is atomic: on any validation failure nothing changes.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: import <file>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	var data models.Export
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("not a valid export file: %w", err)
	}
	if err := a.store.ImportData(ctx, data); err != nil {
		return err
	}
	a.printSuccess(fmt.Sprintf("Imported %d medications and %d records",
		len(data.Medications), len(data.Records)))
	return nil
}

// Backup takes a snapshot of all collections.
func (a *App) Backup(ctx context.Context) error {
	b, err := a.store.CreateBackup(ctx)
	if err != nil {
		return err
	}
	a.printSuccess(fmt.Sprintf("Backup created (%d medications, %d records)",
		len(b.Medications), len(b.Records)))
	return nil
}

// Backups lists stored snapshots.
func (a *App) Backups(ctx context.Context) error {
	backups := a.store.Backups(ctx)
	if len(backups) == 0 {
		fmt.Println(mutedStyle.Render("no backups yet"))
		return nil
	}
	for _, b := range backups {
		fmt.Printf("%s  %s  %d medications, %d records\n",
			b.Key, b.Date.Local().Format("2006-01-02 15:04"),
			b.MedicationsCount, b.RecordsCount)
	}
	return nil
}

// Restore replaces all collections with a snapshot: restore <key>.
func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: restore <key> (see 'backups')")
	}
	if err := a.store.RestoreBackup(ctx, args[0]); err != nil {
		return err
	}
	a.printSuccess("Restored from " + args[0])
	return nil
}

// Cleanup runs the retention pass by hand.
func (a *App) Cleanup(ctx context.Context) error {
	result := a.store.CleanupData(ctx)
	a.printSuccess(fmt.Sprintf("Removed %d expired records and %d orphan delays",
		result.ExpiredRecords, result.OrphanDelays))
	return nil
}

// Check forces an immediate scheduling pass, useful after the machine
// wakes from sleep and ticks were missed.
func (a *App) Check(ctx context.Context) error {
	a.sched.CheckNow(ctx)
	return nil
}

// Settings interactively edits the application settings record.
func (a *App) Settings(ctx context.Context) error {
	s := a.store.Settings(ctx)

	snooze, err := GetTextWithDefault(a.reader, "Default snooze minutes", strconv.Itoa(s.ReminderSnoozeTime), os.Stdout)
	if err != nil {
		return err
	}
	if v, err := strconv.Atoi(snooze); err == nil && v > 0 {
		s.ReminderSnoozeTime = v
	}

	sound, err := GetTextWithDefault(a.reader, "Sound enabled (true/false)", strconv.FormatBool(s.SoundEnabled), os.Stdout)
	if err != nil {
		return err
	}
	if v, err := strconv.ParseBool(sound); err == nil {
		s.SoundEnabled = v
	}

	notif, err := GetTextWithDefault(a.reader, "Notifications enabled (true/false)", strconv.FormatBool(s.NotificationEnabled), os.Stdout)
	if err != nil {
		return err
	}
	if v, err := strconv.ParseBool(notif); err == nil {
		s.NotificationEnabled = v
	}

	theme, err := GetTextWithDefault(a.reader, "Theme (light/dark)", s.Theme, os.Stdout)
	if err != nil {
		return err
	}
	if theme == "light" || theme == "dark" {
		s.Theme = theme
	}

	if err := a.store.SaveSettings(ctx, s); err != nil {
		return err
	}
	a.printSuccess("Settings saved")
	return nil
}
