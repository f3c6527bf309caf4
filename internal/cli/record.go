package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// Take records the medication as taken. If a delay was pending it is
// resolved: the record carries the snooze length and the delay is cleared.
func (a *App) Take(ctx context.Context, args []string) error {
	return a.respond(ctx, args, models.ActionTaken)
}

// Skip records the reminder as cancelled, clearing any pending delay.
func (a *App) Skip(ctx context.Context, args []string) error {
	return a.respond(ctx, args, models.ActionCancelled)
}

// respond composes the response recorder with the delay machine: the record
// is written first, then the pending delay (if any) is cleared.
func (a *App) respond(ctx context.Context, args []string, action models.Action) error {
	med, err := a.resolveTarget(ctx, args)
	if err != nil {
		return err
	}

	delayMinutes := 0
	delay, pending := a.store.DelayFor(ctx, med.ID)
	if pending {
		delayMinutes = delay.DelayMinutes
	}

	record, err := a.store.RecordResponse(ctx, med.ID, action, delayMinutes)
	if err != nil {
		return err
	}
	if pending {
		if err := a.store.ClearDelay(ctx, med.ID); err != nil {
			return err
		}
	}

	verb := "taken"
	if action == models.ActionCancelled {
		verb = "skipped"
	}
	a.printSuccess(fmt.Sprintf("%s %s at %s", med.Name, verb, record.Timestamp.Local().Format("15:04")))
	return nil
}

// Snooze postpones the reminder: snooze [med] [minutes]. Without a minutes
// argument the configured default snooze length is used.
func (a *App) Snooze(ctx context.Context, args []string) error {
	minutes := 0
	if n := len(args); n > 0 {
		if v, err := strconv.Atoi(args[n-1]); err == nil {
			minutes = v
			args = args[:n-1]
		}
	}

	med, err := a.resolveTarget(ctx, args)
	if err != nil {
		return err
	}
	if minutes <= 0 {
		minutes = a.store.Settings(ctx).ReminderSnoozeTime
	}

	if err := a.store.SetDelay(ctx, med.ID, minutes, time.Now()); err != nil {
		return err
	}
	a.printSuccess(fmt.Sprintf("%s will remind again in %d minutes", med.Name, minutes))
	return nil
}
