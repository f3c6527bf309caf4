// Package cli wires the storage gateway and the reminder scheduler into an
// interactive terminal application.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/medminder/internal/config"
	"github.com/dmitrijs2005/medminder/internal/logging"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/dmitrijs2005/medminder/internal/schedule"
	"github.com/dmitrijs2005/medminder/internal/storage"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	store  *storage.Manager
	sched  *schedule.Scheduler
	log    logging.Logger
	reader *bufio.Reader

	mu           sync.Mutex
	lastReminder *schedule.Reminder
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	app := &App{
		config: cfg,
		store:  storage.NewManager(db, log),
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}
	app.sched = schedule.New(app.store, log, app.onReminder,
		schedule.WithTick(cfg.TickInterval),
		schedule.WithMaintenance(cfg.CleanupInterval, cfg.BackupInterval, cfg.BackupKeepCount),
	)
	return app, nil
}

// Run starts the scheduler and enters the REPL. It returns when the user
// exits or stdin is closed.
func (a *App) Run(ctx context.Context) error {
	if err := a.sched.Start(ctx); err != nil {
		return err
	}
	defer a.sched.Stop()
	a.Root(ctx)
	return nil
}

// onReminder renders a fired reminder as a terminal banner and remembers it
// so a bare take/skip/snooze resolves the most recent one.
func (a *App) onReminder(r schedule.Reminder) {
	a.mu.Lock()
	a.lastReminder = &r
	a.mu.Unlock()

	style := bannerStyle
	label := "TIME TO TAKE"
	if r.Delayed {
		style = delayedBannerStyle
		label = fmt.Sprintf("SNOOZED %d MIN AGO", r.DelayedBy)
	}
	fmt.Println()
	fmt.Println(style.Render(fmt.Sprintf("%s  %s (%s)", label, r.Medication.Name, r.Time)))
	if r.Medication.Notes != "" {
		fmt.Println(mutedStyle.Render(r.Medication.Notes))
	}
	fmt.Println(mutedStyle.Render("respond with: take / skip / snooze [minutes]"))
}

// takeLastReminder returns and clears the most recently fired reminder.
func (a *App) takeLastReminder() *schedule.Reminder {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.lastReminder
	a.lastReminder = nil
	return r
}

// findMedication resolves a user-supplied query to a single medication, by
// exact id, unique id prefix, or case-insensitive name.
func (a *App) findMedication(ctx context.Context, query string) (*models.Medication, error) {
	meds := a.store.Medications(ctx)

	var byPrefix []*models.Medication
	for i := range meds {
		if meds[i].ID == query {
			return &meds[i], nil
		}
		if strings.HasPrefix(meds[i].ID, query) || strings.EqualFold(meds[i].Name, query) {
			byPrefix = append(byPrefix, &meds[i])
		}
	}
	switch len(byPrefix) {
	case 1:
		return byPrefix[0], nil
	case 0:
		return nil, fmt.Errorf("no medication matches %q", query)
	default:
		return nil, fmt.Errorf("%q is ambiguous, use a longer id prefix", query)
	}
}

// resolveTarget picks the medication a response command refers to: the
// explicit argument if given, otherwise the last fired reminder.
func (a *App) resolveTarget(ctx context.Context, args []string) (*models.Medication, error) {
	if len(args) > 0 {
		return a.findMedication(ctx, args[0])
	}
	if r := a.takeLastReminder(); r != nil {
		return &r.Medication, nil
	}
	return nil, fmt.Errorf("no reminder pending, name the medication explicitly")
}

func (a *App) printError(err error) {
	fmt.Println(errorStyle.Render(err.Error()))
}

func (a *App) printSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}
