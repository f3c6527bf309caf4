package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medminder/internal/logging"
	"github.com/dmitrijs2005/medminder/internal/models"
	"github.com/dmitrijs2005/medminder/internal/storage"
	"github.com/robfig/cron/v3"
)

// Reminder is one fire event: the scheduler's signal that a reminder must
// be presented right now. Time is the display time of the matched entry
// (for a snoozed reminder, the rescheduled minute).
type Reminder struct {
	Medication models.Medication
	Time       string
	Slot       models.TimeSlot
	Delayed    bool
	DelayedBy  int
}

// FireFunc receives fire events. It runs on the scheduler goroutine and
// should hand the reminder off quickly.
type FireFunc func(Reminder)

// Scheduler polls the wall clock once a minute, cross-references due
// medications and pending delays, and fires each matching reminder exactly
// once per matching minute. It persists nothing itself except clearing a
// delay it has fired.
type Scheduler struct {
	store *storage.Manager
	log   logging.Logger
	fire  FireFunc

	tick            time.Duration
	cleanupInterval time.Duration
	backupInterval  time.Duration
	backupKeep      int

	mu   sync.Mutex
	cron *cron.Cron
}

// Option adjusts scheduler construction.
type Option func(*Scheduler)

// WithTick overrides the polling interval (default one minute).
func WithTick(d time.Duration) Option {
	return func(s *Scheduler) { s.tick = d }
}

// WithMaintenance overrides the cleanup/backup job intervals and the number
// of backups the weekly job keeps.
func WithMaintenance(cleanup, backup time.Duration, keep int) Option {
	return func(s *Scheduler) {
		s.cleanupInterval = cleanup
		s.backupInterval = backup
		s.backupKeep = keep
	}
}

// New returns a stopped scheduler; call Start to begin ticking.
func New(store *storage.Manager, log logging.Logger, fire FireFunc, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:           store,
		log:             log,
		fire:            fire,
		tick:            time.Minute,
		cleanupInterval: 24 * time.Hour,
		backupInterval:  7 * 24 * time.Hour,
		backupKeep:      5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the cron jobs (reminder tick, daily cleanup, weekly
// backup), runs an immediate check and an immediate cleanup, and begins
// ticking. Calling Start again first stops the previous cron, so re-invoking
// scheduling setup never leaves two tickers running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
	}
	s.cron = cron.New()

	if _, err := s.cron.AddFunc(everySpec(s.tick), func() {
		s.Check(ctx, time.Now())
	}); err != nil {
		return fmt.Errorf("failed to schedule reminder tick: %w", err)
	}

	if _, err := s.cron.AddFunc(everySpec(s.cleanupInterval), func() {
		result := s.store.CleanupData(ctx)
		s.log.Info(ctx, "cleanup pass finished",
			"expired_records", result.ExpiredRecords, "orphan_delays", result.OrphanDelays)
	}); err != nil {
		return fmt.Errorf("failed to schedule cleanup: %w", err)
	}

	if _, err := s.cron.AddFunc(everySpec(s.backupInterval), func() {
		if _, err := s.store.CreateBackup(ctx); err != nil {
			s.log.Error(ctx, "periodic backup failed", "error", err)
			return
		}
		if _, err := s.store.CleanupOldBackups(ctx, s.backupKeep); err != nil {
			s.log.Error(ctx, "backup pruning failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}

	s.store.CleanupData(ctx)
	s.cron.Start()
	s.Check(ctx, time.Now())
	return nil
}

// Stop halts the cron and waits for running jobs to finish. Safe to call on
// a scheduler that was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron = nil
}

// CheckNow re-evaluates immediately against the current wall clock. The CLI
// calls it when the process regains the foreground, as best-effort recovery
// after a stretch of suspended ticks.
func (s *Scheduler) CheckNow(ctx context.Context) {
	s.Check(ctx, time.Now())
}

// Check is one scheduling pass at the instant now. Collections are
// re-fetched from storage on every pass; nothing is cached across ticks.
//
// For every enabled medication, a pending delay whose rescheduled minute
// matches now fires a delayed reminder and clears the delay; this takes
// priority over the medication's normal times. Without a pending delay,
// every times entry matching the current minute fires independently,
// provided the recurrence rule says today is a due day.
func (s *Scheduler) Check(ctx context.Context, now time.Time) {
	current := MinuteString(now)

	medications := s.store.Medications(ctx)
	delays := s.store.Delays(ctx)

	for _, med := range medications {
		if !med.Enabled {
			continue
		}

		if delay, ok := delays[med.ID]; ok {
			if MinuteString(delay.DelayTime.Local()) != current {
				continue
			}
			s.emit(ctx, Reminder{
				Medication: med,
				Time:       current,
				Delayed:    true,
				DelayedBy:  delay.DelayMinutes,
			})
			if err := s.store.ClearDelay(ctx, med.ID); err != nil {
				s.log.Error(ctx, "failed to clear fired delay", "medication", med.ID, "error", err)
			}
			continue
		}

		if !DueToday(med, now) {
			continue
		}
		for _, entry := range med.Times {
			if !clockEqual(entry.Time, current) {
				continue
			}
			s.emit(ctx, Reminder{
				Medication: med,
				Time:       entry.Time,
				Slot:       entry.Slot,
			})
		}
	}
}

func (s *Scheduler) emit(ctx context.Context, r Reminder) {
	s.log.Info(ctx, "reminder fired",
		"medication", r.Medication.Name, "time", r.Time, "delayed", r.Delayed)
	if s.fire != nil {
		s.fire(r)
	}
}

// clockEqual compares two HH:MM strings numerically, so "8:00" and "08:00"
// refer to the same minute.
func clockEqual(a, b string) bool {
	ah, am, ok := parseClock(a)
	if !ok {
		return false
	}
	bh, bm, ok := parseClock(b)
	if !ok {
		return false
	}
	return ah == bh && am == bm
}

func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

func everySpec(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds)
}
