// Package models defines the persisted entities of the medication reminder:
// medications, response records, pending delays, settings and backup
// envelopes. Each entity validates its own shape; the storage layer drops
// entities whose Validate returns an error.
package models

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// TimeSlot classifies a reminder time within the day.
type TimeSlot string

const (
	TimeSlotMorning TimeSlot = "morning"
	TimeSlotNoon    TimeSlot = "noon"
	TimeSlotEvening TimeSlot = "evening"
)

// Frequency is the recurrence rule of a medication.
type Frequency string

const (
	FrequencyOnce   Frequency = "once"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

var (
	ErrInvalidName      = errors.New("medication must have a non-empty name")
	ErrNoTimes          = errors.New("medication must have at least one reminder time")
	ErrInvalidTime      = errors.New("reminder time must be HH:MM")
	ErrInvalidTimeSlot  = errors.New("time slot must be morning, noon or evening")
	ErrInvalidFrequency = errors.New("frequency must be once, daily, weekly or custom")
	ErrInvalidInterval  = errors.New("custom frequency requires a positive interval in days")
)

var timeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeString reports whether s is a wall-clock time in HH:MM form.
func ValidTimeString(s string) bool {
	return timeRe.MatchString(s)
}

// TimeEntry is a single reminder instance of a medication: a wall-clock
// time paired with the part of the day it belongs to. Each entry triggers
// a reminder independently of its siblings.
type TimeEntry struct {
	Time string   `json:"time"`
	Slot TimeSlot `json:"timeSlot"`
}

func (e TimeEntry) Validate() error {
	if !ValidTimeString(e.Time) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, e.Time)
	}
	switch e.Slot {
	case TimeSlotMorning, TimeSlotNoon, TimeSlotEvening:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTimeSlot, e.Slot)
	}
}

// Medication is a user-defined reminder template. CreatedAt is the epoch
// for the once and custom recurrence rules and never changes after creation.
type Medication struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Times          []TimeEntry `json:"times"`
	Frequency      Frequency   `json:"frequency"`
	CustomInterval int         `json:"customInterval,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Enabled        bool        `json:"enabled"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Validate checks the shape invariants: non-empty name, at least one valid
// time entry, a known frequency, and a positive interval when the frequency
// is custom.
func (m Medication) Validate() error {
	if m.Name == "" {
		return ErrInvalidName
	}
	if len(m.Times) == 0 {
		return ErrNoTimes
	}
	for _, e := range m.Times {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	switch m.Frequency {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
	case FrequencyCustom:
		if m.CustomInterval <= 0 {
			return ErrInvalidInterval
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, m.Frequency)
	}
	return nil
}
