package models

import (
	"errors"
	"fmt"
	"time"
)

// Action is the user's resolution of a reminder. Only taken and cancelled
// are ever persisted; a snooze is tracked through Delay state instead of
// the response log.
type Action string

const (
	ActionTaken     Action = "taken"
	ActionCancelled Action = "cancelled"
)

var (
	ErrInvalidAction       = errors.New("action must be taken or cancelled")
	ErrInvalidMedicationID = errors.New("record must reference a medication id")
	ErrInvalidTimestamp    = errors.New("record must have a valid timestamp")
)

// Record is one immutable fact in the response log: at Timestamp the
// reminder for MedicationID was resolved as Action. DelayMinutes is set
// only when the resolution followed a snooze.
type Record struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medicationId"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	DelayMinutes int       `json:"delayMinutes,omitempty"`
}

// Validate checks that the record references a medication, carries an
// action from the closed set and has a usable timestamp.
func (r Record) Validate() error {
	switch r.Action {
	case ActionTaken, ActionCancelled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, r.Action)
	}
	if r.MedicationID == "" {
		return ErrInvalidMedicationID
	}
	if r.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	return nil
}
