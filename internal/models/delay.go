package models

import "time"

// Delay is a pending postponement of a reminder. A medication has at most
// one at a time; a new snooze replaces the previous one.
type Delay struct {
	OriginalTime time.Time `json:"originalTime"`
	DelayTime    time.Time `json:"delayTime"`
	DelayMinutes int       `json:"delayMinutes"`
}

// Delays maps a medication id to its pending postponement.
type Delays map[string]Delay
