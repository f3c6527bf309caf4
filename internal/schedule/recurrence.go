// Package schedule holds the temporal core of the reminder engine: the
// recurrence evaluator deciding whether a medication is due on a given day,
// and the scheduler that polls the wall clock and fires reminders.
package schedule

import (
	"math"
	"time"

	"github.com/dmitrijs2005/medminder/internal/models"
)

// UnknownFrequencyPolicy names what the evaluator does with a frequency
// outside the known set. The policy is fail-open: a misconfigured
// medication reminds every day rather than never.
type UnknownFrequencyPolicy int

const (
	// UnknownFrequencyAlwaysDue treats unknown frequencies as due daily.
	UnknownFrequencyAlwaysDue UnknownFrequencyPolicy = iota
)

// ActiveUnknownFrequencyPolicy is the policy DueToday applies.
const ActiveUnknownFrequencyPolicy = UnknownFrequencyAlwaysDue

// DueToday reports whether the medication's recurrence rule is satisfied on
// ref's local calendar date. It is pure: ref is caller-supplied, so tests
// pass fixed instants.
//
// Rules:
//   - once:   due only on the calendar day the medication was created
//   - daily:  always due
//   - weekly: always due (matches the shipped behavior; a weekday match
//     against the creation date is a pending product decision)
//   - custom: due every CustomInterval days from creation, where the
//     elapsed-day count is the rounded-up absolute difference to CreatedAt
func DueToday(med models.Medication, ref time.Time) bool {
	switch med.Frequency {
	case models.FrequencyOnce:
		return sameLocalDate(med.CreatedAt, ref)
	case models.FrequencyDaily:
		return true
	case models.FrequencyWeekly:
		return true
	case models.FrequencyCustom:
		if med.CustomInterval <= 0 {
			// validation keeps these out of storage; fail open like an
			// unknown frequency if one slips through
			return true
		}
		diff := ref.Sub(med.CreatedAt)
		if diff < 0 {
			diff = -diff
		}
		days := int(math.Ceil(diff.Hours() / 24))
		return days%med.CustomInterval == 0
	default:
		return ActiveUnknownFrequencyPolicy == UnknownFrequencyAlwaysDue
	}
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// MinuteString formats t as the HH:MM matching key used by the scheduler.
// Seconds are discarded, so a reminder time matches for the whole minute.
func MinuteString(t time.Time) string {
	return t.Format("15:04")
}
