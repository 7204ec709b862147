package appointment

import (
	"fmt"
	"strings"
	"time"
)

// Domain actions. Each mutates the record for one legal transition and
// assumes the matching validator already passed; none of them re-validate.

// Confirm marks the appointment confirmed and records when.
func Confirm(ap *Appointment, now time.Time) {
	ap.Status = StatusConfirmed
	ap.Confirmed = true
	ap.ConfirmedAt = &now
}

// Cancel moves the appointment to cancelled and appends a synthesized note.
// A nil reason is passed through as the literal text "null", matching the
// upstream contract rather than guarding against it.
func Cancel(ap *Appointment, reason *string) {
	ap.Status = StatusCancelled

	text := "null"
	if reason != nil {
		text = *reason
	}
	note := fmt.Sprintf("Canceled: %s", text)
	if ap.Notes != nil && *ap.Notes != "" {
		note = *ap.Notes + "\n" + note
	}
	ap.Notes = &note
}

// Complete moves the appointment to completed. Non-blank notes replace the
// notes field; blank notes leave it untouched.
func Complete(ap *Appointment, notes string) {
	ap.Status = StatusCompleted
	if strings.TrimSpace(notes) != "" {
		ap.Notes = &notes
	}
}

// MarkNoShow moves the appointment to no_show. No notes side effect.
func MarkNoShow(ap *Appointment) {
	ap.Status = StatusNoShow
}

// Reschedule moves the window in place. Status is deliberately left alone:
// a moved appointment keeps whatever confirmation progress it had.
func Reschedule(ap *Appointment, newStart, newEnd time.Time) {
	ap.StartTime = newStart
	ap.EndTime = newEnd
}
