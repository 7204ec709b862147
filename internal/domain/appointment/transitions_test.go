package appointment

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfirmTransition(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ap := &Appointment{Status: StatusScheduled}

	Confirm(ap, now)

	if ap.Status != StatusConfirmed {
		t.Errorf("status = %q, want %q", ap.Status, StatusConfirmed)
	}
	if !ap.Confirmed {
		t.Error("confirmed flag not set")
	}
	if ap.ConfirmedAt == nil || !ap.ConfirmedAt.Equal(now) {
		t.Errorf("confirmed_at = %v, want %v", ap.ConfirmedAt, now)
	}
}

func TestCancelNote(t *testing.T) {
	reason := "patient request"
	ap := &Appointment{Status: StatusScheduled}
	Cancel(ap, &reason)

	if ap.Status != StatusCancelled {
		t.Errorf("status = %q, want %q", ap.Status, StatusCancelled)
	}
	if ap.Notes == nil || *ap.Notes != "Canceled: patient request" {
		t.Errorf("notes = %v, want %q", ap.Notes, "Canceled: patient request")
	}
}

func TestCancelNilReason(t *testing.T) {
	ap := &Appointment{Status: StatusConfirmed}
	Cancel(ap, nil)

	if ap.Notes == nil || *ap.Notes != "Canceled: null" {
		t.Errorf("notes = %v, want %q", ap.Notes, "Canceled: null")
	}
}

func TestCancelAppendsToExistingNotes(t *testing.T) {
	existing := "follow-up for lab results"
	reason := "weather"
	ap := &Appointment{Status: StatusScheduled, Notes: &existing}
	Cancel(ap, &reason)

	want := "follow-up for lab results\nCanceled: weather"
	if ap.Notes == nil || *ap.Notes != want {
		t.Errorf("notes = %v, want %q", ap.Notes, want)
	}
}

func TestCompleteNotes(t *testing.T) {
	existing := "intake done"
	ap := &Appointment{Status: StatusConfirmed, Notes: &existing}
	Complete(ap, "  ")
	if ap.Status != StatusCompleted {
		t.Errorf("status = %q, want %q", ap.Status, StatusCompleted)
	}
	if ap.Notes == nil || *ap.Notes != existing {
		t.Error("blank notes should leave existing notes untouched")
	}

	ap2 := &Appointment{Status: StatusScheduled, Notes: &existing}
	Complete(ap2, "prescribed rest")
	if ap2.Notes == nil || *ap2.Notes != "prescribed rest" {
		t.Errorf("notes = %v, want %q", ap2.Notes, "prescribed rest")
	}
}

func TestRescheduleKeepsStatus(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 3, 2, h, 0, 0, 0, time.UTC) }
	ap := &Appointment{Status: StatusConfirmed, StartTime: at(10), EndTime: at(11)}

	Reschedule(ap, at(14), at(15))

	if ap.Status != StatusConfirmed {
		t.Errorf("status = %q, reschedule must not change it", ap.Status)
	}
	if !ap.StartTime.Equal(at(14)) || !ap.EndTime.Equal(at(15)) {
		t.Errorf("window = [%v, %v), want [%v, %v)", ap.StartTime, ap.EndTime, at(14), at(15))
	}
}

func TestTransitionPredicates(t *testing.T) {
	cases := []struct {
		name  string
		check func(*Appointment) error
		from  Status
		ok    bool
	}{
		{"confirm from scheduled", ValidateConfirmation, StatusScheduled, true},
		{"confirm from confirmed", ValidateConfirmation, StatusConfirmed, false},
		{"confirm from cancelled", ValidateConfirmation, StatusCancelled, false},
		{"cancel from scheduled", ValidateCancellation, StatusScheduled, true},
		{"cancel from confirmed", ValidateCancellation, StatusConfirmed, true},
		{"cancel from rescheduled", ValidateCancellation, StatusRescheduled, true},
		{"cancel from completed", ValidateCancellation, StatusCompleted, false},
		{"cancel from no_show", ValidateCancellation, StatusNoShow, false},
		{"complete from scheduled", ValidateCompletion, StatusScheduled, true},
		{"complete from confirmed", ValidateCompletion, StatusConfirmed, true},
		{"complete from cancelled", ValidateCompletion, StatusCancelled, false},
		{"no-show from scheduled", ValidateNoShow, StatusScheduled, true},
		{"no-show from confirmed", ValidateNoShow, StatusConfirmed, true},
		{"no-show from completed", ValidateNoShow, StatusCompleted, false},
		{"no-show from cancelled", ValidateNoShow, StatusCancelled, false},
		{"no-show from no_show", ValidateNoShow, StatusNoShow, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.check(&Appointment{Status: tc.from})
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok {
				var illegal *IllegalTransitionError
				if !errors.As(err, &illegal) {
					t.Errorf("expected IllegalTransitionError, got %v", err)
				} else if illegal.From != tc.from {
					t.Errorf("error From = %q, want %q", illegal.From, tc.from)
				}
			}
		})
	}
}

func TestIllegalTransitionMentionsStatus(t *testing.T) {
	err := ValidateConfirmation(&Appointment{Status: StatusCancelled})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), string(StatusCancelled)) {
		t.Errorf("error %q should mention the current status", err.Error())
	}
}
