package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotFoundError is returned when a referenced appointment, doctor, or patient
// does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidTimingError is returned when a proposed window is in the past or
// out of order.
type InvalidTimingError struct {
	Reason string
}

func (e *InvalidTimingError) Error() string {
	return fmt.Sprintf("invalid timing: %s", e.Reason)
}

// DoctorUnavailableError is returned when the proposed time falls outside the
// doctor's working template. Day and clock time are carried for user-facing
// messages.
type DoctorUnavailableError struct {
	Weekday   time.Weekday
	TimeOfDay string
}

func (e *DoctorUnavailableError) Error() string {
	return fmt.Sprintf("doctor is not available on %s at %s", e.Weekday, e.TimeOfDay)
}

// ConflictError is returned when the proposed window overlaps an existing
// live appointment for the doctor.
type ConflictError struct {
	DoctorID uuid.UUID
	Start    time.Time
	End      time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("doctor %s already has an appointment overlapping [%s, %s)",
		e.DoctorID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// IllegalTransitionError is returned when a status change is not permitted
// from the current state.
type IllegalTransitionError struct {
	From   Status
	Action string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot %s appointment in status %s", e.Action, e.From)
}
