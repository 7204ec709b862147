package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityProvider answers whether a doctor nominally works at a given
// weekday and clock time. Owned by doctor-profile management; the engine only
// ever sees this narrow capability.
type AvailabilityProvider interface {
	IsAvailable(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday, at time.Time) (bool, error)
}

// OverlapFinder is the slice of the store the validator needs: appointments
// of a doctor in a blocking status whose windows intersect [start, end),
// optionally excluding one appointment id.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*Appointment, error)
}

// Validator holds the pure decision logic for scheduling. It performs no
// writes; every method either returns nil or a typed rejection.
type Validator struct {
	availability AvailabilityProvider
	overlaps     OverlapFinder
	now          func() time.Time
}

func NewValidator(availability AvailabilityProvider, overlaps OverlapFinder) *Validator {
	return &Validator{availability: availability, overlaps: overlaps, now: time.Now}
}

// ValidateCreation checks a proposed window for a new appointment. Steps run
// in order and short-circuit: past start, inverted window, availability
// template, then overlap against every live appointment of the doctor.
func (v *Validator) ValidateCreation(ctx context.Context, doctorID uuid.UUID, start, end time.Time) error {
	if err := v.validateWindow(start, end); err != nil {
		return err
	}

	available, err := v.availability.IsAvailable(ctx, doctorID, start.Weekday(), start)
	if err != nil {
		return fmt.Errorf("availability lookup: %w", err)
	}
	if !available {
		return &DoctorUnavailableError{Weekday: start.Weekday(), TimeOfDay: start.Format("15:04")}
	}

	return v.checkOverlap(ctx, doctorID, start, end, nil)
}

// ValidateReschedule runs the overlap check for a moved window, excluding the
// appointment's own id so it cannot conflict with itself. Past-date and
// window-order rules are re-run here as well; the availability template is
// not re-consulted for moves.
func (v *Validator) ValidateReschedule(ctx context.Context, id, doctorID uuid.UUID, newStart, newEnd time.Time) error {
	if err := v.validateWindow(newStart, newEnd); err != nil {
		return err
	}
	return v.checkOverlap(ctx, doctorID, newStart, newEnd, &id)
}

func (v *Validator) validateWindow(start, end time.Time) error {
	if start.Before(v.now()) {
		return &InvalidTimingError{Reason: "start time is in the past"}
	}
	if !end.After(start) {
		return &InvalidTimingError{Reason: "end time must be after start time"}
	}
	return nil
}

func (v *Validator) checkOverlap(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) error {
	existing, err := v.overlaps.FindOverlapping(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("overlap lookup: %w", err)
	}
	if len(existing) > 0 {
		return &ConflictError{DoctorID: doctorID, Start: start, End: end}
	}
	return nil
}

// -- Transition legality. Pure predicates over the current status. --

// ValidateConfirmation permits confirming only a scheduled appointment.
func ValidateConfirmation(ap *Appointment) error {
	if ap.Status != StatusScheduled {
		return &IllegalTransitionError{From: ap.Status, Action: "confirm"}
	}
	return nil
}

// ValidateCancellation permits cancelling any live appointment. Terminal
// states, including completed, are not cancellable.
func ValidateCancellation(ap *Appointment) error {
	switch ap.Status {
	case StatusScheduled, StatusConfirmed, StatusRescheduled:
		return nil
	}
	return &IllegalTransitionError{From: ap.Status, Action: "cancel"}
}

// ValidateCompletion permits completing a scheduled or confirmed appointment.
func ValidateCompletion(ap *Appointment) error {
	switch ap.Status {
	case StatusScheduled, StatusConfirmed:
		return nil
	}
	return &IllegalTransitionError{From: ap.Status, Action: "complete"}
}

// ValidateNoShow permits marking no-show from scheduled or confirmed only,
// so terminal records are never rewritten by the sweep or by hand.
func ValidateNoShow(ap *Appointment) error {
	switch ap.Status {
	case StatusScheduled, StatusConfirmed:
		return nil
	}
	return &IllegalTransitionError{From: ap.Status, Action: "mark no-show"}
}
