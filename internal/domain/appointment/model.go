package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

// DefaultDuration is used for the end time when a request leaves it unset.
const DefaultDuration = 30 * time.Minute

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// BlockingStatuses are the states in which an appointment holds its doctor's
// time window: any overlap against one of these is a double-booking.
// StatusRescheduled is an accepted legacy value; this code never produces it
// but still treats records carrying it as live.
var BlockingStatuses = []Status{StatusScheduled, StatusConfirmed, StatusRescheduled}

// Appointment maps to the appointment table.
type Appointment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	StartTime   time.Time  `db:"start_time" json:"start_time"`
	EndTime     time.Time  `db:"end_time" json:"end_time"`
	Reason      string     `db:"reason" json:"reason"`
	Status      Status     `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	Confirmed   bool       `db:"confirmed" json:"confirmed"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	Location    *string    `db:"location" json:"location,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the appointment's half-open window [start, end)
// intersects the given one.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && start.Before(a.EndTime)
}

// NormalizeWindow applies the default duration when end is unset. A nil end
// is not an error; it means the caller accepted the standard visit length.
func NormalizeWindow(start time.Time, end *time.Time) (time.Time, time.Time) {
	if end == nil || end.IsZero() {
		return start, start.Add(DefaultDuration)
	}
	return start, *end
}
