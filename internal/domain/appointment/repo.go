package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchParams are the optional, conjunctive filters for appointment search.
type SearchParams struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    *Status
	From      *time.Time
	To        *time.Time
	Reason    string // substring match, case-insensitive
}

type Repository interface {
	Create(ctx context.Context, ap *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, ap *Appointment) error

	// FindOverlapping returns the doctor's appointments in a blocking status
	// whose windows intersect [start, end), optionally excluding one id.
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*Appointment, error)

	// FindOverdueUnresolved returns appointments still awaiting action
	// (scheduled or confirmed) whose start time is older than threshold,
	// ordered by start time.
	FindOverdueUnresolved(ctx context.Context, threshold time.Time, limit, offset int) ([]*Appointment, error)

	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListForRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error)
	NextForPatient(ctx context.Context, patientID uuid.UUID, after time.Time) (*Appointment, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}
