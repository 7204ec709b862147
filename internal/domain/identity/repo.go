package identity

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	// Availability template
	UpsertAvailability(ctx context.Context, rule *AvailabilityRule) error
	GetAvailability(ctx context.Context, doctorID uuid.UUID, weekday int) (*AvailabilityRule, error)
	ListAvailability(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityRule, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByMRN(ctx context.Context, mrn string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
}
