package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Read-only projections. No validation or mutation happens here.

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// ListForDay returns a doctor's appointments for the calendar day containing
// day, in day's location.
func (s *Service) ListForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*Appointment, error) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	return s.repo.ListForRange(ctx, doctorID, from, to)
}

func (s *Service) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// NextForPatient returns the patient's earliest upcoming live appointment,
// or a NotFoundError when none exists.
func (s *Service) NextForPatient(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	return s.repo.NextForPatient(ctx, patientID, s.now())
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
