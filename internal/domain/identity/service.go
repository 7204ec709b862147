package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
}

func NewService(doctors DoctorRepository, patients PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients}
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FirstName == "" || d.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if d.LicenseNumber == "" {
		return fmt.Errorf("license_number is required")
	}
	d.Active = true
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	return s.doctors.Update(ctx, d)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

// -- Availability template --

func (s *Service) SetAvailability(ctx context.Context, rule *AvailabilityRule) error {
	if rule.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if rule.Weekday < 0 || rule.Weekday > 6 {
		return fmt.Errorf("weekday must be 0-6, got %d", rule.Weekday)
	}
	start, err := time.Parse("15:04", rule.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time %q: %w", rule.StartTime, err)
	}
	end, err := time.Parse("15:04", rule.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time %q: %w", rule.EndTime, err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_time %q must be after start_time %q", rule.EndTime, rule.StartTime)
	}
	if _, err := s.doctors.GetByID(ctx, rule.DoctorID); err != nil {
		return fmt.Errorf("doctor %s: %w", rule.DoctorID, err)
	}
	return s.doctors.UpsertAvailability(ctx, rule)
}

func (s *Service) GetWeeklyAvailability(ctx context.Context, doctorID uuid.UUID) ([]*AvailabilityRule, error) {
	return s.doctors.ListAvailability(ctx, doctorID)
}

// IsAvailable reports whether the doctor's weekly template covers the clock
// time of at on the given weekday. A missing or inactive rule means the
// doctor does not work then. Satisfies the scheduling engine's availability
// capability.
func (s *Service) IsAvailable(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday, at time.Time) (bool, error) {
	rule, err := s.doctors.GetAvailability(ctx, doctorID, int(weekday))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rule.Covers(at), nil
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	p.Active = true
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.patients.GetByMRN(ctx, mrn)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	return s.patients.Update(ctx, p)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// -- Existence checks consumed by the scheduling engine --

func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
