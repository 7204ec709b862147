package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvdm12/hospital-api/internal/platform/lock"
)

// Directory resolves doctor and patient references by identity. Owned by
// profile management; the engine never sees the full aggregates.
type Directory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// TxRunner runs a function inside a serializable transaction when the store
// supports one. The overlap-check-then-write sequence for a doctor must be
// linearized; serializable isolation plus the per-doctor lock provide that.
type TxRunner interface {
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// PassthroughTxRunner runs the function directly. Used with stores that have
// no transaction support of their own (tests, in-memory fakes).
// defaultSweepPageSize bounds a no-show sweep batch when no size is configured.
const defaultSweepPageSize = 100

type PassthroughTxRunner struct{}

func (PassthroughTxRunner) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ScheduleRequest is the input for booking a new appointment.
type ScheduleRequest struct {
	DoctorID  uuid.UUID  `json:"doctor_id"`
	PatientID uuid.UUID  `json:"patient_id"`
	Start     time.Time  `json:"start_time"`
	End       *time.Time `json:"end_time,omitempty"`
	Reason    string     `json:"reason"`
	Location  *string    `json:"location,omitempty"`
}

// Service orchestrates the appointment lifecycle: load, validate, apply,
// persist. All business rules live in the validator and the domain actions;
// the service only composes them.
type Service struct {
	repo      Repository
	validator *Validator
	directory Directory
	locker    lock.DoctorLocker
	tx        TxRunner
	logger    zerolog.Logger
	pageSize  int
	now       func() time.Time
}

// NewService wires the orchestrator. pageSize bounds each batch of the
// no-show sweep; zero or negative falls back to a sensible default.
func NewService(repo Repository, validator *Validator, directory Directory, locker lock.DoctorLocker, tx TxRunner, logger zerolog.Logger, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = defaultSweepPageSize
	}
	return &Service{
		repo:      repo,
		validator: validator,
		directory: directory,
		locker:    locker,
		tx:        tx,
		logger:    logger,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// Schedule books a new appointment. The window defaults to 30 minutes when
// the request leaves the end open. The conflict check and the insert run
// under the per-doctor lock and a serializable transaction so concurrent
// requests for the same doctor cannot both pass validation.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*Appointment, error) {
	if req.Reason == "" {
		return nil, fmt.Errorf("reason is required")
	}

	ok, err := s.directory.DoctorExists(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("resolve doctor: %w", err)
	}
	if !ok {
		return nil, &NotFoundError{Entity: "doctor", ID: req.DoctorID}
	}
	ok, err = s.directory.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	if !ok {
		return nil, &NotFoundError{Entity: "patient", ID: req.PatientID}
	}

	start, end := NormalizeWindow(req.Start, req.End)

	var created *Appointment
	err = s.locker.WithDoctorLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		return s.tx.RunSerializable(lockCtx, func(txCtx context.Context) error {
			if err := s.validator.ValidateCreation(txCtx, req.DoctorID, start, end); err != nil {
				return err
			}

			ap := &Appointment{
				DoctorID:  req.DoctorID,
				PatientID: req.PatientID,
				StartTime: start,
				EndTime:   end,
				Reason:    req.Reason,
				Location:  req.Location,
				Status:    StatusScheduled,
			}
			if err := s.repo.Create(txCtx, ap); err != nil {
				return fmt.Errorf("persist appointment: %w", err)
			}
			created = ap
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", created.ID.String()).
		Str("doctor_id", req.DoctorID.String()).
		Time("start", start).
		Msg("appointment scheduled")

	return created, nil
}

// Confirm transitions a scheduled appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfirmation(ap); err != nil {
		return nil, err
	}

	Confirm(ap, s.now())
	if err := s.repo.Update(ctx, ap); err != nil {
		return nil, fmt.Errorf("persist confirmation: %w", err)
	}
	return ap, nil
}

// Cancel transitions a live appointment to cancelled, recording the reason
// in the notes.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*Appointment, error) {
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCancellation(ap); err != nil {
		return nil, err
	}

	Cancel(ap, reason)
	if err := s.repo.Update(ctx, ap); err != nil {
		return nil, fmt.Errorf("persist cancellation: %w", err)
	}
	return ap, nil
}

// Complete transitions a scheduled or confirmed appointment to completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCompletion(ap); err != nil {
		return nil, err
	}

	Complete(ap, notes)
	if err := s.repo.Update(ctx, ap); err != nil {
		return nil, fmt.Errorf("persist completion: %w", err)
	}
	return ap, nil
}

// MarkNoShow transitions a scheduled or confirmed appointment to no_show.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateNoShow(ap); err != nil {
		return nil, err
	}

	MarkNoShow(ap)
	if err := s.repo.Update(ctx, ap); err != nil {
		return nil, fmt.Errorf("persist no-show: %w", err)
	}
	return ap, nil
}

// Reschedule moves a live appointment to a new window. The appointment must
// still be movable (same eligibility as cancellation), the new window must
// pass the timing rules, and the overlap check excludes the appointment's
// own id so moving within the same slot succeeds.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newStart time.Time, newEnd *time.Time) (*Appointment, error) {
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateCancellation(ap); err != nil {
		return nil, err
	}

	start, end := NormalizeWindow(newStart, newEnd)

	err = s.locker.WithDoctorLock(ctx, ap.DoctorID, func(lockCtx context.Context) error {
		return s.tx.RunSerializable(lockCtx, func(txCtx context.Context) error {
			if err := s.validator.ValidateReschedule(txCtx, ap.ID, ap.DoctorID, start, end); err != nil {
				return err
			}

			Reschedule(ap, start, end)
			if err := s.repo.Update(txCtx, ap); err != nil {
				return fmt.Errorf("persist reschedule: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", ap.ID.String()).
		Time("start", start).
		Msg("appointment rescheduled")

	return ap, nil
}

// ProcessNoShows marks appointments still scheduled or confirmed whose start
// time passed more than the grace period ago. It pages through the overdue
// set and returns the ids it marked. Safe to invoke repeatedly:
// rows already terminal no longer match the query, so a second run with no
// new data affects nothing.
func (s *Service) ProcessNoShows(ctx context.Context, grace time.Duration) ([]uuid.UUID, error) {
	threshold := s.now().Add(-grace)
	var marked []uuid.UUID

	for {
		// Always fetch the first page: marking rows removes them from the set.
		page, err := s.repo.FindOverdueUnresolved(ctx, threshold, s.pageSize, 0)
		if err != nil {
			return marked, fmt.Errorf("find overdue appointments: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, ap := range page {
			if err := ValidateNoShow(ap); err != nil {
				// The query should exclude these; skip rather than corrupt.
				continue
			}
			MarkNoShow(ap)
			if err := s.repo.Update(ctx, ap); err != nil {
				return marked, fmt.Errorf("mark no-show %s: %w", ap.ID, err)
			}
			marked = append(marked, ap.ID)
		}

		if len(page) < s.pageSize {
			break
		}
	}

	if len(marked) > 0 {
		s.logger.Info().
			Int("count", len(marked)).
			Time("threshold", threshold).
			Msg("no-show sweep marked appointments")
	}
	return marked, nil
}
