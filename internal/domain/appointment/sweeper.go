package appointment

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically reclassifies overdue appointments as no-shows. It
// keeps no state of its own beyond the grace period: every run derives its
// threshold from the clock, so missed or repeated runs are harmless.
type Sweeper struct {
	svc      *Service
	grace    time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(svc *Service, grace, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{svc: svc, grace: grace, interval: interval, logger: logger}
}

// RunOnce executes a single sweep and logs the outcome.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	start := time.Now()
	marked, err := s.svc.ProcessNoShows(ctx, s.grace)
	if err != nil {
		s.logger.Error().Err(err).Msg("no-show sweep failed")
		return err
	}
	s.logger.Info().
		Int("marked", len(marked)).
		Dur("elapsed", time.Since(start)).
		Msg("no-show sweep complete")
	return nil
}

// Run sweeps immediately and then on every tick until the context is
// canceled. Errors are logged and the loop keeps going; the next tick
// retries from scratch.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.interval).
		Dur("grace", s.grace).
		Msg("no-show sweeper starting")

	_ = s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("no-show sweeper stopping")
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}
