package matching

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the nightly pool generation and the expired-pool cleanup.
// Run times are interpreted in the match timezone so the batch lands just
// after the daily reset regardless of where the host runs.
type Scheduler struct {
	service    Service
	clock      *Clock
	generateAt int
	cleanupAt  int
	log        *zap.Logger
}

func NewScheduler(service Service, clock *Clock, generateHour, cleanupHour int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		service:    service,
		clock:      clock,
		generateAt: generateHour,
		cleanupAt:  cleanupHour,
		log:        log,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runDaily(ctx, s.generateAt, 0, "pool generation", func(ctx context.Context) error {
		_, err := s.service.GenerateAll(ctx)
		return err
	})

	go s.runDaily(ctx, s.cleanupAt, 0, "pool cleanup", func(ctx context.Context) error {
		_, err := s.service.CleanupExpired(ctx)
		return err
	})
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, name string, task func(context.Context) error) {
	for {
		next := s.clock.NextAt(hour, minute)
		timer := time.NewTimer(next.Sub(s.clock.Now()))

		select {
		case <-timer.C:
			if err := task(ctx); err != nil {
				s.log.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
