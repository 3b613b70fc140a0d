// internal/matching/service.go

package matching

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrOnboardingIncomplete = errors.New("onboarding not completed")
	ErrInvalidCursor        = errors.New("invalid pagination cursor")
)

// Service is the matching façade used by the HTTP handlers and the
// scheduler.
type Service interface {
	// DeliverDaily returns today's matches for the user, promoting pool
	// candidates as needed. During the post-onboarding holdoff the
	// second return value is set instead of the first.
	DeliverDaily(ctx context.Context, userID string, pageSize int, cursor string) (*MatchDailyResponse, *WaitingResponse, error)

	// JourneyStatus derives the user's journey phase and countdown.
	JourneyStatus(ctx context.Context, userID string) (*JourneyStatusResponse, error)

	// GenerateForUser builds (or returns) today's pool for one user.
	// Used by the admin endpoint.
	GenerateForUser(ctx context.Context, userID string) (*UserDailyMatchPool, error)

	// GenerateAll runs the nightly batch over every eligible user.
	GenerateAll(ctx context.Context) (*BatchReport, error)

	// CleanupExpired removes pools past their expiry.
	CleanupExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo    Repository
	builder *Builder
	seen    *SeenCache
	clock   *Clock
	holdoff time.Duration
	log     *zap.Logger
}

func NewService(repo Repository, builder *Builder, seen *SeenCache, clock *Clock, holdoff time.Duration, log *zap.Logger) Service {
	return &service{
		repo:    repo,
		builder: builder,
		seen:    seen,
		clock:   clock,
		holdoff: holdoff,
		log:     log,
	}
}

func (s *service) GenerateForUser(ctx context.Context, userID string) (*UserDailyMatchPool, error) {
	return s.builder.BuildForUser(ctx, userID)
}

func (s *service) GenerateAll(ctx context.Context) (*BatchReport, error) {
	start := time.Now()
	report, err := s.builder.GenerateDailyPools(ctx)
	if err != nil {
		return report, err
	}
	batchDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

func (s *service) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpiredPools(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("expired match pools removed", zap.Int64("count", deleted))
	}
	return deleted, nil
}
