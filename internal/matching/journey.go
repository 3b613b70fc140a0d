// internal/matching/journey.go

package matching

import (
	"context"
)

// JourneyStatus derives the user's current phase from onboarding state,
// today's pool and their match history. The phase is computed on every
// read and never stored, so it can move backwards (FIRST_MATCH yesterday,
// READY today) without any state transition bookkeeping.
//
//	WAITING     onboarding incomplete, inside the post-onboarding
//	            holdoff, or no pool and no matches yet
//	FIRST_MATCH the user's first-ever match was delivered today
//	READY       matches have been delivered before, or today's pool
//	            is waiting to be fetched
func (s *service) JourneyStatus(ctx context.Context, userID string) (*JourneyStatusResponse, error) {
	user, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	resp := &JourneyStatusResponse{
		TimeRemaining: s.clock.TimeRemaining(),
		NextResetTime: s.clock.NextReset().Format("2006-01-02T15:04:05Z07:00"),
	}

	if !user.OnboardingCompleted {
		resp.JourneyPhase = PhaseWaiting
		return resp, nil
	}
	// TimeRemaining always counts down to the next daily reset, even
	// during the holdoff; the holdoff countdown is carried by the
	// delivery endpoint's waiting response instead.
	if user.OnboardingCompletedAt != nil {
		readyAt := user.OnboardingCompletedAt.Add(s.holdoff)
		if s.clock.Now().Before(readyAt) {
			resp.JourneyPhase = PhaseWaiting
			return resp, nil
		}
	}

	deliveredToday, err := s.repo.CountMatchesForDate(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	resp.DeliveredToday = deliveredToday

	firstDate, err := s.repo.GetFirstMatchDate(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case firstDate == today && deliveredToday > 0:
		resp.JourneyPhase = PhaseFirstMatch
	case firstDate != "":
		resp.JourneyPhase = PhaseReady
	default:
		// No matches ever. READY only if today's pool already exists.
		pool, err := s.repo.GetPool(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		if pool != nil {
			resp.JourneyPhase = PhaseReady
		} else {
			resp.JourneyPhase = PhaseWaiting
		}
	}
	return resp, nil
}
