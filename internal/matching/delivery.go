// internal/matching/delivery.go

package matching

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	firstMatchMessage = "🎉 Dina första matchningar är här!"

	defaultPageSize = 10
)

var firstMatchEffects = []string{"confetti", "celebration"}

// DeliverDaily promotes today's pool candidates into delivered match rows
// and returns the day's matches, paginated. Delivery is additive within a
// day: rows already delivered are returned again, never duplicated, and
// free-tier users never receive more than their daily limit across
// repeated calls.
//
// During the post-onboarding holdoff a WaitingResponse is returned instead
// of matches.
func (s *service) DeliverDaily(ctx context.Context, userID string, pageSize int, cursor string) (*MatchDailyResponse, *WaitingResponse, error) {
	user, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if !user.OnboardingCompleted {
		return nil, nil, ErrOnboardingIncomplete
	}

	now := s.clock.Now()
	today := s.clock.Today()

	if user.OnboardingCompletedAt != nil {
		readyAt := user.OnboardingCompletedAt.Add(s.holdoff)
		if now.Before(readyAt) {
			return nil, &WaitingResponse{
				JourneyPhase:       PhaseWaiting,
				Message:            "Dina första matchningar förbereds",
				TimeRemaining:      FormatRemaining(readyAt.Sub(now)),
				NextMatchAvailable: readyAt.Format("2006-01-02T15:04:05Z07:00"),
			}, nil
		}
	}

	pool, err := s.repo.GetPool(ctx, userID, today)
	if err != nil {
		return nil, nil, err
	}
	if pool == nil {
		// The nightly job has not reached this user yet (or they
		// finished onboarding after it ran). Build on demand.
		pool, err = s.builder.BuildForUser(ctx, userID)
		if err != nil {
			return nil, nil, err
		}
	}

	delivered, err := s.repo.GetMatchesForDate(ctx, userID, today)
	if err != nil {
		return nil, nil, err
	}

	if remaining := pool.PoolData.DeliveryRules.ActualDeliveryCount - len(delivered); remaining > 0 {
		promoted, err := s.promote(ctx, user, pool, delivered, remaining, today)
		if err != nil {
			return nil, nil, err
		}
		delivered = append(delivered, promoted...)
	}

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	offset, err := decodeCursor(cursor, today)
	if err != nil {
		return nil, nil, err
	}
	page, nextCursor := paginate(delivered, offset, pageSize, today)

	resp := &MatchDailyResponse{
		Date:       today,
		BatchSize:  pool.PoolData.GenerationMeta.ActualBatchSize,
		UserLimit:  pool.PoolData.DeliveryRules.UserLimit,
		Matches:    make([]MatchDailyMatch, 0, len(page)),
		NextCursor: nextCursor,
	}
	for _, m := range page {
		resp.Matches = append(resp.Matches, matchToDTO(m))
		if m.IsFirstDayMatch {
			msg := firstMatchMessage
			resp.SpecialEventMessage = &msg
		}
	}
	if len(delivered) == 0 {
		resp.Message = "Inga matchningar tillgängliga idag"
	}
	return resp, nil, nil
}

// promote turns up to limit not-yet-delivered pool candidates into match
// rows. The pool's shuffled order is preserved.
func (s *service) promote(ctx context.Context, user *Profile, pool *UserDailyMatchPool, delivered []*Match, limit int, today string) ([]*Match, error) {
	firstDate, err := s.repo.GetFirstMatchDate(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	isFirstDay := firstDate == "" || firstDate == today

	alreadyDelivered := make(map[string]bool, len(delivered))
	for _, m := range delivered {
		alreadyDelivered[m.MatchedUserID] = true
	}

	expiresAt := s.clock.NextReset()
	rows := make([]*Match, 0, limit)
	for _, c := range pool.PoolData.Candidates {
		if len(rows) == limit {
			break
		}
		if alreadyDelivered[c.UserID] {
			continue
		}
		m := &Match{
			UserID:             user.UserID,
			MatchedUserID:      c.UserID,
			MatchType:          c.MatchType,
			MatchScore:         c.CompositeScore,
			MatchDate:          today,
			Status:             "pending",
			DimensionScores:    c.DimensionScores,
			DimensionDetail:    c.DimensionDetail,
			ArchetypeScore:     c.ArchetypeScore,
			AnxietyScore:       c.AnxietyScore,
			Icebreakers:        c.AIIcebreakers,
			PersonalityInsight: c.PersonalityInsight,
			MatchReason:        matchReason(c.MatchType),
			MatchDisplayName:   c.DisplayName,
			MatchAge:           c.Age,
			MatchArchetype:     c.Archetype,
			PhotoURLs:          c.PhotoURLs,
			BioPreview:         c.BioPreview,
			CommonInterests:    c.CommonInterests,
			IsFirstDayMatch:    isFirstDay,
			ExpiresAt:          &expiresAt,
		}
		if isFirstDay {
			m.SpecialEffects = firstMatchEffects
		}
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	inserted, err := s.repo.InsertMatches(ctx, rows)
	if err != nil {
		return nil, err
	}
	matchesDelivered.Add(float64(len(inserted)))

	shownIDs := make([]string, 0, len(inserted))
	for _, m := range inserted {
		shownIDs = append(shownIDs, m.MatchedUserID)
	}
	s.seen.MarkShown(ctx, user.UserID, shownIDs, s.clock.Now())

	s.log.Info("matches delivered",
		zap.String("user_id", user.UserID),
		zap.String("date", today),
		zap.Int("count", len(inserted)),
		zap.Bool("first_day", isFirstDay))
	return inserted, nil
}

func matchToDTO(m *Match) MatchDailyMatch {
	dto := MatchDailyMatch{
		MatchID:                 m.ID,
		ProfileID:               m.MatchedUserID,
		DisplayName:             m.MatchDisplayName,
		Age:                     m.MatchAge,
		Archetype:               m.MatchArchetype,
		CompatibilityPercentage: m.MatchScore,
		DimensionScoreBreakdown: m.DimensionDetail,
		ArchetypeAlignmentScore: m.ArchetypeScore,
		AnxietyReductionScore:   m.AnxietyScore,
		AIIcebreakers:           m.Icebreakers,
		PersonalityInsight:      m.PersonalityInsight,
		MatchReason:             m.MatchReason,
		IsFirstDayMatch:         m.IsFirstDayMatch,
		SpecialEffects:          m.SpecialEffects,
		PhotoURLs:               m.PhotoURLs,
		BioPreview:              m.BioPreview,
		CommonInterests:         m.CommonInterests,
	}
	if m.ExpiresAt != nil {
		ts := m.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
		dto.ExpiresAt = &ts
	}
	return dto
}

// Cursors are scoped to a single day: an offset plus the date it was
// issued for. A cursor from a previous day is rejected rather than
// silently pointing into a different result set.
func encodeCursor(offset int, date string) string {
	return base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d", date, offset)))
}

func decodeCursor(cursor, today string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[0] != today {
		return 0, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return 0, ErrInvalidCursor
	}
	return offset, nil
}

func paginate(matches []*Match, offset, pageSize int, today string) ([]*Match, *string) {
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + pageSize
	if end >= len(matches) {
		return matches[offset:], nil
	}
	next := encodeCursor(end, today)
	return matches[offset:end], &next
}
