// internal/matching/builder.go

package matching

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotEligible means the user has no completed profile or
	// personality result; the builder must not run for them.
	ErrNotEligible = errors.New("user not eligible for match generation")
)

// BuilderConfig carries the tunables of the daily batch.
type BuilderConfig struct {
	RequestedBatchSize int
	SimilarRatio       float64
	FreeTierLimit      int
	PoolTTL            time.Duration
}

// Builder constructs at most one UserDailyMatchPool per user per calendar
// day. Concurrent duplicate runs for the same (user, date) are resolved by
// the persistence layer's uniqueness constraint: first writer wins, later
// runs read back the existing row.
type Builder struct {
	repo        Repository
	scorer      Scorer
	icebreakers IcebreakerGenerator
	fallbackIce IcebreakerGenerator
	photos      PhotoResolver
	seen        *SeenCache
	clock       *Clock
	cfg         BuilderConfig
	log         *zap.Logger
}

func NewBuilder(
	repo Repository,
	scorer Scorer,
	icebreakers IcebreakerGenerator,
	photos PhotoResolver,
	seen *SeenCache,
	clock *Clock,
	cfg BuilderConfig,
	log *zap.Logger,
) *Builder {
	return &Builder{
		repo:        repo,
		scorer:      scorer,
		icebreakers: icebreakers,
		fallbackIce: NewTemplateIcebreakers(),
		photos:      photos,
		seen:        seen,
		clock:       clock,
		cfg:         cfg,
		log:         log,
	}
}

// scoredCandidate pairs a candidate with its scoring output and
// repeat-prevention state for the bucket selection below.
type scoredCandidate struct {
	profile   *Profile
	result    *ScoreResult
	lastShown time.Time
	fresh     bool
}

// BuildForUser generates and persists the pool for one user for the
// current calendar day. The returned pool is the persisted one: if a pool
// already exists for the key, it is returned unchanged.
func (b *Builder) BuildForUser(ctx context.Context, userID string) (*UserDailyMatchPool, error) {
	user, err := b.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.OnboardingCompleted || user.Archetype == "" {
		return nil, ErrNotEligible
	}

	now := b.clock.Now()
	today := b.clock.Today()

	// Cheap idempotence check before doing any work. The unique index
	// still guards the race below.
	if existing, err := b.repo.GetPool(ctx, userID, today); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	eligible, err := b.repo.GetEligibleCandidates(ctx, user)
	if err != nil {
		return nil, err
	}

	seenList, err := b.seen.RecentlyShown(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	lastShown := make(map[string]time.Time, len(seenList))
	for _, s := range seenList {
		lastShown[s.UserID] = s.LastShown
	}

	// Score the universe up front. A scoring failure excludes that
	// candidate only; it never aborts the batch.
	universe := make([]*scoredCandidate, 0, len(eligible))
	freshCount := 0
	for _, candidate := range eligible {
		result, err := b.scorer.Score(ctx, user, candidate)
		if err != nil {
			candidatesExcluded.Inc()
			b.log.Warn("scoring failed, excluding candidate",
				zap.String("user_id", userID),
				zap.String("candidate_id", candidate.UserID),
				zap.Error(err))
			continue
		}
		compositeScores.Observe(float64(result.Composite))

		shown, wasShown := lastShown[candidate.UserID]
		sc := &scoredCandidate{profile: candidate, result: result, fresh: !wasShown, lastShown: shown}
		if sc.fresh {
			freshCount++
		}
		universe = append(universe, sc)
	}

	totalEligible := len(universe)
	actualBatchSize := b.cfg.RequestedBatchSize
	if totalEligible < actualBatchSize {
		actualBatchSize = totalEligible
	}
	similarCount := int(math.Round(b.cfg.SimilarRatio * float64(actualBatchSize)))
	complementaryCount := actualBatchSize - similarCount

	meta := GenerationMeta{
		TotalEligible:           totalEligible,
		RequestedBatchSize:      b.cfg.RequestedBatchSize,
		ActualBatchSize:         actualBatchSize,
		SimilarCount:            similarCount,
		ComplementaryCount:      complementaryCount,
		RepeatPreventionApplied: freshCount >= actualBatchSize,
		FreshCandidatesCount:    freshCount,
		FallbackUsed:            freshCount < 1,
	}

	picked := map[string]bool{}
	similar := b.selectBucket(universe, picked, similarCount, func(sc *scoredCandidate) int {
		return sc.result.SimilarityScore
	})
	complementary := b.selectBucket(universe, picked, complementaryCount, func(sc *scoredCandidate) int {
		return sc.result.ComplementaryScore
	})

	photoKeys, err := b.repo.GetPhotoKeys(ctx, pickedIDs(similar, complementary))
	if err != nil {
		return nil, err
	}

	candidates := make([]CandidateInPool, 0, actualBatchSize)
	for _, sc := range similar {
		candidates = append(candidates, b.buildCandidate(ctx, user, sc, MatchTypeSimilar, photoKeys))
	}
	for _, sc := range complementary {
		candidates = append(candidates, b.buildCandidate(ctx, user, sc, MatchTypeComplementary, photoKeys))
	}

	// Delivery order should not leak the ranking
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	userLimit := (*int)(nil)
	actualDelivery := len(candidates)
	if !user.IsPlus() {
		limit := b.cfg.FreeTierLimit
		userLimit = &limit
		if actualDelivery > limit {
			actualDelivery = limit
		}
	}

	pool := &UserDailyMatchPool{
		UserID:   userID,
		PoolDate: today,
		BatchID:  uuid.NewString(),
		PoolData: PoolData{
			Candidates:     candidates,
			GenerationMeta: meta,
			DeliveryRules: DeliveryRules{
				IsPlus:              user.IsPlus(),
				UserLimit:           userLimit,
				ActualDeliveryCount: actualDelivery,
			},
		},
		ExpiresAt: now.Add(b.cfg.PoolTTL),
		CreatedAt: now,
	}

	created, err := b.repo.CreatePool(ctx, pool)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race: another run persisted first. That run's pool
		// is the pool of record.
		existing, err := b.repo.GetPool(ctx, userID, today)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		return nil, errors.New("pool conflict but existing pool not found")
	}

	poolsGenerated.Inc()
	if meta.FallbackUsed {
		fallbackActivations.Inc()
	}
	b.log.Info("match pool generated",
		zap.String("user_id", userID),
		zap.String("date", today),
		zap.String("batch_id", pool.BatchID),
		zap.Int("total_eligible", totalEligible),
		zap.Int("batch_size", actualBatchSize),
		zap.Int("fresh", freshCount),
		zap.Bool("fallback_used", meta.FallbackUsed))
	return pool, nil
}

// selectBucket fills one bucket of the quota. Fresh candidates are ranked
// by the bucket score (ties broken by interest overlap, then archetype
// alignment). Only when the fresh set cannot fill the bucket are
// previously-shown candidates reused, least-recently-shown first.
func (b *Builder) selectBucket(universe []*scoredCandidate, picked map[string]bool, count int, score func(*scoredCandidate) int) []*scoredCandidate {
	if count <= 0 {
		return nil
	}

	var fresh, shown []*scoredCandidate
	for _, sc := range universe {
		if picked[sc.profile.UserID] {
			continue
		}
		if sc.fresh {
			fresh = append(fresh, sc)
		} else {
			shown = append(shown, sc)
		}
	}

	sort.Slice(fresh, func(i, j int) bool {
		a, b := fresh[i], fresh[j]
		if score(a) != score(b) {
			return score(a) > score(b)
		}
		if a.result.InterestScore != b.result.InterestScore {
			return a.result.InterestScore > b.result.InterestScore
		}
		return a.result.ArchetypeScore > b.result.ArchetypeScore
	})
	sort.Slice(shown, func(i, j int) bool {
		a, b := shown[i], shown[j]
		if !a.lastShown.Equal(b.lastShown) {
			return a.lastShown.Before(b.lastShown)
		}
		return score(a) > score(b)
	})

	selected := make([]*scoredCandidate, 0, count)
	for _, sc := range append(fresh, shown...) {
		if len(selected) == count {
			break
		}
		selected = append(selected, sc)
		picked[sc.profile.UserID] = true
	}
	return selected
}

func (b *Builder) buildCandidate(ctx context.Context, user *Profile, sc *scoredCandidate, matchType string, photoKeys map[string][]string) CandidateInPool {
	candidate := sc.profile

	icebreakers, err := b.icebreakers.Generate(ctx, user, candidate)
	if err != nil || len(icebreakers) < IcebreakerCount {
		if err != nil {
			b.log.Warn("icebreaker generation failed, using templates",
				zap.String("candidate_id", candidate.UserID), zap.Error(err))
		}
		icebreakers, _ = b.fallbackIce.Generate(ctx, user, candidate)
	}

	return CandidateInPool{
		UserID:             candidate.UserID,
		MatchType:          matchType,
		CompositeScore:     sc.result.Composite,
		SimilarityScore:    sc.result.SimilarityScore,
		ComplementaryScore: sc.result.ComplementaryScore,
		DimensionScores:    sc.result.Breakdown,

		DisplayName: candidate.DisplayName,
		Archetype:   candidate.Archetype,
		Interests:   candidate.Interests,
		Age:         candidate.Age,
		Location:    candidate.Location,
		PhotoURLs:   b.photos.ResolveURLs(photoKeys[candidate.UserID]),
		BioPreview:  candidate.Bio,

		// Display/audit record of the dealbreaker check; the hard filter
		// already ran in the candidate query.
		AgeIntervalMatch: AgeIntervalMatch{
			UserMin:      user.MinAge,
			UserMax:      user.MaxAge,
			CandidateAge: candidate.Age,
			IsMatch:      candidate.Age >= user.MinAge && candidate.Age <= user.MaxAge,
		},

		AIIcebreakers:      icebreakers[:IcebreakerCount],
		ArchetypeScore:     sc.result.ArchetypeScore,
		AnxietyScore:       sc.result.AnxietyScore,
		DimensionDetail:    buildDimensionDetail(sc.result),
		PersonalityInsight: buildPersonalityInsight(user.Archetype, candidate.Archetype, candidate.DisplayName, matchType),
		CommonInterests:    commonInterests(user.Interests, candidate.Interests),
	}
}

func pickedIDs(buckets ...[]*scoredCandidate) []string {
	var ids []string
	for _, bucket := range buckets {
		for _, sc := range bucket {
			ids = append(ids, sc.profile.UserID)
		}
	}
	return ids
}

// GenerateDailyPools runs the builder for every eligible user. Individual
// user failures are logged and skipped so one bad profile cannot stall
// the whole batch.
func (b *Builder) GenerateDailyPools(ctx context.Context) (*BatchReport, error) {
	userIDs, err := b.repo.GetEligibleUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		Date:          b.clock.Today(),
		TotalEligible: len(userIDs),
		BatchSize:     b.cfg.RequestedBatchSize,
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if _, err := b.BuildForUser(ctx, userID); err != nil {
			if errors.Is(err, ErrNotEligible) || errors.Is(err, ErrProfileNotFound) {
				report.UsersSkipped++
				continue
			}
			report.UsersSkipped++
			b.log.Error("pool generation failed for user",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		report.UsersProcessed++
	}

	b.log.Info("daily pool generation finished",
		zap.String("date", report.Date),
		zap.Int("processed", report.UsersProcessed),
		zap.Int("skipped", report.UsersSkipped))
	return report, nil
}
