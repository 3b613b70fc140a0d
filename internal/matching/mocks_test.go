// internal/matching/mocks_test.go
// In-memory fakes shared by the builder, delivery and journey tests.

package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu        sync.Mutex
	profiles  map[string]*Profile
	eligible  map[string][]*Profile
	pools     map[string]*UserDailyMatchPool
	matches   []*Match
	seen      map[string][]SeenCandidate
	photoKeys map[string][]string

	createPoolErr error
	candidatesErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  map[string]*Profile{},
		eligible:  map[string][]*Profile{},
		pools:     map[string]*UserDailyMatchPool{},
		seen:      map[string][]SeenCandidate{},
		photoKeys: map[string][]string{},
	}
}

func poolKey(userID, date string) string {
	return userID + "|" + date
}

func (r *fakeRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetEligibleCandidates(ctx context.Context, user *Profile) ([]*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.candidatesErr != nil {
		return nil, r.candidatesErr
	}
	return r.eligible[user.UserID], nil
}

func (r *fakeRepo) GetEligibleUserIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.profiles))
	for id, p := range r.profiles {
		if p.OnboardingCompleted && p.Archetype != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeRepo) CreatePool(ctx context.Context, pool *UserDailyMatchPool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createPoolErr != nil {
		return false, r.createPoolErr
	}
	key := poolKey(pool.UserID, pool.PoolDate)
	if _, exists := r.pools[key]; exists {
		return false, nil
	}
	r.pools[key] = pool
	return true, nil
}

func (r *fakeRepo) GetPool(ctx context.Context, userID, date string) (*UserDailyMatchPool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pools[poolKey(userID, date)], nil
}

func (r *fakeRepo) DeleteExpiredPools(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for key, pool := range r.pools {
		if pool.ExpiresAt.Before(now) {
			delete(r.pools, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeRepo) InsertMatches(ctx context.Context, matches []*Match) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := map[string]bool{}
	for _, m := range r.matches {
		existing[m.UserID+"|"+m.MatchedUserID+"|"+m.MatchDate] = true
	}
	var inserted []*Match
	for _, m := range matches {
		key := m.UserID + "|" + m.MatchedUserID + "|" + m.MatchDate
		if existing[key] {
			continue
		}
		existing[key] = true
		m.ID = uuid.NewString()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		r.matches = append(r.matches, m)
		inserted = append(inserted, m)
	}
	return inserted, nil
}

func (r *fakeRepo) GetMatchesForDate(ctx context.Context, userID, date string) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Match
	for _, m := range r.matches {
		if m.UserID == userID && m.MatchDate == date {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountMatchesForDate(ctx context.Context, userID, date string) (int, error) {
	out, _ := r.GetMatchesForDate(ctx, userID, date)
	return len(out), nil
}

func (r *fakeRepo) GetFirstMatchDate(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	first := ""
	for _, m := range r.matches {
		if m.UserID != userID {
			continue
		}
		if first == "" || m.MatchDate < first {
			first = m.MatchDate
		}
	}
	return first, nil
}

func (r *fakeRepo) GetRecentlyShown(ctx context.Context, userID string, since time.Time) ([]SeenCandidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SeenCandidate
	for _, s := range r.seen[userID] {
		if !s.LastShown.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetPhotoKeys(ctx context.Context, userIDs []string) (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string][]string{}
	for _, id := range userIDs {
		if keys, ok := r.photoKeys[id]; ok {
			out[id] = keys
		}
	}
	return out, nil
}

// failingScorer fails for a chosen set of candidate IDs and delegates the
// rest to the real engine.
type failingScorer struct {
	inner  Scorer
	failOn map[string]bool
}

func (s *failingScorer) Score(ctx context.Context, user, candidate *Profile) (*ScoreResult, error) {
	if s.failOn[candidate.UserID] {
		return nil, errors.New("scoring backend unavailable")
	}
	return s.inner.Score(ctx, user, candidate)
}

// Test data helpers

func testProfile(id string, opts ...func(*Profile)) *Profile {
	p := &Profile{
		UserID:              id,
		DisplayName:         "User " + id,
		Age:                 30,
		Gender:              "female",
		Location:            "Stockholm",
		Bio:                 "Hej!",
		Interests:           []string{"hiking", "music"},
		InterestedIn:        "all",
		MinAge:              20,
		MaxAge:              40,
		OnboardingCompleted: true,
		SubscriptionTier:    "free",
		Archetype:           "INFJ",
		Category:            "DIPLOMAT",
		Scores:              DimensionScore{O: 60, C: 55, E: 50, A: 70, N: 40},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func withScores(s DimensionScore) func(*Profile) {
	return func(p *Profile) { p.Scores = s }
}

func withArchetype(a string) func(*Profile) {
	return func(p *Profile) { p.Archetype = a }
}

func withTier(tier string) func(*Profile) {
	return func(p *Profile) { p.SubscriptionTier = tier }
}

func withOnboardedAt(at time.Time) func(*Profile) {
	return func(p *Profile) { p.OnboardingCompletedAt = &at }
}

func candidatePool(n int) []*Profile {
	out := make([]*Profile, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("cand-%02d", i)
		out = append(out, testProfile(id, withScores(DimensionScore{
			O: float64(20 + i*3),
			C: float64(30 + i*2),
			E: float64(40 + i),
			A: float64(50 + i*2),
			N: float64(25 + i*3),
		})))
	}
	return out
}

// Wiring helpers

func testSeenCache(t *testing.T, repo Repository) (*SeenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSeenCache(client, repo, 72*time.Hour, zap.NewNop()), mr
}

func testClock(t *testing.T, instant string) *Clock {
	t.Helper()
	at, err := time.Parse(time.RFC3339, instant)
	if err != nil {
		t.Fatalf("bad test instant %q: %v", instant, err)
	}
	clock, err := NewClockAt("Europe/Stockholm", at)
	if err != nil {
		t.Fatalf("clock: %v", err)
	}
	return clock
}

func testBuilder(t *testing.T, repo *fakeRepo, clock *Clock) (*Builder, *SeenCache) {
	t.Helper()
	seen, _ := testSeenCache(t, repo)
	return NewBuilder(
		repo,
		NewScorer(),
		NewTemplateIcebreakers(),
		NewNoopPhotoResolver(),
		seen,
		clock,
		BuilderConfig{
			RequestedBatchSize: 10,
			SimilarRatio:       0.6,
			FreeTierLimit:      5,
			PoolTTL:            48 * time.Hour,
		},
		zap.NewNop(),
	), seen
}

func testService(t *testing.T, repo *fakeRepo, clock *Clock) Service {
	t.Helper()
	builder, seen := testBuilder(t, repo, clock)
	return NewService(repo, builder, seen, clock, 24*time.Hour, zap.NewNop())
}
