package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

type Repository interface {
	// Profiles
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetEligibleCandidates(ctx context.Context, user *Profile) ([]*Profile, error)
	GetEligibleUserIDs(ctx context.Context) ([]string, error)

	// Pools
	CreatePool(ctx context.Context, pool *UserDailyMatchPool) (bool, error)
	GetPool(ctx context.Context, userID, date string) (*UserDailyMatchPool, error)
	DeleteExpiredPools(ctx context.Context, now time.Time) (int64, error)

	// Matches
	InsertMatches(ctx context.Context, matches []*Match) ([]*Match, error)
	GetMatchesForDate(ctx context.Context, userID, date string) ([]*Match, error)
	CountMatchesForDate(ctx context.Context, userID, date string) (int, error)
	GetFirstMatchDate(ctx context.Context, userID string) (string, error)
	GetRecentlyShown(ctx context.Context, userID string, since time.Time) ([]SeenCandidate, error)

	// Photos
	GetPhotoKeys(ctx context.Context, userIDs []string) (map[string][]string, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// Profile methods

const profileColumns = `
	p.user_id, p.display_name,
	COALESCE(EXTRACT(YEAR FROM AGE(p.date_of_birth)), 0)::int AS age,
	COALESCE(p.gender, '') AS gender,
	COALESCE(p.location, '') AS location,
	COALESCE(p.bio, '') AS bio,
	COALESCE(p.interests, '{}') AS interests,
	COALESCE(p.interested_in, 'all') AS interested_in,
	COALESCE(p.min_age, 18) AS min_age,
	COALESCE(p.max_age, 100) AS max_age,
	p.onboarding_completed, p.onboarding_completed_at,
	COALESCE(p.subscription_tier, 'free') AS subscription_tier,
	COALESCE(pr.archetype, '') AS archetype,
	COALESCE(pr.category, '') AS category,
	pr.scores
`

func (r *postgresRepository) scanProfile(row sqlx.ColScanner) (*Profile, error) {
	var p Profile
	var interests pq.StringArray
	var scoresJSON []byte

	err := row.Scan(
		&p.UserID, &p.DisplayName, &p.Age, &p.Gender, &p.Location, &p.Bio,
		&interests, &p.InterestedIn, &p.MinAge, &p.MaxAge,
		&p.OnboardingCompleted, &p.OnboardingCompletedAt, &p.SubscriptionTier,
		&p.Archetype, &p.Category, &scoresJSON,
	)
	if err != nil {
		return nil, err
	}

	p.Interests = []string(interests)
	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &p.Scores); err != nil {
			return nil, fmt.Errorf("decode personality scores for %s: %w", p.UserID, err)
		}
	}
	return &p, nil
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		LEFT JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.user_id = $1
	`

	row := r.db.QueryRowxContext(ctx, query, userID)
	profile, err := r.scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

// GetEligibleCandidates returns the candidate universe passing all hard
// dealbreakers for the given user: completed onboarding, active account,
// a personality result, the user's age window, the user's gender
// preference, and no block in either direction.
func (r *postgresRepository) GetEligibleCandidates(ctx context.Context, user *Profile) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.user_id <> $1
		  AND p.onboarding_completed = TRUE
		  AND p.is_active = TRUE
		  AND EXTRACT(YEAR FROM AGE(p.date_of_birth)) BETWEEN $2 AND $3
		  AND (cardinality($4::text[]) = 0 OR LOWER(COALESCE(p.gender, '')) = ANY($4))
		  AND NOT EXISTS (
		      SELECT 1 FROM blocks b
		      WHERE (b.user_id = $1 AND b.blocked_user_id = p.user_id)
		         OR (b.user_id = p.user_id AND b.blocked_user_id = $1)
		  )
	`

	rows, err := r.db.QueryxContext(ctx, query,
		user.UserID, user.MinAge, user.MaxAge, pq.Array(allowedGenders(user.InterestedIn)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*Profile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, p)
	}
	return candidates, rows.Err()
}

// allowedGenders expands an interested_in preference into gender values.
// An empty slice means no gender filter.
func allowedGenders(interestedIn string) []string {
	switch interestedIn {
	case "men":
		return []string{"male", "man"}
	case "women":
		return []string{"female", "woman"}
	default:
		return []string{}
	}
}

func (r *postgresRepository) GetEligibleUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `
		SELECT p.user_id
		FROM profiles p
		JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.onboarding_completed = TRUE AND p.is_active = TRUE
		ORDER BY p.user_id
	`
	err := r.db.SelectContext(ctx, &ids, query)
	return ids, err
}

// Pool methods

// CreatePool persists a finished pool document in a single statement.
// The uniqueness constraint on (user_id, pool_date) is the sole
// concurrency control: the first writer wins and later writers get
// created=false without an error.
func (r *postgresRepository) CreatePool(ctx context.Context, pool *UserDailyMatchPool) (bool, error) {
	poolJSON, err := json.Marshal(pool.PoolData)
	if err != nil {
		return false, fmt.Errorf("encode pool data: %w", err)
	}

	query := `
		INSERT INTO user_daily_match_pools (user_id, pool_date, batch_id, pool_data, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, pool_date) DO NOTHING
		RETURNING created_at
	`

	err = r.db.QueryRowxContext(
		ctx, query,
		pool.UserID, pool.PoolDate, pool.BatchID, poolJSON, pool.ExpiresAt,
	).Scan(&pool.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresRepository) GetPool(ctx context.Context, userID, date string) (*UserDailyMatchPool, error) {
	var pool UserDailyMatchPool
	var poolJSON []byte

	query := `
		SELECT user_id, pool_date, batch_id, pool_data, expires_at, created_at
		FROM user_daily_match_pools
		WHERE user_id = $1 AND pool_date = $2
	`

	row := r.db.QueryRowxContext(ctx, query, userID, date)
	err := row.Scan(&pool.UserID, &pool.PoolDate, &pool.BatchID, &poolJSON, &pool.ExpiresAt, &pool.CreatedAt)
	if err == sql.ErrNoRows {
		// No pool yet is a valid zero-state, not an error
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(poolJSON, &pool.PoolData); err != nil {
		return nil, fmt.Errorf("decode pool data for %s/%s: %w", userID, date, err)
	}
	return &pool, nil
}

func (r *postgresRepository) DeleteExpiredPools(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_daily_match_pools WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Match methods

// InsertMatches promotes pool candidates into delivered match rows inside
// one transaction. Rows that already exist for (user_id, matched_user_id,
// match_date) are skipped, which keeps concurrent delivery calls from
// double-counting. Returns the rows actually inserted.
func (r *postgresRepository) InsertMatches(ctx context.Context, matches []*Match) ([]*Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO matches (
			user_id, matched_user_id, match_type, match_score, match_date, status,
			dimension_scores, dimension_breakdown, archetype_score, anxiety_reduction_score,
			icebreakers, personality_insight, match_reason,
			match_display_name, match_age, match_archetype,
			photo_urls, bio_preview, common_interests,
			is_first_day_match, special_effects, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (user_id, matched_user_id, match_date) DO NOTHING
		RETURNING id, created_at
	`

	var inserted []*Match
	for _, m := range matches {
		scoresJSON, err := json.Marshal(m.DimensionScores)
		if err != nil {
			return nil, fmt.Errorf("encode dimension scores: %w", err)
		}
		detailJSON, err := json.Marshal(m.DimensionDetail)
		if err != nil {
			return nil, fmt.Errorf("encode dimension breakdown: %w", err)
		}

		err = tx.QueryRowxContext(
			ctx, query,
			m.UserID, m.MatchedUserID, m.MatchType, m.MatchScore, m.MatchDate, m.Status,
			scoresJSON, detailJSON, m.ArchetypeScore, m.AnxietyScore,
			pq.Array(m.Icebreakers), m.PersonalityInsight, m.MatchReason,
			m.MatchDisplayName, m.MatchAge, m.MatchArchetype,
			pq.Array(m.PhotoURLs), m.BioPreview, pq.Array(m.CommonInterests),
			m.IsFirstDayMatch, pq.Array(m.SpecialEffects), m.ExpiresAt,
		).Scan(&m.ID, &m.CreatedAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return inserted, nil
}

const matchColumns = `
	id, user_id, matched_user_id, match_type, match_score, match_date, status,
	dimension_scores, dimension_breakdown, archetype_score, anxiety_reduction_score,
	icebreakers, personality_insight, match_reason,
	match_display_name, match_age, match_archetype,
	photo_urls, bio_preview, common_interests,
	is_first_day_match, special_effects, expires_at, created_at
`

func scanMatch(row sqlx.ColScanner) (*Match, error) {
	var m Match
	var scoresJSON, detailJSON []byte
	var icebreakers, photoURLs, common, effects pq.StringArray

	err := row.Scan(
		&m.ID, &m.UserID, &m.MatchedUserID, &m.MatchType, &m.MatchScore, &m.MatchDate, &m.Status,
		&scoresJSON, &detailJSON, &m.ArchetypeScore, &m.AnxietyScore,
		&icebreakers, &m.PersonalityInsight, &m.MatchReason,
		&m.MatchDisplayName, &m.MatchAge, &m.MatchArchetype,
		&photoURLs, &m.BioPreview, &common,
		&m.IsFirstDayMatch, &effects, &m.ExpiresAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(scoresJSON) > 0 {
		if err := json.Unmarshal(scoresJSON, &m.DimensionScores); err != nil {
			return nil, fmt.Errorf("decode dimension scores for match %s: %w", m.ID, err)
		}
	}
	if len(detailJSON) > 0 {
		if err := json.Unmarshal(detailJSON, &m.DimensionDetail); err != nil {
			return nil, fmt.Errorf("decode dimension breakdown for match %s: %w", m.ID, err)
		}
	}
	m.Icebreakers = []string(icebreakers)
	m.PhotoURLs = []string(photoURLs)
	m.CommonInterests = []string(common)
	m.SpecialEffects = []string(effects)
	return &m, nil
}

func (r *postgresRepository) GetMatchesForDate(ctx context.Context, userID, date string) ([]*Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE user_id = $1 AND match_date = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresRepository) CountMatchesForDate(ctx context.Context, userID, date string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE user_id = $1 AND match_date = $2`
	err := r.db.GetContext(ctx, &count, query, userID, date)
	return count, err
}

// GetFirstMatchDate returns the match_date of the chronologically earliest
// match ever recorded for the user, or "" when none exist.
func (r *postgresRepository) GetFirstMatchDate(ctx context.Context, userID string) (string, error) {
	var date string
	query := `
		SELECT match_date FROM matches
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &date, query, userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return date, err
}

func (r *postgresRepository) GetRecentlyShown(ctx context.Context, userID string, since time.Time) ([]SeenCandidate, error) {
	query := `
		SELECT matched_user_id, MAX(created_at) AS last_shown
		FROM matches
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY matched_user_id
	`

	rows, err := r.db.QueryxContext(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seen []SeenCandidate
	for rows.Next() {
		var s SeenCandidate
		if err := rows.Scan(&s.UserID, &s.LastShown); err != nil {
			return nil, err
		}
		seen = append(seen, s)
	}
	return seen, rows.Err()
}

// Photo methods

func (r *postgresRepository) GetPhotoKeys(ctx context.Context, userIDs []string) (map[string][]string, error) {
	keys := make(map[string][]string)
	if len(userIDs) == 0 {
		return keys, nil
	}

	query := `
		SELECT user_id, storage_path
		FROM profile_photos
		WHERE user_id = ANY($1)
		ORDER BY user_id, display_order ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID, path string
		if err := rows.Scan(&userID, &path); err != nil {
			return nil, err
		}
		keys[userID] = append(keys[userID], path)
	}
	return keys, rows.Err()
}
