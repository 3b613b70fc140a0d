package matching

import (
	"time"
)

// JourneyPhase is derived on every read from onboarding state, today's pool
// and the user's match history. It is never stored.
type JourneyPhase string

const (
	PhaseWaiting    JourneyPhase = "WAITING"
	PhaseReady      JourneyPhase = "READY"
	PhaseFirstMatch JourneyPhase = "FIRST_MATCH"
)

// Match classification. Mutually exclusive, not a spectrum.
const (
	MatchTypeSimilar       = "similar"
	MatchTypeComplementary = "complementary"
)

// DimensionScore is the five-trait personality vector produced by the
// personality test. Each trait is 0-100. Read-only for the pool builder.
type DimensionScore struct {
	O float64 `json:"O"` // Openness
	C float64 `json:"C"` // Conscientiousness
	E float64 `json:"E"` // Extraversion
	A float64 `json:"A"` // Agreeableness
	N float64 `json:"N"` // Neuroticism
}

// DimensionScoreBreakdown carries the weighted component points behind a
// composite score. The three fields always sum to the composite.
type DimensionScoreBreakdown struct {
	PersonalitySimilarity int `json:"personality_similarity"` // 0-40 points (40% weight)
	ArchetypeAlignment    int `json:"archetype_alignment"`    // 0-30 points (30% weight)
	InterestOverlap       int `json:"interest_overlap"`       // 0-30 points (30% weight)
}

// Sum returns the composite the breakdown accounts for.
func (b DimensionScoreBreakdown) Sum() int {
	return b.PersonalitySimilarity + b.ArchetypeAlignment + b.InterestOverlap
}

// AgeIntervalMatch records the dealbreaker check against the requesting
// user's configured age window. Stored for display and audit; the hard
// filter already ran during candidate selection.
type AgeIntervalMatch struct {
	UserMin      int  `json:"user_min"`
	UserMax      int  `json:"user_max"`
	CandidateAge int  `json:"candidate_age"`
	IsMatch      bool `json:"is_match"`
}

// DimensionInsight is one human-readable row of the score explanation
// shown on the match card.
type DimensionInsight struct {
	Dimension   string `json:"dimension"`
	Score       int    `json:"score"`
	Alignment   string `json:"alignment"` // high | medium | low
	Description string `json:"description"`
}

// CandidateInPool is one scored candidate considered for delivery to a
// specific user on a specific day. Display fields are captured at
// generation time; they are a snapshot, not a live join, and may go stale
// if the candidate later edits their profile.
type CandidateInPool struct {
	UserID             string                  `json:"user_id"`
	MatchType          string                  `json:"match_type"`
	CompositeScore     int                     `json:"composite_score"` // 0-100, the ranking key
	SimilarityScore    int                     `json:"similarity_score"`
	ComplementaryScore int                     `json:"complementary_score"`
	DimensionScores    DimensionScoreBreakdown `json:"dimension_scores"`

	// Profile snapshot for display/delivery
	DisplayName string   `json:"display_name"`
	Archetype   string   `json:"archetype"`
	Interests   []string `json:"interests"`
	Age         int      `json:"age"`
	Location    string   `json:"location"`
	PhotoURLs   []string `json:"photo_urls"`
	BioPreview  string   `json:"bio_preview"`

	AgeIntervalMatch AgeIntervalMatch `json:"age_interval_match"`

	// Exactly 3 pre-generated conversation starters
	AIIcebreakers []string `json:"ai_icebreakers"`

	ArchetypeScore     int                `json:"archetype_score"`
	AnxietyScore       int                `json:"anxiety_reduction_score"`
	DimensionDetail    []DimensionInsight `json:"dimension_breakdown"`
	PersonalityInsight string             `json:"personality_insight"`
	CommonInterests    []string           `json:"common_interests"`
}

// GenerationMeta is the audit record of how a batch was built.
type GenerationMeta struct {
	TotalEligible           int  `json:"total_eligible"`
	RequestedBatchSize      int  `json:"requested_batch_size"`
	ActualBatchSize         int  `json:"actual_batch_size"` // capped to total_eligible
	SimilarCount            int  `json:"similar_count"`
	ComplementaryCount      int  `json:"complementary_count"`
	RepeatPreventionApplied bool `json:"repeat_prevention_applied"`
	FreshCandidatesCount    int  `json:"fresh_candidates_count"`
	FallbackUsed            bool `json:"fallback_used"` // true iff fresh_candidates_count < 1
}

// DeliveryRules caps how much of the pool reaches the user today.
type DeliveryRules struct {
	IsPlus              bool `json:"is_plus"`
	UserLimit           *int `json:"user_limit"` // nil for plus (unlimited)
	ActualDeliveryCount int  `json:"actual_delivery_count"`
}

// PoolData is the JSON document persisted in user_daily_match_pools.pool_data.
type PoolData struct {
	Candidates     []CandidateInPool `json:"candidates"`
	GenerationMeta GenerationMeta    `json:"generation_meta"`
	DeliveryRules  DeliveryRules     `json:"delivery_rules"`
}

// UserDailyMatchPool is one user's scored candidate set for one calendar
// day in the match timezone. Exactly one row exists per (user_id, date);
// the row is immutable after creation and removed by the cleanup job
// after ExpiresAt.
type UserDailyMatchPool struct {
	UserID    string    `json:"user_id" db:"user_id"`
	PoolDate  string    `json:"date" db:"pool_date"` // YYYY-MM-DD, match timezone
	BatchID   string    `json:"batch_id" db:"batch_id"`
	PoolData  PoolData  `json:"pool_data"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Match is a delivered, user-visible match row promoted from a pool
// candidate. Like/pass actions mutate it elsewhere; this package creates
// and reads it.
type Match struct {
	ID                 string                  `json:"id" db:"id"`
	UserID             string                  `json:"user_id" db:"user_id"`
	MatchedUserID      string                  `json:"matched_user_id" db:"matched_user_id"`
	MatchType          string                  `json:"match_type" db:"match_type"`
	MatchScore         int                     `json:"match_score" db:"match_score"`
	MatchDate          string                  `json:"match_date" db:"match_date"`
	Status             string                  `json:"status" db:"status"`
	DimensionScores    DimensionScoreBreakdown `json:"dimension_scores"`
	DimensionDetail    []DimensionInsight      `json:"dimension_breakdown"`
	ArchetypeScore     int                     `json:"archetype_score" db:"archetype_score"`
	AnxietyScore       int                     `json:"anxiety_reduction_score" db:"anxiety_reduction_score"`
	Icebreakers        []string                `json:"icebreakers"`
	PersonalityInsight string                  `json:"personality_insight" db:"personality_insight"`
	MatchReason        string                  `json:"match_reason" db:"match_reason"`
	MatchDisplayName   string                  `json:"match_display_name" db:"match_display_name"`
	MatchAge           int                     `json:"match_age" db:"match_age"`
	MatchArchetype     string                  `json:"match_archetype" db:"match_archetype"`
	PhotoURLs          []string                `json:"photo_urls"`
	BioPreview         string                  `json:"bio_preview" db:"bio_preview"`
	CommonInterests    []string                `json:"common_interests"`
	IsFirstDayMatch    bool                    `json:"is_first_day_match" db:"is_first_day_match"`
	SpecialEffects     []string                `json:"special_effects,omitempty"`
	ExpiresAt          *time.Time              `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt          time.Time               `json:"created_at" db:"created_at"`
}

// Profile is the matching view of a user: preferences, tier, onboarding
// state and personality results.
type Profile struct {
	UserID                string          `json:"user_id" db:"user_id"`
	DisplayName           string          `json:"display_name" db:"display_name"`
	Age                   int             `json:"age" db:"age"`
	Gender                string          `json:"gender" db:"gender"`
	Location              string          `json:"location" db:"location"`
	Bio                   string          `json:"bio" db:"bio"`
	Interests             []string        `json:"interests"`
	InterestedIn          string          `json:"interested_in" db:"interested_in"`
	MinAge                int             `json:"min_age" db:"min_age"`
	MaxAge                int             `json:"max_age" db:"max_age"`
	OnboardingCompleted   bool            `json:"onboarding_completed" db:"onboarding_completed"`
	OnboardingCompletedAt *time.Time      `json:"onboarding_completed_at" db:"onboarding_completed_at"`
	SubscriptionTier      string          `json:"subscription_tier" db:"subscription_tier"`
	Archetype             string          `json:"archetype" db:"archetype"`
	Category              string          `json:"category" db:"category"`
	Scores                DimensionScore  `json:"scores"`
}

// IsPlus reports whether the user is on a paid tier.
func (p *Profile) IsPlus() bool {
	return p.SubscriptionTier == "plus" || p.SubscriptionTier == "premium"
}

// SeenCandidate is a previously-shown candidate with the time it was last
// delivered, used for repeat prevention and least-recently-shown fallback.
type SeenCandidate struct {
	UserID    string    `db:"matched_user_id"`
	LastShown time.Time `db:"last_shown"`
}
