// internal/matching/dto.go
package matching

// DTOs for API requests/responses

type MatchDailyRequestDTO struct {
	UserID   string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	PageSize int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=100"`
	Cursor   string `json:"cursor,omitempty"`
}

type MatchDailyResponse struct {
	Date                string            `json:"date"` // YYYY-MM-DD, match timezone
	BatchSize           int               `json:"batch_size"`
	UserLimit           *int              `json:"user_limit"` // nil means unlimited
	Matches             []MatchDailyMatch `json:"matches"`
	SpecialEventMessage *string           `json:"special_event_message,omitempty"`
	NextCursor          *string           `json:"next_cursor,omitempty"`
	Message             string            `json:"message,omitempty"`
}

type MatchDailyMatch struct {
	MatchID                  string             `json:"match_id"`
	ProfileID                string             `json:"profile_id"`
	DisplayName              string             `json:"display_name"`
	Age                      int                `json:"age"`
	Archetype                string             `json:"archetype"`
	CompatibilityPercentage  int                `json:"compatibility_percentage"`
	DimensionScoreBreakdown  []DimensionInsight `json:"dimension_score_breakdown"`
	ArchetypeAlignmentScore  int                `json:"archetype_alignment_score"`
	AnxietyReductionScore    int                `json:"conversation_anxiety_reduction_score"`
	AIIcebreakers            []string           `json:"ai_icebreakers"`
	PersonalityInsight       string             `json:"personality_insight"`
	MatchReason              string             `json:"match_reason"`
	IsFirstDayMatch          bool               `json:"is_first_day_match"`
	ExpiresAt                *string            `json:"expires_at"`
	SpecialEffects           []string           `json:"special_effects,omitempty"`
	PhotoURLs                []string           `json:"photo_urls"`
	BioPreview               string             `json:"bio_preview"`
	CommonInterests          []string           `json:"common_interests"`
}

type JourneyStatusResponse struct {
	JourneyPhase   JourneyPhase `json:"journey_phase"`
	TimeRemaining  string       `json:"time_remaining"` // "Xh Ym" until next reset
	DeliveredToday int          `json:"delivered_today"`
	NextResetTime  string       `json:"next_reset_time"` // ISO-8601
}

// WaitingResponse is returned by the delivery endpoint during the
// post-onboarding holdoff.
type WaitingResponse struct {
	JourneyPhase       JourneyPhase `json:"journey_phase"`
	Message            string       `json:"message"`
	TimeRemaining      string       `json:"time_remaining"`
	NextMatchAvailable string       `json:"next_match_available"`
}

// BatchReport summarizes one run of the daily pool generation job.
type BatchReport struct {
	Date           string `json:"date"`
	UsersProcessed int    `json:"users_processed"`
	UsersSkipped   int    `json:"users_skipped"`
	TotalEligible  int    `json:"total_eligible"`
	BatchSize      int    `json:"batch_size"`
}
