package matching

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Scorer produces the composite score and component breakdown for one
// user/candidate pair. The composite is 0-100 and the three breakdown
// components always sum to it. Implementations may call out to an external
// scoring service; an error excludes the candidate from the batch, it
// never aborts the batch.
type Scorer interface {
	Score(ctx context.Context, user, candidate *Profile) (*ScoreResult, error)
}

// ScoreResult is the full scoring output for one candidate.
type ScoreResult struct {
	Composite          int
	Breakdown          DimensionScoreBreakdown
	SimilarityScore    int
	ComplementaryScore int
	ArchetypeScore     int
	InterestScore      int
	AnxietyScore       int
}

// Fixed weights of the 100-point composite scale.
const (
	weightPersonality = 0.4
	weightArchetype   = 0.3
	weightInterests   = 0.3
)

type compositeEngine struct{}

// NewScorer returns the default scoring engine.
func NewScorer() Scorer {
	return &compositeEngine{}
}

func (e *compositeEngine) Score(ctx context.Context, user, candidate *Profile) (*ScoreResult, error) {
	if err := validateScores(&user.Scores); err != nil {
		return nil, fmt.Errorf("user %s: %w", user.UserID, err)
	}
	if err := validateScores(&candidate.Scores); err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate.UserID, err)
	}

	personality := calculateSimilarityScore(&user.Scores, &candidate.Scores)
	archetype := calculateArchetypeAlignment(user.Archetype, candidate.Archetype)
	interests := calculateInterestOverlap(user.Interests, candidate.Interests)

	// Weighted points are rounded per component; the composite is their
	// exact sum so the breakdown always accounts for it.
	breakdown := DimensionScoreBreakdown{
		PersonalitySimilarity: roundf(float64(personality) * weightPersonality),
		ArchetypeAlignment:    roundf(float64(archetype) * weightArchetype),
		InterestOverlap:       roundf(float64(interests) * weightInterests),
	}

	return &ScoreResult{
		Composite:          breakdown.Sum(),
		Breakdown:          breakdown,
		SimilarityScore:    personality,
		ComplementaryScore: calculateComplementaryScore(&user.Scores, &candidate.Scores),
		ArchetypeScore:     archetype,
		InterestScore:      interests,
		AnxietyScore:       calculateAnxietyReduction(&user.Scores, &candidate.Scores),
	}, nil
}

func validateScores(s *DimensionScore) error {
	for _, v := range []float64{s.O, s.C, s.E, s.A, s.N} {
		if v < 0 || v > 100 {
			return fmt.Errorf("dimension score %v out of range [0,100]", v)
		}
	}
	return nil
}

// calculateSimilarityScore maps the summed per-trait distance onto 0-100.
// Identical vectors score 100, maximally distant vectors score 0.
func calculateSimilarityScore(s1, s2 *DimensionScore) int {
	totalDiff := math.Abs(s1.O-s2.O) +
		math.Abs(s1.C-s2.C) +
		math.Abs(s1.E-s2.E) +
		math.Abs(s1.A-s2.A) +
		math.Abs(s1.N-s2.N)
	return roundf((500 - totalDiff) / 500 * 100)
}

// calculateComplementaryScore rewards closeness on social energy (E) and
// emotional stability (N) but a moderate difference on O, C and A. The
// 25-55 point spread is the sweet spot where partners differ enough to
// complement without clashing.
func calculateComplementaryScore(s1, s2 *DimensionScore) int {
	score := 0.0

	for _, pair := range [][2]float64{{s1.E, s2.E}, {s1.N, s2.N}} {
		score += (100 - math.Abs(pair[0]-pair[1])) / 2
	}

	for _, pair := range [][2]float64{{s1.O, s2.O}, {s1.C, s2.C}, {s1.A, s2.A}} {
		diff := math.Abs(pair[0] - pair[1])
		switch {
		case diff >= 25 && diff <= 55:
			score += 40
		case diff >= 15 && diff <= 65:
			score += 25
		default:
			score += 10
		}
	}

	return roundf(score / 220 * 100)
}

// calculateArchetypeAlignment scores how two archetypes relate: identical
// archetypes 95, same category 80, different categories 60, unknown 50.
func calculateArchetypeAlignment(a1, a2 string) int {
	if a1 == "" || a2 == "" {
		return 50
	}
	if a1 == a2 {
		return 95
	}
	c1 := archetypeCategory[a1]
	c2 := archetypeCategory[a2]
	if c1 != "" && c1 == c2 {
		return 80
	}
	return 60
}

// calculateInterestOverlap measures shared interests against the smaller
// interest set. Unknown interests on either side score a neutral 50.
func calculateInterestOverlap(i1, i2 []string) int {
	if len(i1) == 0 || len(i2) == 0 {
		return 50
	}

	set1 := make(map[string]bool, len(i1))
	for _, x := range i1 {
		set1[strings.ToLower(x)] = true
	}
	set2 := make(map[string]bool, len(i2))
	for _, x := range i2 {
		set2[strings.ToLower(x)] = true
	}

	overlap := 0
	for x := range set1 {
		if set2[x] {
			overlap++
		}
	}

	maxPossible := len(set1)
	if len(set2) < maxPossible {
		maxPossible = len(set2)
	}
	if maxPossible == 0 {
		return 50
	}
	return roundf(float64(overlap) / float64(maxPossible) * 100)
}

// calculateAnxietyReduction estimates how easy the first conversation will
// feel: shared social energy plus agreeableness closeness.
func calculateAnxietyReduction(s1, s2 *DimensionScore) int {
	avgEnergy := (s1.E + s2.E) / 2
	agreeDiff := math.Abs(s1.A - s2.A)
	v := roundf(avgEnergy + (100-agreeDiff)/4)
	if v > 100 {
		return 100
	}
	return v
}

// commonInterests returns the case-insensitive intersection, preserving
// the candidate's casing and ordering.
func commonInterests(userInterests, candidateInterests []string) []string {
	mine := make(map[string]bool, len(userInterests))
	for _, x := range userInterests {
		mine[strings.ToLower(x)] = true
	}
	common := []string{}
	for _, x := range candidateInterests {
		if mine[strings.ToLower(x)] {
			common = append(common, x)
		}
	}
	return common
}

func roundf(v float64) int {
	return int(math.Round(v))
}
