package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityScoreBounds(t *testing.T) {
	identical := DimensionScore{O: 50, C: 50, E: 50, A: 50, N: 50}
	assert.Equal(t, 100, calculateSimilarityScore(&identical, &identical))

	low := DimensionScore{O: 0, C: 0, E: 0, A: 0, N: 0}
	high := DimensionScore{O: 100, C: 100, E: 100, A: 100, N: 100}
	assert.Equal(t, 0, calculateSimilarityScore(&low, &high))

	close1 := DimensionScore{O: 60, C: 55, E: 50, A: 70, N: 40}
	close2 := DimensionScore{O: 65, C: 50, E: 55, A: 65, N: 45}
	// total diff 25 -> (500-25)/500*100 = 95
	assert.Equal(t, 95, calculateSimilarityScore(&close1, &close2))
}

func TestComplementaryScoreSweetSpot(t *testing.T) {
	// Same E and N (full energy points), 40-point spread on O, C, A
	// (sweet spot on all three): (50+50+40*3)/220*100 = 100.
	s1 := DimensionScore{O: 20, C: 20, E: 50, A: 20, N: 50}
	s2 := DimensionScore{O: 60, C: 60, E: 50, A: 60, N: 50}
	assert.Equal(t, 100, calculateComplementaryScore(&s1, &s2))

	// Identical vectors get energy points but only the floor on the
	// spread dimensions: (100 + 30)/220 -> 59.
	assert.Equal(t, 59, calculateComplementaryScore(&s1, &s1))

	// Moderate 20-point spread lands in the middle band (25 points each).
	s3 := DimensionScore{O: 40, C: 40, E: 50, A: 40, N: 50}
	// (50+50+25*3)/220*100 = 79.5... -> 80
	assert.Equal(t, 80, calculateComplementaryScore(&s1, &s3))
}

func TestArchetypeAlignment(t *testing.T) {
	assert.Equal(t, 95, calculateArchetypeAlignment("INFJ", "INFJ"))
	// INFJ and ENFP are both diplomats
	assert.Equal(t, 80, calculateArchetypeAlignment("INFJ", "ENFP"))
	// INFJ (diplomat) vs ISTJ (builder)
	assert.Equal(t, 60, calculateArchetypeAlignment("INFJ", "ISTJ"))
	assert.Equal(t, 50, calculateArchetypeAlignment("", "INFJ"))
	assert.Equal(t, 50, calculateArchetypeAlignment("INFJ", ""))
	// Unrecognized codes on both sides are distinct categories
	assert.Equal(t, 60, calculateArchetypeAlignment("XXXX", "YYYY"))
}

func TestInterestOverlap(t *testing.T) {
	assert.Equal(t, 100, calculateInterestOverlap(
		[]string{"hiking", "music"},
		[]string{"Hiking", "Music", "cooking"},
	))
	assert.Equal(t, 50, calculateInterestOverlap(nil, []string{"hiking"}))
	assert.Equal(t, 50, calculateInterestOverlap([]string{"hiking"}, nil))
	assert.Equal(t, 0, calculateInterestOverlap(
		[]string{"hiking"},
		[]string{"gaming", "cooking"},
	))
	// One of two in the smaller set
	assert.Equal(t, 50, calculateInterestOverlap(
		[]string{"hiking", "music"},
		[]string{"music", "gaming", "cooking"},
	))
}

func TestAnxietyReductionCappedAt100(t *testing.T) {
	s1 := DimensionScore{E: 100, A: 50}
	s2 := DimensionScore{E: 100, A: 50}
	// avg energy 100 + (100-0)/4 = 125 -> capped
	assert.Equal(t, 100, calculateAnxietyReduction(&s1, &s2))

	s3 := DimensionScore{E: 40, A: 60}
	s4 := DimensionScore{E: 60, A: 80}
	// avg 50 + (100-20)/4 = 70
	assert.Equal(t, 70, calculateAnxietyReduction(&s3, &s4))
}

func TestScoreBreakdownSumsToComposite(t *testing.T) {
	scorer := NewScorer()
	user := testProfile("user-1")
	candidates := candidatePool(20)

	for _, c := range candidates {
		result, err := scorer.Score(context.Background(), user, c)
		require.NoError(t, err)

		assert.Equal(t, result.Composite, result.Breakdown.Sum(),
			"composite must equal the sum of its breakdown for candidate %s", c.UserID)
		assert.GreaterOrEqual(t, result.Composite, 0)
		assert.LessOrEqual(t, result.Composite, 100)
	}
}

func TestScoreRejectsOutOfRangeDimensions(t *testing.T) {
	scorer := NewScorer()
	user := testProfile("user-1")
	bad := testProfile("cand-1", withScores(DimensionScore{O: 120, C: 50, E: 50, A: 50, N: 50}))

	_, err := scorer.Score(context.Background(), user, bad)
	assert.Error(t, err)

	badUser := testProfile("user-2", withScores(DimensionScore{O: -5, C: 50, E: 50, A: 50, N: 50}))
	_, err = scorer.Score(context.Background(), badUser, testProfile("cand-2"))
	assert.Error(t, err)
}

func TestCommonInterestsPreservesCandidateCasing(t *testing.T) {
	common := commonInterests(
		[]string{"hiking", "MUSIC"},
		[]string{"Music", "Hiking", "cooking"},
	)
	assert.Equal(t, []string{"Music", "Hiking"}, common)

	assert.Empty(t, commonInterests([]string{"a"}, []string{"b"}))
}
