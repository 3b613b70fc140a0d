package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchReason(t *testing.T) {
	assert.Equal(t, "60% liknande värderingar", matchReason(MatchTypeSimilar))
	assert.Equal(t, "40% kompletterande energi", matchReason(MatchTypeComplementary))
}

func TestBuildPersonalityInsightSimilar(t *testing.T) {
	insight := buildPersonalityInsight("INFJ", "ENFP", "Anna", MatchTypeSimilar)
	assert.Contains(t, insight, "Anna")
	assert.Contains(t, insight, "Diplomaten")
	assert.Contains(t, insight, "likhetsmatch")
}

func TestBuildPersonalityInsightComplementary(t *testing.T) {
	insight := buildPersonalityInsight("INFJ", "ISTP", "Erik", MatchTypeComplementary)
	assert.Contains(t, insight, "Erik")
	assert.Contains(t, insight, "Diplomaten")
	assert.Contains(t, insight, "Upptäckaren")
	assert.Contains(t, insight, "motsatsmatch")
}

func TestBuildPersonalityInsightUnknownArchetype(t *testing.T) {
	similar := buildPersonalityInsight("XXXX", "YYYY", "Kim", MatchTypeSimilar)
	assert.Contains(t, similar, "likhetsmatch")

	opposite := buildPersonalityInsight("XXXX", "YYYY", "Kim", MatchTypeComplementary)
	assert.Contains(t, opposite, "motsatsmatch")
}

func TestBuildDimensionDetailThresholds(t *testing.T) {
	result := &ScoreResult{
		SimilarityScore: 80, // high
		ArchetypeScore:  60, // medium
		InterestScore:   20, // low
	}

	detail := buildDimensionDetail(result)
	assert.Len(t, detail, 3)
	assert.Equal(t, "high", detail[0].Alignment)
	assert.Equal(t, "medium", detail[1].Alignment)
	assert.Equal(t, "low", detail[2].Alignment)
	for _, row := range detail {
		assert.NotEmpty(t, row.Description)
	}
}
