// internal/matching/insight.go
// Swedish-language explanation texts shown on the match card: why the two
// users were paired and how each scored dimension should be read.

package matching

import "fmt"

// archetypeCategory maps the sixteen archetype codes onto the four
// personality categories used in match explanations.
var archetypeCategory = map[string]string{
	"INFJ": "DIPLOMAT", "INFP": "DIPLOMAT", "ENFJ": "DIPLOMAT", "ENFP": "DIPLOMAT",
	"INTJ": "STRATEGER", "INTP": "STRATEGER", "ENTJ": "STRATEGER", "ENTP": "STRATEGER",
	"ISTJ": "BYGGARE", "ISFJ": "BYGGARE", "ESTJ": "BYGGARE", "ESFJ": "BYGGARE",
	"ISTP": "UPPTÄCKARE", "ISFP": "UPPTÄCKARE", "ESTP": "UPPTÄCKARE", "ESFP": "UPPTÄCKARE",
}

var categoryTitles = map[string]string{
	"DIPLOMAT":   "Diplomaten",
	"STRATEGER":  "Strategen",
	"BYGGARE":    "Byggaren",
	"UPPTÄCKARE": "Upptäckaren",
}

var categoryShort = map[string]string{
	"DIPLOMAT":   "empatisk och värdesätter djupa relationer och harmoni",
	"STRATEGER":  "analytisk och målinriktad med förmåga att se helheten",
	"BYGGARE":    "praktisk och pålitlig med stark känsla för ansvar och lojalitet",
	"UPPTÄCKARE": "spontan och äventyrlig med passion för nya upplevelser",
}

var complementaryInsight = map[string]map[string]string{
	"DIPLOMAT": {
		"STRATEGER":  "Din empati och värme kan mjuka upp deras analytiska sida, medan deras tydlighet kan hjälpa dig att sätta gränser.",
		"BYGGARE":    "Din känslighet för relationer och deras stabilitet skapar en trygg bas – ni kan ge varandra både djup och tillförlitlighet.",
		"UPPTÄCKARE": "Du bidrar med djup och närhet medan de bidrar med energi och nya perspektiv – tillsammans får ni både ro och äventyr.",
	},
	"STRATEGER": {
		"DIPLOMAT":   "Din analytiska förmåga och deras empati kompletterar varandra – ni kan ge varandra både struktur och känslomässig förståelse.",
		"BYGGARE":    "Ni kombinerar vision med praktik: du ser helheten medan de gör saker verklighet – ett starkt team för att nå mål.",
		"UPPTÄCKARE": "Din strategiska tänkande och deras spontanitet kan balansera varandra – planering möter äventyr.",
	},
	"BYGGARE": {
		"DIPLOMAT":   "Din stabilitet ger trygghet medan de ger relationen djup och värme – ni skapar en balans mellan ordning och känsla.",
		"STRATEGER":  "Du gör saker till verklighet medan de ser helheten – tillsammans kan ni nå långsiktiga mål med förankring i vardagen.",
		"UPPTÄCKARE": "Din pålitlighet och deras spontanitet – du ger grunden, de ger glädjen och de nya impulserna.",
	},
	"UPPTÄCKARE": {
		"DIPLOMAT":   "Din energi och deras djup – ni kan ge varandra både äventyr och meningsfulla samtal.",
		"STRATEGER":  "Din spontanitet och deras strategiska sinne – ni kan inspirera varandra att både planera och leva i nuet.",
		"BYGGARE":    "Du bidrar med fart och nyfikethet medan de ger stabilitet och trygghet – en balans mellan äventyr och hem.",
	},
}

// matchReason is the short label explaining which bucket produced a match.
func matchReason(matchType string) string {
	if matchType == MatchTypeSimilar {
		return "60% liknande värderingar"
	}
	return "40% kompletterande energi"
}

// buildPersonalityInsight writes the long-form explanation of why the two
// users were paired, based on their archetype categories.
func buildPersonalityInsight(userArchetype, matchedArchetype, matchedName, matchType string) string {
	uCat := archetypeCategory[userArchetype]
	mCat := archetypeCategory[matchedArchetype]

	if matchType == MatchTypeSimilar {
		if uCat != "" {
			return fmt.Sprintf(
				"Du och %s är båda %s – ni är %s. Som likhetsmatch delar ni samma personlighetskategori, vilket ofta gör det lättare att förstå varandras behov och värdesätta samma saker i en relation.",
				matchedName, categoryTitles[uCat], categoryShort[uCat],
			)
		}
		return "Ni är en likhetsmatch – ni delar liknande personlighetsdrag och värderingar, vilket ofta gör det lättare att känna samhörighet i en relation."
	}

	pairInsight := "Era olika styrkor kan komplettera varandra och ge nya perspektiv i förhållandet."
	if byCat, ok := complementaryInsight[uCat]; ok {
		if insight, ok := byCat[mCat]; ok {
			pairInsight = insight
		}
	}
	if uCat != "" && mCat != "" {
		return fmt.Sprintf(
			"Du är %s – du är %s. %s är %s – hen är %s. Som motsatsmatch kompletterar ni varandra: %s",
			categoryTitles[uCat], categoryShort[uCat], matchedName, categoryTitles[mCat], categoryShort[mCat], pairInsight,
		)
	}
	return fmt.Sprintf("Ni är en motsatsmatch – era personligheter kompletterar varandra. %s", pairInsight)
}

var dimensionDescriptions = map[string]map[string]string{
	"personality": {
		"high":   "Ni delar liknande personlighetsdrag",
		"medium": "Era personligheter kompletterar varandra",
		"low":    "Era personligheter är olika men kan balansera",
	},
	"archetype": {
		"high":   "Era arketyper harmonierar väl",
		"medium": "Era arketyper skapar intressant dynamik",
		"low":    "Era arketyper utmanar varandra positivt",
	},
	"interests": {
		"high":   "Många gemensamma intressen",
		"medium": "Några gemensamma intressen",
		"low":    "Möjlighet att upptäcka nya intressen",
	},
}

// buildDimensionDetail renders the per-signal explanation rows from the
// raw (unweighted) component scores.
func buildDimensionDetail(result *ScoreResult) []DimensionInsight {
	rows := []struct {
		dimension string
		score     int
	}{
		{"personality", result.SimilarityScore},
		{"archetype", result.ArchetypeScore},
		{"interests", result.InterestScore},
	}

	detail := make([]DimensionInsight, 0, len(rows))
	for _, row := range rows {
		alignment := "low"
		switch {
		case row.score >= 75:
			alignment = "high"
		case row.score >= 50:
			alignment = "medium"
		}
		detail = append(detail, DimensionInsight{
			Dimension:   row.dimension,
			Score:       row.score,
			Alignment:   alignment,
			Description: dimensionDescriptions[row.dimension][alignment],
		})
	}
	return detail
}
