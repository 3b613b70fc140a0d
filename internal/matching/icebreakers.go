// internal/matching/icebreakers.go
// Conversation starter generation. The real generator is an external
// collaborator (LLM-backed); the template generator below is both the
// default and the degradation path when that collaborator fails, so a
// candidate never ships with fewer than three starters.

package matching

import (
	"context"
	"fmt"
)

// IcebreakerCount is the fixed number of starters attached per candidate.
const IcebreakerCount = 3

// IcebreakerGenerator produces conversation starters for a user/candidate
// pair. Implementations must return exactly IcebreakerCount items.
type IcebreakerGenerator interface {
	Generate(ctx context.Context, user, candidate *Profile) ([]string, error)
}

type templateGenerator struct{}

// NewTemplateIcebreakers returns the template-based generator.
func NewTemplateIcebreakers() IcebreakerGenerator {
	return &templateGenerator{}
}

// Generate picks a template category from the candidate's archetype
// category and mentions the first shared interest when one exists.
func (g *templateGenerator) Generate(ctx context.Context, user, candidate *Profile) ([]string, error) {
	common := commonInterests(user.Interests, candidate.Interests)

	interestMention := ""
	if len(common) > 0 {
		interestMention = fmt.Sprintf(" Jag såg att vi båda gillar %s!", common[0])
	}

	switch archetypeCategory[candidate.Archetype] {
	case "UPPTÄCKARE":
		return []string{
			fmt.Sprintf("Hej!%s Skulle du vilja ta en fika någon gång?", interestMention),
			"Har du testat något nytt intressant på sistone som du skulle vilja dela med dig av?",
			"Vad sägs om att utforska en ny restaurang tillsammans?",
		}, nil
	case "DIPLOMAT":
		return []string{
			fmt.Sprintf("Hej!%s Vad är något du brinner för som de flesta inte vet om dig?", interestMention),
			"Om du kunde skicka ett meddelande till dig själv för 10 år sedan, vad skulle det vara?",
			"Vad är den viktigaste lärdomen livet har lärt dig hittills?",
		}, nil
	default:
		return []string{
			fmt.Sprintf("Hej!%s Vad gör du helst på en ledig dag?", interestMention),
			"Hej där! Berätta om det senaste som fick dig att skratta?",
			"Hej! Vad är det bästa med att vara du?",
		}, nil
	}
}
