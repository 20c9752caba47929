package runtime

import (
	"strings"

	"github.com/aretw0/broilr/pkg/domain"
	"github.com/aretw0/broilr/pkg/utterance"
)

// resolveCandidate picks a recipe by 1-based index, or else by the first name
// containing the utterance. An empty utterance never matches.
func resolveCandidate(candidates []domain.Recipe, u utterance.Utterance) (domain.Recipe, bool) {
	if n, ok := utterance.ParseOrdinal(u.Text); ok && n >= 1 && n <= len(candidates) {
		return candidates[n-1], true
	}
	needle := strings.ToLower(strings.TrimSpace(u.Raw))
	if needle == "" {
		return domain.Recipe{}, false
	}
	for _, r := range candidates {
		name := strings.ToLower(r.Name)
		if strings.Contains(name, needle) || (u.Text != "" && strings.Contains(utterance.Normalize(r.Name), u.Text)) {
			return r, true
		}
	}
	return domain.Recipe{}, false
}
