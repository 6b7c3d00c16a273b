package rewriting

import (
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// BuildAllowlists builds the per-bullet allowed-term sets from each bullet's
// original text, expanded with canonicalization variants: if any spelling of
// a canon group appears in the text, every spelling of that group becomes an
// allowed term. This keeps a rewrite from being rejected just for swapping
// "k8s" to "kubernetes".
func BuildAllowlists(bullets []types.Candidate, groups []canon.Group) map[string]map[string]struct{} {
	allowlists := make(map[string]map[string]struct{}, len(bullets))
	for _, bullet := range bullets {
		if bullet.BulletID == "" {
			continue
		}
		allow := make(map[string]struct{})
		for _, token := range Tokenize(bullet.Text) {
			allow[token] = struct{}{}
		}
		lowered := strings.ToLower(bullet.Text)
		for _, group := range groups {
			phrases := make([]string, 0, 1+len(group.Variants))
			if group.Canonical != "" {
				phrases = append(phrases, group.Canonical)
			}
			phrases = append(phrases, group.Variants...)
			present := false
			for _, phrase := range phrases {
				if phrase != "" && strings.Contains(lowered, strings.ToLower(phrase)) {
					present = true
					break
				}
			}
			if !present {
				continue
			}
			for _, phrase := range phrases {
				for _, token := range Tokenize(phrase) {
					allow[token] = struct{}{}
				}
			}
		}
		allowlists[bullet.BulletID] = allow
	}
	return allowlists
}
