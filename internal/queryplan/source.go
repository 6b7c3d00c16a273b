// Package queryplan converts the two retrieval inputs, a structured target
// profile or a heuristic query list, into the single query-item shape the
// retrieval engine consumes, and applies boost terms between iterations.
package queryplan

import (
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// Source is the retrieval input: exactly one of a structured profile or a
// plain query list. The two variants are explicit so nothing downstream
// sniffs shapes.
type Source struct {
	profile *types.TargetProfile
	queries []string
}

// FromProfile builds a source from a structured target profile.
func FromProfile(profile *types.TargetProfile) Source {
	return Source{profile: profile}
}

// FromQueries builds a source from heuristic fallback queries.
func FromQueries(queries []string) Source {
	return Source{queries: queries}
}

// HasProfile reports whether the source carries a structured profile.
// Without one, coverage scoring is impossible and the run is retrieval-only.
func (s Source) HasProfile() bool {
	return s.profile != nil
}

// Profile returns the structured profile, or nil for the query-list variant.
func (s Source) Profile() *types.TargetProfile {
	return s.profile
}

// QueryItems converts the source into the canonical query-item list. Empty
// queries are dropped; missing weights default to 1.0.
func (s Source) QueryItems() []types.QueryItem {
	if s.profile != nil {
		planned := s.profile.RetrievalPlan.ExperienceQueries
		items := make([]types.QueryItem, 0, len(planned))
		for _, q := range planned {
			text := strings.TrimSpace(q.Query)
			if text == "" {
				continue
			}
			weight := q.Weight
			if weight <= 0 {
				weight = 1.0
			}
			items = append(items, types.QueryItem{
				Text:          text,
				Purpose:       q.Purpose,
				BoostKeywords: dedupeKeepOrder(lowerAll(q.BoostKeywords)),
				Weight:        weight,
			})
		}
		return items
	}

	items := make([]types.QueryItem, 0, len(s.queries))
	for _, q := range s.queries {
		text := strings.TrimSpace(q)
		if text == "" {
			continue
		}
		items = append(items, types.QueryItem{Text: text, Purpose: "heuristic", Weight: 1.0})
	}
	return items
}

// QueryTexts returns the literal query strings the retrieval engine will
// embed for these items, boosts included. Used for the iteration trace.
func QueryTexts(items []types.QueryItem) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		parts := append([]string{item.Text}, item.BoostKeywords...)
		texts = append(texts, strings.Join(parts, " "))
	}
	return texts
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(strings.TrimSpace(t)))
	}
	return out
}

func dedupeKeepOrder(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	var out []string
	for _, t := range terms {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
