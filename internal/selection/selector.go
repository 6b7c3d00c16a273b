// Package selection picks the bullets that will actually render. It walks
// the already-ranked candidate list, deduplicates, and truncates; it never
// re-ranks.
package selection

import (
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// Decision records why a candidate was kept or skipped during selection.
type Decision struct {
	BulletID string `json:"bullet_id"`
	Action   string `json:"action"`
	Reason   string `json:"reason,omitempty"`
}

const (
	ActionKept    = "kept"
	ActionSkipped = "skipped"

	ReasonDuplicateBulletID = "duplicate_bullet_id"
	ReasonMaxReached        = "max_bullets_reached"
)

// SelectTopK keeps the first occurrence of each bullet id from the ranked
// candidates, up to maxN ids, and records a decision per candidate seen.
func SelectTopK(candidates []types.Candidate, maxN int) ([]string, []Decision) {
	if maxN <= 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, maxN)
	ordered := make([]string, 0, maxN)
	decisions := make([]Decision, 0, len(candidates))
	for _, cand := range candidates {
		if len(ordered) >= maxN {
			decisions = append(decisions, Decision{
				BulletID: cand.BulletID,
				Action:   ActionSkipped,
				Reason:   ReasonMaxReached,
			})
			continue
		}
		if _, dup := seen[cand.BulletID]; dup {
			decisions = append(decisions, Decision{
				BulletID: cand.BulletID,
				Action:   ActionSkipped,
				Reason:   ReasonDuplicateBulletID,
			})
			continue
		}
		seen[cand.BulletID] = struct{}{}
		ordered = append(ordered, cand.BulletID)
		decisions = append(decisions, Decision{BulletID: cand.BulletID, Action: ActionKept})
	}
	return ordered, decisions
}

// Resolve maps the selected ids back to their candidates, preserving
// selection order.
func Resolve(selectedIDs []string, candidates []types.Candidate) []types.Candidate {
	byID := make(map[string]types.Candidate, len(candidates))
	for _, cand := range candidates {
		if _, ok := byID[cand.BulletID]; !ok {
			byID[cand.BulletID] = cand
		}
	}
	selected := make([]types.Candidate, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		if cand, ok := byID[id]; ok {
			selected = append(selected, cand)
		}
	}
	return selected
}
