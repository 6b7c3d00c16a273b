package rewriting

import (
	"context"
	"sort"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/textsim"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// Constraints bound the rewrite step. Disabled means the guard passes
// originals through untouched.
type Constraints struct {
	Enabled             bool
	MinChars            int
	MaxChars            int
	SimilarityThreshold float64
}

// DefaultConstraints returns the standard rewrite constraints.
func DefaultConstraints() Constraints {
	return Constraints{
		Enabled:             true,
		MinChars:            40,
		MaxChars:            220,
		SimilarityThreshold: 0.55,
	}
}

// AgentBullet is one bullet handed to a generative rewrite backend, with
// the terms its rewrite is allowed to introduce.
type AgentBullet struct {
	BulletID     string   `json:"bullet_id"`
	Text         string   `json:"text_latex"`
	AllowedTerms []string `json:"allowed_terms"`
}

// Agent is an optional generative rewrite backend. It proposes texts keyed
// by bullet id; every proposal still passes through validation, so a
// misbehaving agent degrades to originals rather than corrupting output.
type Agent interface {
	Rewrite(ctx context.Context, profile *types.TargetProfile, bullets []AgentBullet, constraints Constraints) (map[string]string, error)
}

// Guard runs the rewrite step: propose (agent or local rules), validate,
// and fall back to the original text per bullet on any violation.
type Guard struct {
	constraints Constraints
	agent       Agent
}

// NewGuard returns a guard. agent may be nil, in which case only the local
// rule chain produces candidates.
func NewGuard(constraints Constraints, agent Agent) *Guard {
	return &Guard{constraints: constraints, agent: agent}
}

// RewriteBullets rewrites the selected bullets. The returned map holds the
// final text per bullet id; the decisions record what happened to each
// bullet. An agent failure downgrades the whole batch to local rules; a
// validation failure downgrades a single bullet to its original text. The
// run itself never fails.
func (g *Guard) RewriteBullets(ctx context.Context, profile *types.TargetProfile, bullets []types.Candidate, allowlists map[string]map[string]struct{}) (map[string]string, []types.RewriteDecision) {
	finalTexts := make(map[string]string, len(bullets))
	decisions := make([]types.RewriteDecision, 0, len(bullets))
	if len(bullets) == 0 {
		return finalTexts, decisions
	}

	if !g.constraints.Enabled {
		for _, bullet := range bullets {
			finalTexts[bullet.BulletID] = bullet.Text
			decisions = append(decisions, types.RewriteDecision{
				BulletID:     bullet.BulletID,
				OriginalText: bullet.Text,
				FinalText:    bullet.Text,
				Validation:   types.RewriteValidation{OK: true},
			})
		}
		return finalTexts, decisions
	}

	proposals := g.propose(ctx, profile, bullets, allowlists)

	for _, bullet := range bullets {
		original := bullet.Text
		candidate := strings.TrimSpace(proposals[bullet.BulletID])
		fallback := false
		if candidate == "" {
			candidate = original
			fallback = true
		}

		allow := allowlists[bullet.BulletID]
		validation := ValidateRewrite(original, candidate, allow)
		violations := validation.Violations

		length := len(strings.TrimSpace(candidate))
		if length < g.constraints.MinChars {
			violations = append(violations, ViolationTooShort)
		} else if length > g.constraints.MaxChars {
			violations = append(violations, ViolationTooLong)
		}
		if similarityRatio(original, candidate) < g.constraints.SimilarityThreshold {
			violations = append(violations, ViolationSemanticDrift)
		}

		if len(violations) > 0 {
			validation = types.RewriteValidation{
				OK:         false,
				Violations: violations,
				NewNumbers: validation.NewNumbers,
				NewTools:   validation.NewTools,
			}
			candidate = original
			fallback = true
		}

		finalTexts[bullet.BulletID] = candidate
		decisions = append(decisions, types.RewriteDecision{
			BulletID:     bullet.BulletID,
			OriginalText: original,
			FinalText:    candidate,
			Changed:      candidate != original,
			FallbackUsed: fallback,
			Validation:   validation,
		})
	}
	return finalTexts, decisions
}

// propose produces candidate texts: from the agent when one is wired, from
// the local rule chain otherwise or when the agent call fails.
func (g *Guard) propose(ctx context.Context, profile *types.TargetProfile, bullets []types.Candidate, allowlists map[string]map[string]struct{}) map[string]string {
	if g.agent != nil {
		agentBullets := make([]AgentBullet, 0, len(bullets))
		for _, bullet := range bullets {
			agentBullets = append(agentBullets, AgentBullet{
				BulletID:     bullet.BulletID,
				Text:         bullet.Text,
				AllowedTerms: sortedTerms(allowlists[bullet.BulletID]),
			})
		}
		proposals, err := g.agent.Rewrite(ctx, profile, agentBullets, g.constraints)
		if err == nil {
			return proposals
		}
	}

	proposals := make(map[string]string, len(bullets))
	for _, bullet := range bullets {
		proposals[bullet.BulletID] = ApplyLocalRules(bullet.Text, g.constraints.MaxChars)
	}
	return proposals
}

// similarityRatio compares markup-stripped, lower-cased texts. An empty
// side scores 0 so a rewrite that strips to nothing reads as full drift.
func similarityRatio(a, b string) float64 {
	aPlain := strings.ToLower(strings.TrimSpace(canon.StripMarkup(a)))
	bPlain := strings.ToLower(strings.TrimSpace(canon.StripMarkup(b)))
	if aPlain == "" || bPlain == "" {
		return 0
	}
	return textsim.Ratio(aPlain, bPlain)
}

func sortedTerms(allow map[string]struct{}) []string {
	if len(allow) == 0 {
		return nil
	}
	terms := make([]string, 0, len(allow))
	for term := range allow {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
