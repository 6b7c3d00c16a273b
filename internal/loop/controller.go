// Package loop drives the retrieval, selection, rewriting, and scoring
// cycle for one tailoring run, boosting missing must-have keywords between
// iterations and returning the best iteration seen.
package loop

import (
	"context"
	"fmt"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/matching"
	"github.com/pinkpig777/agentic-resume-tailor/internal/queryplan"
	"github.com/pinkpig777/agentic-resume-tailor/internal/rewriting"
	"github.com/pinkpig777/agentic-resume-tailor/internal/selection"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// SkillsFragmentID identifies the pseudo-fragment carrying the resume's
// skills section in the all-plus-skills coverage view.
const SkillsFragmentID = "__skills__"

// Retriever is the retrieval engine surface the controller needs.
type Retriever interface {
	Retrieve(ctx context.Context, items []types.QueryItem, perQueryK, finalK int) ([]types.Candidate, error)
}

// Scorer is the scoring surface the controller needs.
type Scorer interface {
	Score(selected, all []types.Candidate, displayTexts map[string]string, evidence types.EvidenceSets, hasProfile bool) types.ScoreResult
}

// Controller runs the tailoring loop. A controller is safe for concurrent
// runs: all per-run state lives on the stack of Run.
type Controller struct {
	cfg     Config
	engine  Retriever
	matcher *matching.Matcher
	scorer  Scorer
	guard   *rewriting.Guard
	groups  []canon.Group
}

// NewController wires the pipeline stages together. guard may be nil when
// rewriting is disabled entirely.
func NewController(cfg Config, engine Retriever, matcher *matching.Matcher, scorer Scorer, guard *rewriting.Guard, groups []canon.Group) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, fmt.Errorf("loop: retrieval engine is required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("loop: keyword matcher is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("loop: scorer is required")
	}
	return &Controller{
		cfg:     cfg,
		engine:  engine,
		matcher: matcher,
		scorer:  scorer,
		guard:   guard,
		groups:  groups,
	}, nil
}

// Run executes the loop for one job input. Without a structured profile,
// coverage scoring is impossible and exactly one iteration runs. The run
// always returns a best iteration, even when every iteration scored below
// the threshold; a retrieval failure is the only error path.
func (c *Controller) Run(ctx context.Context, source queryplan.Source, snapshot *types.ResumeSnapshot) (*types.LoopResult, error) {
	hasProfile := source.HasProfile()
	profile := source.Profile()
	baseItems := source.QueryItems()
	if len(baseItems) == 0 {
		return nil, fmt.Errorf("loop: no retrieval queries to run")
	}

	maxIters := c.cfg.MaxIterations
	if !hasProfile {
		// No coverage signal means no corrective pressure: re-running
		// retrieval with identical queries cannot improve anything.
		maxIters = 1
	}

	result := &types.LoopResult{ProfileUsed: hasProfile}
	bestScore := -1
	var boostTerms []string

	for iter := 0; iter < maxIters; iter++ {
		// Cancellation is checked between iterations only; a single
		// iteration always runs to completion.
		if err := ctx.Err(); err != nil {
			if iter == 0 {
				return nil, err
			}
			break
		}

		items := queryplan.ApplyBoosts(baseItems, boostTerms, c.cfg.Boosts)
		trace := types.IterationTrace{
			Iteration:   iter,
			QueriesUsed: queryplan.QueryTexts(items),
			BoostTerms:  boostTerms,
		}

		candidates, err := c.engine.Retrieve(ctx, items, c.cfg.PerQueryK, c.cfg.FinalK)
		if err != nil {
			return nil, fmt.Errorf("loop: iteration %d: %w", iter, err)
		}
		trace.CandidateCount = len(candidates)

		selectedIDs, _ := selection.SelectTopK(candidates, c.cfg.MaxBullets)
		selected := selection.Resolve(selectedIDs, candidates)
		trace.SelectedIDs = selectedIDs

		finalTexts, decisions := c.rewriteSelected(ctx, profile, selected)
		displayTexts := make(map[string]string, len(finalTexts))
		for id, text := range finalTexts {
			displayTexts[id] = strings.TrimSpace(canon.StripMarkup(text))
		}

		var evidence types.EvidenceSets
		if hasProfile {
			evidence = c.matchEvidence(profile, selected, candidates, finalTexts, snapshot)
		}

		score := c.scorer.Score(selected, candidates, displayTexts, evidence, hasProfile)
		trace.Scored = hasProfile
		trace.Scores = types.IterationScores{
			Final:               score.FinalScore,
			Retrieval:           score.RetrievalScore,
			CoverageBulletsOnly: score.CoverageBulletsOnly,
			CoverageAll:         score.CoverageAll,
		}
		trace.MustMissingBulletsOnly = score.MustMissingBulletsOnly
		trace.NiceMissingBulletsOnly = score.NiceMissingBulletsOnly
		trace.MustMissingAll = score.MustMissingAll
		trace.NiceMissingAll = score.NiceMissingAll
		result.Iterations = append(result.Iterations, trace)

		// Strictly greater: the first iteration wins ties.
		if score.FinalScore > bestScore {
			bestScore = score.FinalScore
			scoreCopy := score
			result.BestIterationIndex = iter
			result.BestSelectedIDs = selectedIDs
			result.BestCandidates = candidates
			result.BestSelected = selected
			result.BestScore = &scoreCopy
			result.BestEvidence = evidence
			result.BestRewrites = finalTexts
			result.BestRewriteDecisions = decisionMap(decisions)
		}

		if score.FinalScore >= c.cfg.Threshold {
			break
		}

		boostTerms = nextBoostTerms(score.MustMissingBulletsOnly, c.cfg.BoostTopN)
	}

	return result, nil
}

// rewriteSelected runs the rewrite guard when one is wired; otherwise the
// originals pass through with no decisions.
func (c *Controller) rewriteSelected(ctx context.Context, profile *types.TargetProfile, selected []types.Candidate) (map[string]string, []types.RewriteDecision) {
	if c.guard == nil {
		finalTexts := make(map[string]string, len(selected))
		for _, cand := range selected {
			finalTexts[cand.BulletID] = cand.Text
		}
		return finalTexts, nil
	}
	allowlists := rewriting.BuildAllowlists(selected, c.groups)
	return c.guard.RewriteBullets(ctx, profile, selected, allowlists)
}

// matchEvidence runs the four matching passes for one iteration: must-have
// and nice-to-have keywords, each against the selected bullets (with their
// final rewritten texts) and against all candidates plus the skills
// pseudo-fragment.
func (c *Controller) matchEvidence(profile *types.TargetProfile, selected, all []types.Candidate, finalTexts map[string]string, snapshot *types.ResumeSnapshot) types.EvidenceSets {
	must, nice := profile.Keywords()

	selectedFrags := make([]types.Fragment, 0, len(selected))
	for _, cand := range selected {
		text := cand.Text
		if rewritten, ok := finalTexts[cand.BulletID]; ok {
			text = rewritten
		}
		selectedFrags = append(selectedFrags, types.Fragment{ID: cand.BulletID, Text: text, Meta: cand.Meta})
	}

	allFrags := make([]types.Fragment, 0, len(all)+1)
	for _, cand := range all {
		allFrags = append(allFrags, types.Fragment{ID: cand.BulletID, Text: cand.Text, Meta: cand.Meta})
	}
	if skills := snapshot.SkillsText(); skills != "" {
		allFrags = append(allFrags, types.Fragment{
			ID:   SkillsFragmentID,
			Text: skills,
			Meta: map[string]string{"section": "skills"},
		})
	}

	return types.EvidenceSets{
		MustBulletsOnly: c.matcher.Match(must, selectedFrags),
		NiceBulletsOnly: c.matcher.Match(nice, selectedFrags),
		MustAll:         c.matcher.Match(must, allFrags),
		NiceAll:         c.matcher.Match(nice, allFrags),
	}
}

// nextBoostTerms derives the next iteration's boosts from the bullets-only
// missing must-have list: deduplicated, lower-cased, capped to topN.
func nextBoostTerms(missing []string, topN int) []string {
	seen := make(map[string]struct{}, len(missing))
	var out []string
	for _, term := range missing {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if topN > 0 && len(out) >= topN {
			break
		}
	}
	return out
}

func decisionMap(decisions []types.RewriteDecision) map[string]types.RewriteDecision {
	if len(decisions) == 0 {
		return nil
	}
	out := make(map[string]types.RewriteDecision, len(decisions))
	for _, d := range decisions {
		out[d.BulletID] = d
	}
	return out
}
