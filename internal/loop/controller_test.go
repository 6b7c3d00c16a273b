package loop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/matching"
	"github.com/pinkpig777/agentic-resume-tailor/internal/queryplan"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

type stubRetriever struct {
	candidates []types.Candidate
	err        error
	calls      [][]types.QueryItem
}

func (s *stubRetriever) Retrieve(ctx context.Context, items []types.QueryItem, perQueryK, finalK int) ([]types.Candidate, error) {
	s.calls = append(s.calls, items)
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

// presetScorer returns one canned result per iteration, in order.
type presetScorer struct {
	results []types.ScoreResult
	calls   int
}

func (s *presetScorer) Score(selected, all []types.Candidate, displayTexts map[string]string, evidence types.EvidenceSets, hasProfile bool) types.ScoreResult {
	result := s.results[s.calls]
	s.calls++
	return result
}

func testMatcher() *matching.Matcher {
	return matching.NewMatcher(canon.New(canon.DefaultConfig()), matching.DefaultFamilyConfig())
}

func testProfile() *types.TargetProfile {
	return &types.TargetProfile{
		RoleTitle: "Backend Engineer",
		MustHave: []types.Keyword{
			{Raw: "Python", Canonical: "python", Category: types.KeywordMustHave},
		},
		RetrievalPlan: types.RetrievalPlan{
			ExperienceQueries: []types.ExperienceQuery{
				{Query: "backend services", Weight: 1.0},
			},
		},
	}
}

func testCandidates() []types.Candidate {
	return []types.Candidate{
		{BulletID: "exp:a:0", Text: "Built python services", EffectiveTotalWeighted: 1.2},
		{BulletID: "exp:a:1", Text: "Operated the data platform", EffectiveTotalWeighted: 0.8},
	}
}

func TestRunTracksBestIteration(t *testing.T) {
	retriever := &stubRetriever{candidates: testCandidates()}
	scorer := &presetScorer{results: []types.ScoreResult{
		{FinalScore: 70, MustMissingBulletsOnly: []string{"kafka"}},
		{FinalScore: 85},
		{FinalScore: 80},
	}}
	cfg := DefaultConfig()
	cfg.MaxIterations = 3
	cfg.Threshold = 99
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), scorer, nil, nil)
	require.NoError(t, err)

	result, err := controller.Run(context.Background(), queryplan.FromProfile(testProfile()), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, scorer.calls)
	assert.Equal(t, 1, result.BestIterationIndex)
	require.NotNil(t, result.BestScore)
	assert.Equal(t, 85, result.BestScore.FinalScore)
	assert.Len(t, result.Iterations, 3)
	assert.True(t, result.ProfileUsed)
}

func TestRunStopsAtThreshold(t *testing.T) {
	retriever := &stubRetriever{candidates: testCandidates()}
	scorer := &presetScorer{results: []types.ScoreResult{
		{FinalScore: 70, MustMissingBulletsOnly: []string{"kafka"}},
		{FinalScore: 92},
		{FinalScore: 95},
	}}
	cfg := DefaultConfig()
	cfg.MaxIterations = 3
	cfg.Threshold = 90
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), scorer, nil, nil)
	require.NoError(t, err)

	result, err := controller.Run(context.Background(), queryplan.FromProfile(testProfile()), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, scorer.calls)
	assert.Len(t, result.Iterations, 2)
	assert.Equal(t, 92, result.BestScore.FinalScore)
}

func TestRunFirstIterationWinsTies(t *testing.T) {
	retriever := &stubRetriever{candidates: testCandidates()}
	scorer := &presetScorer{results: []types.ScoreResult{
		{FinalScore: 80},
		{FinalScore: 80},
	}}
	cfg := DefaultConfig()
	cfg.MaxIterations = 2
	cfg.Threshold = 99
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), scorer, nil, nil)
	require.NoError(t, err)

	result, err := controller.Run(context.Background(), queryplan.FromProfile(testProfile()), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.BestIterationIndex)
}

func TestRunBoostsMissingMustHaves(t *testing.T) {
	retriever := &stubRetriever{candidates: testCandidates()}
	scorer := &presetScorer{results: []types.ScoreResult{
		{FinalScore: 60, MustMissingBulletsOnly: []string{"Kafka", "kafka", "terraform"}},
		{FinalScore: 70},
	}}
	cfg := DefaultConfig()
	cfg.MaxIterations = 2
	cfg.Threshold = 99
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), scorer, nil, nil)
	require.NoError(t, err)

	result, err := controller.Run(context.Background(), queryplan.FromProfile(testProfile()), nil)
	require.NoError(t, err)
	require.Len(t, retriever.calls, 2)

	// first iteration has no boosts
	first := retriever.calls[0]
	require.Len(t, first, 1)
	assert.Empty(t, first[0].BoostKeywords)

	// second iteration carries deduped boosts plus the boost-only query
	second := retriever.calls[1]
	require.Len(t, second, 2)
	assert.Equal(t, []string{"kafka", "terraform"}, second[0].BoostKeywords)
	assert.Equal(t, "kafka terraform", second[1].Text)
	assert.Equal(t, "boost", second[1].Purpose)

	// the trace records the boosts that were in effect
	assert.Equal(t, []string{"kafka", "terraform"}, result.Iterations[1].BoostTerms)
}

func TestRunRetrievalOnlyModeRunsOnce(t *testing.T) {
	retriever := &stubRetriever{candidates: testCandidates()}
	scorer := &presetScorer{results: []types.ScoreResult{
		{FinalScore: 40, RetrievalScore: 0.4},
	}}
	cfg := DefaultConfig()
	cfg.MaxIterations = 3
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), scorer, nil, nil)
	require.NoError(t, err)

	source := queryplan.FromQueries([]string{"built data pipelines"})
	result, err := controller.Run(context.Background(), source, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, scorer.calls)
	assert.Len(t, result.Iterations, 1)
	assert.False(t, result.ProfileUsed)
	assert.False(t, result.Iterations[0].Scored)
}

func TestRunRetrievalFailureAborts(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("backend down")}
	cfg := DefaultConfig()
	cfg.Rewrite.Enabled = false

	controller, err := NewController(cfg, retriever, testMatcher(), &presetScorer{results: []types.ScoreResult{{}}}, nil, nil)
	require.NoError(t, err)

	_, err = controller.Run(context.Background(), queryplan.FromProfile(testProfile()), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "backend down")
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retriever := &stubRetriever{candidates: testCandidates()}
	cfg := DefaultConfig()
	cfg.Rewrite.Enabled = false
	controller, err := NewController(cfg, retriever, testMatcher(), &presetScorer{results: []types.ScoreResult{{}}}, nil, nil)
	require.NoError(t, err)

	_, err = controller.Run(ctx, queryplan.FromProfile(testProfile()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildReport(t *testing.T) {
	result := &types.LoopResult{
		BestIterationIndex: 1,
		BestSelectedIDs:    []string{"exp:a:0"},
		BestSelected: []types.Candidate{
			{BulletID: "exp:a:0", Source: "experience", Text: "Built python services", QuantBonus: 0.05},
		},
		BestScore:    &types.ScoreResult{FinalScore: 85},
		BestRewrites: map[string]string{"exp:a:0": "Built resilient python services"},
		ProfileUsed:  true,
		Iterations:   []types.IterationTrace{{Iteration: 0}, {Iteration: 1}},
	}

	report := BuildReport(result, testProfile())

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.CreatedAt.IsZero())
	assert.Equal(t, "Backend Engineer", report.RoleTitle)
	assert.Equal(t, 85, report.FinalScore)
	require.Len(t, report.Bullets, 1)
	assert.Equal(t, "Built resilient python services", report.Bullets[0].Text)
	assert.True(t, report.Bullets[0].Rewritten)
	assert.Len(t, report.Iterations, 2)
}
