package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

func candsWithWeights(weights ...float64) []types.Candidate {
	out := make([]types.Candidate, len(weights))
	for i, w := range weights {
		out[i] = types.Candidate{
			BulletID:               string(rune('a' + i)),
			TotalWeighted:          w,
			EffectiveTotalWeighted: w,
		}
	}
	return out
}

func TestRetrievalNormBestPossibleSelection(t *testing.T) {
	// Selecting the top 2 of {2.0, 1.0, 0.5} is the best possible pick of
	// that size, so the norm must be exactly 1.0.
	all := candsWithWeights(2.0, 1.0, 0.5)
	selected := all[:2]

	assert.InDelta(t, 1.0, RetrievalNorm(selected, all), 1e-9)
}

func TestRetrievalNormSuboptimalSelection(t *testing.T) {
	all := candsWithWeights(2.0, 1.0, 0.5)
	selected := []types.Candidate{all[1], all[2]} // mean 0.75 vs best 1.5

	assert.InDelta(t, 0.5, RetrievalNorm(selected, all), 1e-9)
}

func TestRetrievalNormEmptySelection(t *testing.T) {
	assert.Zero(t, RetrievalNorm(nil, candsWithWeights(1.0)))
}

func TestRetrievalNormDegenerateWeights(t *testing.T) {
	// When every candidate carries zero weight there is no best possible
	// selection to measure against, so the norm is 0, not 1.
	all := candsWithWeights(0, 0, 0)
	assert.Zero(t, RetrievalNorm(all[:2], all))
}

func TestCoverageNormEmptySetIsVacuouslySatisfied(t *testing.T) {
	assert.InDelta(t, 1.0, CoverageNorm(nil, nil, 0.7), 1e-9)
}

func TestCoverageNormTierWeights(t *testing.T) {
	must := []types.MatchEvidence{
		{Keyword: "python", Tier: types.TierExact},
		{Keyword: "cloud platform", Tier: types.TierFamily},
		{Keyword: "terraform", Tier: types.TierNone},
	}
	// (1.0 + 0.8 + 0.0) / 3 = 0.6 blended against a vacuous nice set.
	got := CoverageNorm(must, nil, 0.7)
	assert.InDelta(t, 0.7*0.6+0.3*1.0, got, 1e-9)
}

func TestLengthScore(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    float64
	}{
		{name: "below min ramps linearly", lengths: []int{5}, want: 0.5},
		{name: "inside band", lengths: []int{15}, want: 1.0},
		{name: "above max ramps linearly", lengths: []int{40}, want: 0.5},
		{name: "averaged", lengths: []int{5, 15}, want: 0.75},
		{name: "no bullets", lengths: nil, want: 1.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, LengthScore(tc.lengths, 10, 20), 1e-9)
		})
	}
}

func TestRedundancyPenalty(t *testing.T) {
	ids := []string{"a", "b", "c"}
	texts := []string{
		"built scalable data pipelines in python",
		"built scalable data pipelines using python",
		"led the mobile team",
	}
	penalty, pairs := RedundancyPenalty(ids, texts, 0.6)

	// Only the (a,b) pair overlaps enough; 1 of 3 possible pairs.
	assert.InDelta(t, 1.0/3.0, penalty, 1e-9)
	require.Len(t, pairs, 1)
	assert.Equal(t, "a", pairs[0].BulletA)
	assert.Equal(t, "b", pairs[0].BulletB)
	assert.GreaterOrEqual(t, pairs[0].Similarity, 0.6)
}

func TestRedundancyPenaltyEmptyTokenSetFallsBackToRatio(t *testing.T) {
	// Texts with no word tokens have empty token sets, so similarity comes
	// from the character-sequence ratio instead of Jaccard.
	penalty, pairs := RedundancyPenalty([]string{"a", "b"}, []string{"!!!", "!!!"}, 0.9)

	assert.InDelta(t, 1.0, penalty, 1e-9)
	require.Len(t, pairs, 1)
	assert.InDelta(t, 1.0, pairs[0].Similarity, 1e-9)
}

func TestRedundancyPenaltySingleBullet(t *testing.T) {
	penalty, pairs := RedundancyPenalty([]string{"a"}, []string{"anything"}, 0.6)
	assert.Zero(t, penalty)
	assert.Empty(t, pairs)
}

func TestQualityScore(t *testing.T) {
	selected := []types.Candidate{
		{BulletID: "a", QuantBonus: 0.20},
		{BulletID: "b", QuantBonus: 0.0},
	}
	assert.InDelta(t, 0.5, QualityScore(selected, 0.20), 1e-9)
	assert.Zero(t, QualityScore(nil, 0.20))
}

func TestScoreSingleExactMustHaveIsPerfect(t *testing.T) {
	// One must-have keyword matched exactly, must_weight=1, alpha=0.5, and
	// a selection that is the best possible pick: the composite clamps to
	// a final score of 100.
	params := DefaultParams()
	params.Alpha = 0.5
	params.MustWeight = 1.0
	scorer, err := NewScorer(params)
	require.NoError(t, err)

	text := "shipped a python service handling production traffic daily"
	selected := []types.Candidate{{
		BulletID:               "exp:a:0",
		Text:                   text,
		EffectiveTotalWeighted: 1.0,
	}}
	evidence := types.EvidenceSets{
		MustBulletsOnly: []types.MatchEvidence{
			{Keyword: "python", Tier: types.TierExact, BulletIDs: []string{"exp:a:0"}},
		},
		MustAll: []types.MatchEvidence{
			{Keyword: "python", Tier: types.TierExact, BulletIDs: []string{"exp:a:0"}},
		},
	}
	result := scorer.Score(selected, selected, map[string]string{"exp:a:0": text}, evidence, true)

	assert.Equal(t, 100, result.FinalScore)
	assert.InDelta(t, 1.0, result.RetrievalScore, 1e-9)
	assert.InDelta(t, 1.0, result.CoverageBulletsOnly, 1e-9)
	assert.Empty(t, result.MustMissingBulletsOnly)
}

func TestScoreMissingKeywordLists(t *testing.T) {
	scorer, err := NewScorer(DefaultParams())
	require.NoError(t, err)

	text := strings.Repeat("x", 50)
	selected := []types.Candidate{{BulletID: "exp:a:0", Text: text, EffectiveTotalWeighted: 1.0}}
	evidence := types.EvidenceSets{
		MustBulletsOnly: []types.MatchEvidence{
			{Keyword: "python", Tier: types.TierExact},
			{Keyword: "terraform", Tier: types.TierNone},
		},
		MustAll: []types.MatchEvidence{
			{Keyword: "python", Tier: types.TierExact},
			{Keyword: "terraform", Tier: types.TierFamily, SatisfiedBy: "pulumi"},
		},
	}
	result := scorer.Score(selected, selected, nil, evidence, true)

	assert.Equal(t, []string{"terraform"}, result.MustMissingBulletsOnly)
	assert.Empty(t, result.MustMissingAll)
}

func TestScoreRetrievalOnlyMode(t *testing.T) {
	// Without a structured profile the final score is the retrieval norm
	// alone, scaled to 0-100.
	scorer, err := NewScorer(DefaultParams())
	require.NoError(t, err)

	all := candsWithWeights(2.0, 1.0, 0.5)
	selected := []types.Candidate{all[1], all[2]}
	result := scorer.Score(selected, all, nil, types.EvidenceSets{}, false)

	assert.Equal(t, 50, result.FinalScore)
	assert.Zero(t, result.CoverageBulletsOnly)
}

func TestParamsValidate(t *testing.T) {
	params := DefaultParams()
	require.NoError(t, params.Validate())

	params.Alpha = 1.5
	assert.Error(t, params.Validate())

	params = DefaultParams()
	params.MaxBulletChars = params.MinBulletChars - 1
	assert.Error(t, params.Validate())
}
