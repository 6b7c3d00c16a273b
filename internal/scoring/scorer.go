// Package scoring computes the 0-100 composite score for one iteration's
// selection from retrieval quality, keyword coverage, bullet length
// compliance, redundancy, and quantitative-impact signal.
package scoring

import (
	"math"
	"sort"

	"github.com/pinkpig777/agentic-resume-tailor/internal/textsim"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// tierWeights maps a match tier to its coverage contribution.
var tierWeights = map[types.MatchTier]float64{
	types.TierExact:     1.0,
	types.TierAlias:     0.85,
	types.TierFamily:    0.8,
	types.TierSubstring: 0.5,
	types.TierNone:      0.0,
}

// TierWeight returns the coverage weight of a match tier.
func TierWeight(tier types.MatchTier) float64 {
	return tierWeights[tier]
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Scorer computes composite scores with a fixed parameter set.
type Scorer struct {
	params Params
}

// NewScorer validates the parameters and returns a scorer.
func NewScorer(params Params) (*Scorer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{params: params}, nil
}

// Params returns the scorer's parameter set.
func (s *Scorer) Params() Params {
	return s.params
}

// RetrievalNorm measures how close the selection is to the best possible
// selection of the same size: mean effective weight of the selected
// candidates over the mean of the top-N effective weights among all
// candidates, clamped to [0,1].
func RetrievalNorm(selected, all []types.Candidate) float64 {
	if len(selected) == 0 || len(all) == 0 {
		return 0
	}
	n := len(selected)
	if n > len(all) {
		n = len(all)
	}

	var selectedSum float64
	for _, cand := range selected {
		selectedSum += cand.EffectiveTotalWeighted
	}
	selectedMean := selectedSum / float64(len(selected))

	weights := make([]float64, len(all))
	for i, cand := range all {
		weights[i] = cand.EffectiveTotalWeighted
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))

	var bestSum float64
	for _, w := range weights[:n] {
		bestSum += w
	}
	bestMean := bestSum / float64(n)
	if bestMean <= 0 {
		return 0
	}
	return Clamp01(selectedMean / bestMean)
}

// coverageOf averages the best tier weight achieved per keyword. An empty
// keyword set is vacuously satisfied and scores 1.0.
func coverageOf(evidence []types.MatchEvidence) float64 {
	if len(evidence) == 0 {
		return 1.0
	}
	var sum float64
	for _, ev := range evidence {
		sum += TierWeight(ev.Tier)
	}
	return sum / float64(len(evidence))
}

// CoverageNorm blends must-have and nice-to-have coverage with mustWeight.
func CoverageNorm(must, nice []types.MatchEvidence, mustWeight float64) float64 {
	return mustWeight*coverageOf(must) + (1-mustWeight)*coverageOf(nice)
}

// missingKeywords lists the keywords that matched nowhere.
func missingKeywords(evidence []types.MatchEvidence) []string {
	var missing []string
	for _, ev := range evidence {
		if ev.Tier == types.TierNone {
			missing = append(missing, ev.Keyword)
		}
	}
	return missing
}

// LengthScore scores bullet lengths against the [min,max] band: 1.0 inside
// the band, linear ramps len/min and max/len outside it, averaged across
// bullets. No bullets scores 1.0.
func LengthScore(lengths []int, min, max int) float64 {
	if len(lengths) == 0 {
		return 1.0
	}
	var sum float64
	for _, n := range lengths {
		switch {
		case n < min:
			sum += float64(n) / float64(min)
		case n > max:
			sum += float64(max) / float64(n)
		default:
			sum += 1.0
		}
	}
	return sum / float64(len(lengths))
}

// RedundancyPenalty counts bullet pairs whose similarity reaches the
// threshold, as a fraction of all possible pairs. Similarity is token-set
// Jaccard, falling back to a character-sequence ratio when either token set
// is empty.
func RedundancyPenalty(ids, texts []string, threshold float64) (float64, []types.RedundancyPair) {
	if len(texts) < 2 {
		return 0, nil
	}
	tokenSets := make([]map[string]bool, len(texts))
	for i, text := range texts {
		tokenSets[i] = textsim.TokenSet(text)
	}

	var pairs []types.RedundancyPair
	redundant := 0
	total := 0
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			total++
			sim, ok := textsim.Jaccard(tokenSets[i], tokenSets[j])
			if !ok {
				sim = textsim.Ratio(texts[i], texts[j])
			}
			if sim >= threshold {
				redundant++
				pairs = append(pairs, types.RedundancyPair{
					BulletA:    ids[i],
					BulletB:    ids[j],
					Similarity: sim,
				})
			}
		}
	}
	return float64(redundant) / float64(total), pairs
}

// QualityScore averages the selected bullets' quant bonuses normalized by
// the bonus cap.
func QualityScore(selected []types.Candidate, bonusCap float64) float64 {
	if len(selected) == 0 || bonusCap <= 0 {
		return 0
	}
	var sum float64
	for _, cand := range selected {
		sum += cand.QuantBonus / bonusCap
	}
	return Clamp01(sum / float64(len(selected)))
}

// Score computes the full composite result for one iteration.
//
// displayTexts maps bullet id to the markup-stripped text that will render;
// length and redundancy are computed against it. hasProfile=false means no
// structured keyword profile exists: coverage is undefined and the final
// score degrades to the retrieval norm alone.
func (s *Scorer) Score(selected, all []types.Candidate, displayTexts map[string]string, evidence types.EvidenceSets, hasProfile bool) types.ScoreResult {
	result := types.ScoreResult{
		RetrievalScore: RetrievalNorm(selected, all),
	}

	ids := make([]string, len(selected))
	texts := make([]string, len(selected))
	lengths := make([]int, len(selected))
	result.LengthByBullet = make(map[string]int, len(selected))
	for i, cand := range selected {
		text, ok := displayTexts[cand.BulletID]
		if !ok {
			text = cand.Text
		}
		ids[i] = cand.BulletID
		texts[i] = text
		lengths[i] = len([]rune(text))
		result.LengthByBullet[cand.BulletID] = lengths[i]
	}

	result.LengthScore = LengthScore(lengths, s.params.MinBulletChars, s.params.MaxBulletChars)
	result.RedundancyPenalty, result.RedundancyPairs = RedundancyPenalty(ids, texts, s.params.RedundancyThreshold)
	result.QualityScore = QualityScore(selected, s.params.QuantBonusCap)

	if !hasProfile {
		result.FinalScore = int(math.Round(100 * Clamp01(result.RetrievalScore)))
		return result
	}

	result.CoverageBulletsOnly = CoverageNorm(evidence.MustBulletsOnly, evidence.NiceBulletsOnly, s.params.MustWeight)
	result.CoverageAll = CoverageNorm(evidence.MustAll, evidence.NiceAll, s.params.MustWeight)
	result.MustMissingBulletsOnly = missingKeywords(evidence.MustBulletsOnly)
	result.NiceMissingBulletsOnly = missingKeywords(evidence.NiceBulletsOnly)
	result.MustMissingAll = missingKeywords(evidence.MustAll)
	result.NiceMissingAll = missingKeywords(evidence.NiceAll)

	composite := s.params.Alpha*result.RetrievalScore +
		(1-s.params.Alpha)*result.CoverageBulletsOnly +
		s.params.LengthWeight*result.LengthScore +
		s.params.QualityWeight*result.QualityScore -
		s.params.RedundancyWeight*result.RedundancyPenalty
	result.FinalScore = int(math.Round(100 * Clamp01(composite)))
	return result
}
