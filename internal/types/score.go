package types

// RedundancyPair records two selected bullets judged near-duplicates
type RedundancyPair struct {
	BulletA    string  `json:"bullet_a"`
	BulletB    string  `json:"bullet_b"`
	Similarity float64 `json:"similarity"`
}

// ScoreResult is the composite scoring output for one iteration's selection.
// The missing-keyword lists come in two views: bullets-only (what will
// literally render on the page) and all-plus-skills (anywhere in the
// profile). Only the bullets-only view drives loop feedback; the all view is
// reporting-only.
type ScoreResult struct {
	FinalScore int `json:"final_score"`

	RetrievalScore      float64 `json:"retrieval_score"`
	CoverageBulletsOnly float64 `json:"coverage_bullets_only"`
	CoverageAll         float64 `json:"coverage_all"`
	LengthScore         float64 `json:"length_score"`
	RedundancyPenalty   float64 `json:"redundancy_penalty"`
	QualityScore        float64 `json:"quality_score"`

	MustMissingBulletsOnly []string `json:"must_missing_bullets_only"`
	NiceMissingBulletsOnly []string `json:"nice_missing_bullets_only"`
	MustMissingAll         []string `json:"must_missing_all"`
	NiceMissingAll         []string `json:"nice_missing_all"`

	LengthByBullet  map[string]int   `json:"length_by_bullet,omitempty"`
	RedundancyPairs []RedundancyPair `json:"redundancy_pairs,omitempty"`

	// BoostTerms are the candidate boost terms for the next iteration,
	// derived from MustMissingBulletsOnly.
	BoostTerms []string `json:"boost_terms"`
}
