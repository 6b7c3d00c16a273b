package types

// IterationScores holds the score summary recorded in an iteration trace
type IterationScores struct {
	Final               int     `json:"final"`
	Retrieval           float64 `json:"retrieval"`
	CoverageBulletsOnly float64 `json:"coverage_bullets_only"`
	CoverageAll         float64 `json:"coverage_all"`
}

// IterationTrace is the append-only record of one loop iteration. Traces are
// assembled by value by the controller and never mutated retroactively.
type IterationTrace struct {
	Iteration      int             `json:"iteration"`
	QueriesUsed    []string        `json:"queries_used"`
	BoostTerms     []string        `json:"boost_terms,omitempty"`
	CandidateCount int             `json:"candidate_count"`
	SelectedIDs    []string        `json:"selected_ids"`
	Scored         bool            `json:"scored"`
	Scores         IterationScores `json:"scores,omitempty"`

	MustMissingBulletsOnly []string `json:"must_missing_bullets_only,omitempty"`
	NiceMissingBulletsOnly []string `json:"nice_missing_bullets_only,omitempty"`
	MustMissingAll         []string `json:"must_missing_all,omitempty"`
	NiceMissingAll         []string `json:"nice_missing_all,omitempty"`
}

// LoopResult is the outcome of a full tailoring run: the best-scoring
// iteration plus the full per-iteration trace for auditability and replay.
type LoopResult struct {
	BestIterationIndex int          `json:"best_iteration_index"`
	BestSelectedIDs    []string     `json:"best_selected_ids"`
	BestCandidates     []Candidate  `json:"best_candidates"`
	BestSelected       []Candidate  `json:"best_selected"`
	BestScore          *ScoreResult `json:"best_score,omitempty"`
	BestEvidence       EvidenceSets `json:"best_evidence"`

	// BestRewrites maps bullet id to the text that will render; equals the
	// original text for bullets whose rewrite was rejected or disabled.
	BestRewrites         map[string]string          `json:"best_rewrites,omitempty"`
	BestRewriteDecisions map[string]RewriteDecision `json:"best_rewrite_decisions,omitempty"`

	ProfileUsed bool             `json:"profile_used"`
	Iterations  []IterationTrace `json:"iterations"`
}
