package types

// QueryItem is one normalized retrieval query consumed by the retrieval
// engine. Both query sources (structured profile and heuristic fallback)
// are converted into this shape before retrieval runs.
type QueryItem struct {
	Text          string   `json:"text"`
	Purpose       string   `json:"purpose"`
	BoostKeywords []string `json:"boost_keywords,omitempty"`
	Weight        float64  `json:"weight"`
}

// Hit records one similarity result for one query against one bullet
type Hit struct {
	Query    string  `json:"query"`
	Purpose  string  `json:"purpose"`
	Weight   float64 `json:"weight"`
	Cosine   float64 `json:"cosine"`
	Weighted float64 `json:"weighted"`
}

// Candidate is a content fragment merged across all hits it received in one
// retrieval pass. Candidates are rebuilt fresh every iteration and never
// mutated across iterations.
type Candidate struct {
	BulletID string            `json:"bullet_id"`
	Source   string            `json:"source"`
	Text     string            `json:"text_latex"`
	Meta     map[string]string `json:"meta,omitempty"`

	Hits    []Hit `json:"hits"`
	BestHit Hit   `json:"best_hit"`

	TotalWeighted          float64 `json:"total_weighted"`
	QuantBonus             float64 `json:"quant_bonus"`
	SelectionScore         float64 `json:"selection_score"`
	EffectiveTotalWeighted float64 `json:"effective_total_weighted"`
}

// Fragment is the unit of keyword matching: a bullet (or pseudo-bullet such
// as the skills section) identified by a stable id.
type Fragment struct {
	ID   string            `json:"bullet_id"`
	Text string            `json:"text_latex"`
	Meta map[string]string `json:"meta,omitempty"`
}
