package types

import "time"

// ReportBullet is one selected bullet as it will render, with provenance
type ReportBullet struct {
	BulletID   string  `json:"bullet_id"`
	Source     string  `json:"source"`
	Text       string  `json:"text_latex"`
	QuantBonus float64 `json:"quant_bonus"`
	Rewritten  bool    `json:"rewritten"`
}

// RunReport is the per-run artifact consumed by rendering and UI
// collaborators. It is self-contained: selected bullets, scores, missing
// keywords, rewrite decisions, and the full iteration trace.
type RunReport struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	RoleTitle   string `json:"role_title,omitempty"`
	ProfileUsed bool   `json:"profile_used"`

	BestIterationIndex int            `json:"best_iteration_index"`
	FinalScore         int            `json:"final_score"`
	Score              *ScoreResult   `json:"score,omitempty"`
	SelectedIDs        []string       `json:"selected_ids"`
	Bullets            []ReportBullet `json:"bullets"`

	Evidence         EvidenceSets               `json:"evidence"`
	RewriteDecisions map[string]RewriteDecision `json:"rewrite_decisions,omitempty"`
	Iterations       []IterationTrace           `json:"iterations"`
}
