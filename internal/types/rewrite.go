package types

// RewriteValidation is the outcome of checking a rewritten bullet against
// its original text and allow-list.
type RewriteValidation struct {
	OK         bool     `json:"ok"`
	Violations []string `json:"violations,omitempty"`
	NewNumbers []string `json:"new_numbers,omitempty"`
	NewTools   []string `json:"new_tools,omitempty"`
}

// RewriteDecision records what happened to one bullet during rewriting.
// FinalText equals OriginalText whenever validation rejected the candidate.
type RewriteDecision struct {
	BulletID     string            `json:"bullet_id"`
	OriginalText string            `json:"original_text"`
	FinalText    string            `json:"final_text"`
	Changed      bool              `json:"changed"`
	FallbackUsed bool              `json:"fallback_used"`
	Validation   RewriteValidation `json:"validation"`
}
