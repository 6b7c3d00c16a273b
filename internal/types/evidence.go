package types

// MatchTier is the confidence level of a keyword match
type MatchTier string

const (
	// TierExact is a word-boundary-safe match of the full canonical phrase
	TierExact MatchTier = "exact"
	// TierAlias is reserved for a future alias tier between exact and family
	TierAlias MatchTier = "alias"
	// TierFamily is a generic term satisfied by one of its registered specifics
	TierFamily MatchTier = "family"
	// TierSubstring is a plain substring match of a long safe token
	TierSubstring MatchTier = "substring"
	// TierNone means the keyword was not found at all
	TierNone MatchTier = "none"
)

// MatchEvidence records how one keyword was satisfied by a fragment corpus.
// One evidence item is produced per keyword per matching pass.
type MatchEvidence struct {
	Keyword     string    `json:"keyword"`
	Tier        MatchTier `json:"tier"`
	SatisfiedBy string    `json:"satisfied_by,omitempty"`
	BulletIDs   []string  `json:"bullet_ids"`
}

// EvidenceSets groups the four matching passes run per iteration: must-have
// and nice-to-have keywords, each against the selected bullets only and
// against all candidates plus the skills pseudo-fragment.
type EvidenceSets struct {
	MustBulletsOnly []MatchEvidence `json:"must_bullets_only"`
	NiceBulletsOnly []MatchEvidence `json:"nice_bullets_only"`
	MustAll         []MatchEvidence `json:"must_all"`
	NiceAll         []MatchEvidence `json:"nice_all"`
}
