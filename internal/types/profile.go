// Package types provides type definitions for structured data used throughout the resume tailoring system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// KeywordCategory classifies how strongly a job posting demands a keyword
type KeywordCategory string

const (
	// KeywordMustHave marks a hard requirement from the job posting
	KeywordMustHave KeywordCategory = "must_have"
	// KeywordNiceToHave marks a preferred-but-optional requirement
	KeywordNiceToHave KeywordCategory = "nice_to_have"
)

// Keyword represents a single requirement term extracted from a job posting.
// Canonical is the matching key; Raw preserves the posting's original spelling.
type Keyword struct {
	Raw       string          `json:"raw"`
	Canonical string          `json:"canonical"`
	Category  KeywordCategory `json:"category"`
}

// ExperienceQuery is one planned retrieval query from a target profile
type ExperienceQuery struct {
	Query         string   `json:"query"`
	Purpose       string   `json:"purpose,omitempty"`
	BoostKeywords []string `json:"boost_keywords,omitempty"`
	Weight        float64  `json:"weight,omitempty"`
}

// RetrievalPlan holds the planned queries for pulling relevant experience
type RetrievalPlan struct {
	ExperienceQueries []ExperienceQuery `json:"experience_queries"`
}

// TargetProfile is the structured view of a job posting produced by the
// profile extractor. When extraction fails the pipeline runs without one.
type TargetProfile struct {
	RoleTitle     string        `json:"role_title,omitempty"`
	RoleSummary   string        `json:"role_summary,omitempty"`
	MustHave      []Keyword     `json:"must_have"`
	NiceToHave    []Keyword     `json:"nice_to_have"`
	RetrievalPlan RetrievalPlan `json:"retrieval_plan"`
}

// Keywords returns the profile's keyword lists keyed by category
func (p *TargetProfile) Keywords() (must, nice []Keyword) {
	if p == nil {
		return nil, nil
	}
	return p.MustHave, p.NiceToHave
}
