package types

import (
	"sort"
	"strings"
)

// ExperienceEntry is one job held by the candidate, with its achievement bullets
type ExperienceEntry struct {
	Company string   `json:"company"`
	Title   string   `json:"title,omitempty"`
	Bullets []string `json:"bullets"`
}

// ProjectEntry is one personal or side project, with its achievement bullets
type ProjectEntry struct {
	Name    string   `json:"name"`
	Bullets []string `json:"bullets"`
}

// ResumeSnapshot is a read-only export of the candidate's content store.
// The tailoring run never mutates it; the snapshot feeds vector store
// seeding and the skills pseudo-fragment used in coverage scoring.
type ResumeSnapshot struct {
	Experiences []ExperienceEntry `json:"experiences"`
	Projects    []ProjectEntry    `json:"projects,omitempty"`

	// Skills maps a section field name (e.g. "languages_frameworks") to its
	// rendered text line.
	Skills map[string]string `json:"skills,omitempty"`
}

// SkillsText joins the snapshot's skills lines into the single pseudo-bullet
// text used by the all-plus-skills coverage view. Fields are emitted in a
// fixed order so the output is deterministic.
func (s *ResumeSnapshot) SkillsText() string {
	if s == nil || len(s.Skills) == 0 {
		return ""
	}
	ordered := []string{"languages_frameworks", "ai_ml", "db_tools"}
	parts := make([]string, 0, len(s.Skills))
	seen := make(map[string]bool, len(s.Skills))
	for _, field := range ordered {
		if v := s.Skills[field]; v != "" {
			parts = append(parts, v)
			seen[field] = true
		}
	}
	// Remaining fields in sorted order for determinism.
	rest := make([]string, 0, len(s.Skills))
	for field := range s.Skills {
		if !seen[field] && s.Skills[field] != "" {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range rest {
		parts = append(parts, s.Skills[field])
	}
	return strings.Join(parts, " | ")
}
