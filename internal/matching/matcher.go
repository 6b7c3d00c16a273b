package matching

import (
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// safeSubstringMinLen is the minimum token length for the substring tier.
// Short tokens like "go" or "c" would false-positive inside other words.
const safeSubstringMinLen = 6

// Matcher matches canonical keywords against fragment corpora using tiered
// evidence: exact phrase, family specifics, then controlled substring.
type Matcher struct {
	canon *canon.Canonicalizer

	// families maps a canonical generic term to its canonical specifics in
	// registration order; the first specific found wins.
	families map[string][]string
}

// NewMatcher builds a Matcher from a canonicalizer and a family registry
func NewMatcher(c *canon.Canonicalizer, cfg *FamilyConfig) *Matcher {
	if cfg == nil {
		cfg = DefaultFamilyConfig()
	}

	m := &Matcher{
		canon:    c,
		families: make(map[string][]string, len(cfg.Families)),
	}

	for _, f := range cfg.Families {
		generic := c.CanonicalizeTerm(f.Generic)
		if generic == "" {
			continue
		}
		seen := make(map[string]bool, len(f.SatisfiedBy))
		specifics := make([]string, 0, len(f.SatisfiedBy))
		for _, s := range f.SatisfiedBy {
			cs := c.CanonicalizeTerm(s)
			if cs == "" || seen[cs] {
				continue
			}
			seen[cs] = true
			specifics = append(specifics, cs)
		}
		m.families[generic] = specifics
	}

	return m
}

// CanonicalizeFragments strips markup and canonicalizes fragment text once
// so repeated matching passes against the same corpus stay cheap.
func (m *Matcher) CanonicalizeFragments(fragments []types.Fragment) []types.Fragment {
	out := make([]types.Fragment, len(fragments))
	for i, f := range fragments {
		out[i] = types.Fragment{
			ID:   f.ID,
			Text: m.canon.CanonicalizeText(canon.StripMarkup(f.Text)),
			Meta: f.Meta,
		}
	}
	return out
}

// Match produces one MatchEvidence per keyword. Tiers are tried in
// confidence order and the first success wins; a keyword's tier is never
// downgraded by a later weaker hit.
func (m *Matcher) Match(keywords []types.Keyword, fragments []types.Fragment) []types.MatchEvidence {
	corpus := m.CanonicalizeFragments(fragments)

	evidences := make([]types.MatchEvidence, 0, len(keywords))
	for _, kw := range keywords {
		evidences = append(evidences, m.matchOne(kw, corpus))
	}
	return evidences
}

func (m *Matcher) matchOne(kw types.Keyword, corpus []types.Fragment) types.MatchEvidence {
	term := kw.Canonical
	if term == "" {
		term = kw.Raw
	}
	k := m.canon.CanonicalizeTerm(term)

	if k == "" {
		return types.MatchEvidence{Keyword: k, Tier: types.TierNone, BulletIDs: []string{}}
	}

	// Tier 1: exact phrase at word boundaries.
	if ids := fragmentsContaining(corpus, k); len(ids) > 0 {
		return types.MatchEvidence{Keyword: k, Tier: types.TierExact, SatisfiedBy: k, BulletIDs: ids}
	}

	// Tier 2: a registered generic satisfied by one of its specifics.
	if specifics, ok := m.families[k]; ok {
		for _, spec := range specifics {
			if ids := fragmentsContaining(corpus, spec); len(ids) > 0 {
				return types.MatchEvidence{Keyword: k, Tier: types.TierFamily, SatisfiedBy: spec, BulletIDs: ids}
			}
		}
	}

	// Tier 3: substring, restricted to long plain tokens.
	if isSafeSubstringToken(k) {
		ids := make([]string, 0, 1)
		for _, f := range corpus {
			if strings.Contains(f.Text, k) {
				ids = append(ids, f.ID)
			}
		}
		if len(ids) > 0 {
			return types.MatchEvidence{Keyword: k, Tier: types.TierSubstring, SatisfiedBy: k, BulletIDs: ids}
		}
	}

	return types.MatchEvidence{Keyword: k, Tier: types.TierNone, BulletIDs: []string{}}
}

func fragmentsContaining(corpus []types.Fragment, phrase string) []string {
	var ids []string
	for _, f := range corpus {
		if canon.ContainsTerm(f.Text, phrase) {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// isSafeSubstringToken restricts the substring tier to purely alphanumeric
// tokens of at least safeSubstringMinLen characters.
func isSafeSubstringToken(t string) bool {
	if len(t) < safeSubstringMinLen {
		return false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
