package canon

import (
	"regexp"
	"sort"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Canonicalizer applies the configured normalization rules. Construct one
// with New and share it freely; it is immutable after construction.
type Canonicalizer struct {
	opts       Options
	dropRe     *regexp.Regexp
	exceptions map[string]bool

	variantToCanon map[string]string
	// variants holds the substitution keys ordered longest first so
	// multi-word variants win over their single-word prefixes.
	variants []string
}

// New builds a Canonicalizer from a config. Nil falls back to defaults.
func New(cfg *Config) *Canonicalizer {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	c := &Canonicalizer{
		opts:           cfg.Options,
		dropRe:         buildDropRegexp(cfg.Options.KeepChars),
		exceptions:     make(map[string]bool, len(cfg.Options.SeparatorExceptions)),
		variantToCanon: make(map[string]string),
	}

	for _, ex := range cfg.Options.SeparatorExceptions {
		c.exceptions[c.baseNormalize(ex)] = true
	}

	for _, g := range cfg.Groups {
		canonical := strings.TrimSpace(g.Canonical)
		if canonical == "" {
			continue
		}
		canonNorm := c.baseNormalize(canonical)
		c.variantToCanon[canonNorm] = canonNorm
		for _, v := range g.Variants {
			if strings.TrimSpace(v) == "" {
				continue
			}
			c.variantToCanon[c.baseNormalize(v)] = canonNorm
		}
	}

	c.variants = make([]string, 0, len(c.variantToCanon))
	for v := range c.variantToCanon {
		c.variants = append(c.variants, v)
	}
	sort.Slice(c.variants, func(i, j int) bool {
		if len(c.variants[i]) != len(c.variants[j]) {
			return len(c.variants[i]) > len(c.variants[j])
		}
		return c.variants[i] < c.variants[j]
	})

	return c
}

// buildDropRegexp compiles the character filter that replaces everything
// outside lowercase alphanumerics, whitespace, and the keep set with spaces.
func buildDropRegexp(keepChars string) *regexp.Regexp {
	var class strings.Builder
	class.WriteString(`[^a-z0-9\s`)
	for _, ch := range keepChars {
		class.WriteString(regexp.QuoteMeta(string(ch)))
	}
	class.WriteString(`]+`)
	return regexp.MustCompile(class.String())
}

// baseNormalize lowercases, drops disallowed characters, and collapses
// whitespace.
func (c *Canonicalizer) baseNormalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if c.opts.CollapseWhitespace {
		s = whitespaceRe.ReplaceAllString(s, " ")
	}
	s = c.dropRe.ReplaceAllString(s, " ")
	if c.opts.CollapseWhitespace {
		s = whitespaceRe.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s)
}

// CanonicalizeTerm canonicalizes a single keyword or phrase for matching.
// Separator splitting is skipped for registered exceptions such as "ci/cd".
func (c *Canonicalizer) CanonicalizeTerm(term string) string {
	s := c.baseNormalize(term)

	if !c.exceptions[s] {
		if c.opts.SlashToSpace {
			s = strings.ReplaceAll(s, "/", " ")
		}
		if c.opts.DashToSpace {
			s = strings.ReplaceAll(s, "-", " ")
		}
		if c.opts.CollapseWhitespace {
			s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
		}
	}

	if canon, ok := c.variantToCanon[s]; ok {
		return canon
	}
	return s
}

// CanonicalizeText canonicalizes free text for matching. Variants are
// substituted longest-match-first: multi-word variants as substrings,
// single-word variants only at word boundaries.
func (c *Canonicalizer) CanonicalizeText(text string) string {
	s := c.baseNormalize(text)

	for _, variant := range c.variants {
		canon := c.variantToCanon[variant]
		if variant == "" || variant == canon {
			continue
		}
		if strings.Contains(variant, " ") {
			s = strings.ReplaceAll(s, variant, canon)
		} else {
			s = replaceWord(s, variant, canon)
		}
	}

	if c.opts.CollapseWhitespace {
		s = whitespaceRe.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s)
}

// isWordChar reports whether b is part of a word in canonical text.
// Punctuation from the keep set acts as a boundary, matching the behavior
// the matcher relies on for terms like "c++".
func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// ContainsTerm reports whether phrase occurs in text at word boundaries.
// Both arguments must already be canonicalized.
func ContainsTerm(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)
		beforeOK := idx == 0 || !isWordChar(text[idx-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

// replaceWord replaces whole-word occurrences of old with new
func replaceWord(text, old, new string) string {
	if old == "" {
		return text
	}
	var sb strings.Builder
	start := 0
	for {
		idx := strings.Index(text[start:], old)
		if idx < 0 {
			sb.WriteString(text[start:])
			return sb.String()
		}
		idx += start
		end := idx + len(old)
		beforeOK := idx == 0 || !isWordChar(text[idx-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			sb.WriteString(text[start:idx])
			sb.WriteString(new)
			start = end
		} else {
			sb.WriteString(text[start : idx+1])
			start = idx + 1
		}
	}
}
