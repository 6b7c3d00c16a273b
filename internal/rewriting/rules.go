package rewriting

import (
	"regexp"
	"strings"
)

// Deadening lead-in phrases stripped from the front of a bullet. Order
// matters: longer phrases first so "was responsible for" wins over
// "responsible for".
var leadInPhrases = []string{
	"was responsible for",
	"responsible for",
	"worked on",
	"helped with",
	"helped to",
	"tasked with",
	"assisted with",
	"assisted in",
	"duties included",
	"in charge of",
}

var (
	bulletMarkerRe  = regexp.MustCompile(`^\s*(?:[-*•·]|\d+[.)])\s+`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	parentheticalRe = regexp.MustCompile(`\s*\([^()]*\)`)
)

// ApplyLocalRules runs the non-generative rewrite chain: trim leading bullet
// markers, collapse whitespace, strip deadening lead-in phrases, and if the
// result still exceeds maxChars, drop parenthetical asides then truncate at
// the first clause boundary.
func ApplyLocalRules(text string, maxChars int) string {
	out := bulletMarkerRe.ReplaceAllString(text, "")
	out = strings.TrimSpace(whitespaceRe.ReplaceAllString(out, " "))

	lowered := strings.ToLower(out)
	for _, phrase := range leadInPhrases {
		if strings.HasPrefix(lowered, phrase+" ") {
			out = strings.TrimSpace(out[len(phrase)+1:])
			break
		}
	}

	if maxChars > 0 && len(out) > maxChars {
		out = strings.TrimSpace(parentheticalRe.ReplaceAllString(out, ""))
	}
	if maxChars > 0 && len(out) > maxChars {
		if idx := strings.IndexAny(out, ";:"); idx > 0 {
			out = strings.TrimSpace(out[:idx])
		}
	}
	return out
}
