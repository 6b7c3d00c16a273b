package canon

import (
	"regexp"
	"strings"
)

// maxUnwrapPasses bounds the nested-command unwrapping so malformed markup
// cannot loop forever.
const maxUnwrapPasses = 6

var (
	latexTwoArgsRe = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?\{([^{}]*)\}\{([^{}]*)\}`)
	latexOneArgRe  = regexp.MustCompile(`\\[a-zA-Z]+\*?(?:\[[^\]]*\])?\{([^{}]*)\}`)
	latexCmdRe     = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	latexBracesRe  = regexp.MustCompile(`[{}]`)
	latexMathRe    = regexp.MustCompile(`\$(.*?)\$`)
)

var latexEscapes = strings.NewReplacer(
	`\%`, "%",
	`\&`, "&",
	`\$`, "$",
	`\_`, "_",
	`\#`, "#",
)

// StripMarkup converts LaTeX bullet text into plain text for matching.
// The result is for matching only, never for display: nested one- and
// two-argument commands are unwrapped into their visible text, remaining
// control sequences and grouping braces are dropped, and whitespace is
// collapsed.
func StripMarkup(latex string) string {
	s := latexEscapes.Replace(latex)
	s = latexMathRe.ReplaceAllString(s, " $1 ")

	for i := 0; i < maxUnwrapPasses; i++ {
		prev := s
		s = latexTwoArgsRe.ReplaceAllString(s, " $2 ")
		s = latexOneArgRe.ReplaceAllString(s, " $1 ")
		if s == prev {
			break
		}
	}

	s = latexCmdRe.ReplaceAllString(s, " ")
	s = latexBracesRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, `\`, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
