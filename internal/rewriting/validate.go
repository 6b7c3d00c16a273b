// Package rewriting tightens selected bullets while guaranteeing the output
// never claims anything the original text did not: every candidate rewrite
// is validated against the original and falls back to it on any violation.
package rewriting

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

const (
	ViolationNewNumbers        = "new_numbers"
	ViolationNewTools          = "new_tools"
	ViolationUnbalancedBraces  = "unbalanced_braces"
	ViolationDanglingBackslash = "dangling_backslash"
	ViolationTooShort          = "too_short"
	ViolationTooLong           = "too_long"
	ViolationSemanticDrift     = "semantic_drift"
)

var (
	numberRe    = regexp.MustCompile(`\b\d+(?:\.\d+)?%?\b`)
	tokenRe     = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9+./#-]*`)
	toolCharsRe = regexp.MustCompile(`[0-9+./#-]`)
)

// normalizeNumber strips the percent sign and canonicalizes the numeric
// value so "10.50%" and "10.5" compare equal.
func normalizeNumber(token string) (string, bool) {
	raw := strings.TrimSuffix(strings.TrimSpace(token), "%")
	if raw == "" {
		return "", false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(v, 'f', -1, 64), true
}

func extractNumbers(text string) map[string]struct{} {
	values := make(map[string]struct{})
	for _, token := range numberRe.FindAllString(text, -1) {
		if norm, ok := normalizeNumber(token); ok {
			values[norm] = struct{}{}
		}
	}
	return values
}

// Tokenize splits text into lower-cased word/tool tokens.
func Tokenize(text string) []string {
	tokens := tokenRe.FindAllString(text, -1)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return tokens
}

// extractToolTokens collects tokens that look tool- or version-like (contain
// a digit or tool punctuation) or are known terms from the allowlist.
func extractToolTokens(text string, allow map[string]struct{}) map[string]struct{} {
	toolLike := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		if _, ok := allow[token]; ok {
			toolLike[token] = struct{}{}
		} else if toolCharsRe.MatchString(token) {
			toolLike[token] = struct{}{}
		}
	}
	return toolLike
}

func balancedBraces(text string) bool {
	depth := 0
	for _, ch := range text {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// ValidateRewrite checks a candidate rewrite against the original text and
// allowlist. Numeric tokens and tool-like tokens present in the candidate
// but absent from the original are violations, as are unbalanced grouping
// braces and a trailing unescaped line-continuation marker.
func ValidateRewrite(originalText, rewrittenText string, allowlist map[string]struct{}) types.RewriteValidation {
	originalTokens := make(map[string]struct{})
	for _, t := range Tokenize(originalText) {
		originalTokens[t] = struct{}{}
	}

	originalNumbers := extractNumbers(originalText)
	var newNumbers []string
	for num := range extractNumbers(rewrittenText) {
		if _, ok := originalNumbers[num]; !ok {
			newNumbers = append(newNumbers, num)
		}
	}
	sort.Strings(newNumbers)

	var newTools []string
	for token := range extractToolTokens(rewrittenText, allowlist) {
		if _, ok := allowlist[token]; ok {
			continue
		}
		if _, ok := originalTokens[token]; ok {
			continue
		}
		// Pure numeric tokens belong to the numbers check; an equivalent
		// form of an original number ("10.5" for "10.50%") is not a new
		// tool.
		if norm, ok := normalizeNumber(token); ok {
			if _, present := originalNumbers[norm]; present {
				continue
			}
		}
		newTools = append(newTools, token)
	}
	sort.Strings(newTools)

	var violations []string
	if len(newNumbers) > 0 {
		violations = append(violations, ViolationNewNumbers)
	}
	if len(newTools) > 0 {
		violations = append(violations, ViolationNewTools)
	}
	if !balancedBraces(rewrittenText) {
		violations = append(violations, ViolationUnbalancedBraces)
	}
	if strings.HasSuffix(strings.TrimRight(rewrittenText, " \t\n"), `\`) {
		violations = append(violations, ViolationDanglingBackslash)
	}

	return types.RewriteValidation{
		OK:         len(violations) == 0,
		Violations: violations,
		NewNumbers: newNumbers,
		NewTools:   newTools,
	}
}
