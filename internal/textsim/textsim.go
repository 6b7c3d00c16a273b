// Package textsim provides the token and character similarity measures used
// for redundancy detection and rewrite drift checks.
package textsim

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// TokenSet extracts the lowercase word tokens of s as a set
func TokenSet(s string) map[string]bool {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// Jaccard returns the token-set Jaccard overlap of a and b.
// The second return is false when either set is empty, signalling that the
// caller should fall back to a character-level ratio.
func Jaccard(a, b map[string]bool) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union), true
}

// Ratio returns a similarity ratio in [0,1] between two strings based on
// recursive longest-common-substring matching: 2*M/T where M is the total
// number of matched characters and T the combined length.
func Ratio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matched := matchedChars(a, b)
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchedChars sums the lengths of matching blocks found by recursively
// taking the longest common substring and recursing on both sides.
func matchedChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedChars(a[:ai], b[:bi])
	total += matchedChars(a[ai+size:], b[bi+size:])
	return total
}

func longestCommonSubstring(a, b string) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] holds the length of the common suffix ending at a[i-1], b[j-1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
