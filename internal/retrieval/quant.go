package retrieval

import "regexp"

// Patterns signaling a measurable, quantified outcome in a bullet. Each
// matching pattern adds BonusPerPattern to the candidate's score, capped
// at BonusCap.
var quantPatterns = []*regexp.Regexp{
	// percentages: "40%", "99.9 %"
	regexp.MustCompile(`\d+(?:\.\d+)?\s*%`),
	// large absolute counts: "1,200,000", "3M", "10k users", "2 billion"
	regexp.MustCompile(`(?i)\b\d{1,3}(?:,\d{3})+\b|\b\d+(?:\.\d+)?\s*(?:k|m|b|million|billion|thousand)\b`),
	// latency / throughput units: "200ms", "5s", "10k qps", "3x"
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:ms|s|sec|secs|seconds|min|mins|minutes|qps|rps|tps|req/s|x)\b`),
	// "improved/reduced ... <number>" phrasing
	regexp.MustCompile(`(?i)\b(?:improved|reduced|increased|decreased|cut|grew|boosted|lowered)\b[^.;]*?\d`),
	// explicit before/after: "from 2s to 200ms"
	regexp.MustCompile(`(?i)\bfrom\s+\S*\d\S*\s+to\s+\S*\d`),
}

// QuantBonus scores the quantitative-impact signal of a bullet text.
func QuantBonus(text string, perPattern, maxBonus float64) float64 {
	bonus := 0.0
	for _, re := range quantPatterns {
		if re.MatchString(text) {
			bonus += perPattern
		}
	}
	if bonus > maxBonus {
		bonus = maxBonus
	}
	return bonus
}
