package queryplan

import "strings"

// FallbackQueries builds heuristic retrieval queries straight from the job
// text when no structured profile is available: a condensed query from the
// leading lines, followed by the posting's bullet-like lines. The job text
// itself is the last resort so retrieval always has at least one query.
func FallbackQueries(jobText string, maxQueries int) []string {
	if maxQueries <= 0 {
		maxQueries = 6
	}

	var lines []string
	for _, line := range strings.Split(jobText, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}

	var out []string
	for _, line := range lines {
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") && !strings.HasPrefix(line, "*") {
			continue
		}
		bullet := strings.TrimSpace(strings.TrimLeft(line, "-•* "))
		if len(bullet) >= 12 {
			out = append(out, bullet)
		}
	}

	head := lines
	if len(head) > 20 {
		head = head[:20]
	}
	condensed := strings.Join(strings.Fields(strings.Join(head, " ")), " ")
	if condensed != "" && !contains(out, condensed) {
		out = append([]string{condensed}, out...)
	}

	seen := make(map[string]struct{}, len(out))
	var deduped []string
	for _, q := range out {
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, q)
		if len(deduped) >= maxQueries {
			break
		}
	}

	if len(deduped) == 0 {
		if trimmed := strings.TrimSpace(jobText); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}
	return deduped
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
