package queryplan

import (
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// BoostOptions controls how missing-keyword boost terms are folded into the
// next iteration's query items.
type BoostOptions struct {
	// PerItemCap bounds the boosts appended to any single query item so a
	// long missing list does not dilute the embedding.
	PerItemCap int
	// BoostQueryWeight is the weight of the dedicated boost-only query item
	// appended when any boost terms exist.
	BoostQueryWeight float64
}

// DefaultBoostOptions returns the standard boosting behavior.
func DefaultBoostOptions() BoostOptions {
	return BoostOptions{
		PerItemCap:       4,
		BoostQueryWeight: 1.6,
	}
}

// ApplyBoosts returns a new item list with the boost terms appended to each
// item's boost keywords (capped per item) plus one dedicated boost-only
// query at elevated weight. The input items are never mutated. With no
// boost terms the items pass through unchanged.
func ApplyBoosts(items []types.QueryItem, boostTerms []string, opts BoostOptions) []types.QueryItem {
	boostTerms = dedupeKeepOrder(lowerAll(boostTerms))
	if len(boostTerms) == 0 {
		return items
	}

	out := make([]types.QueryItem, 0, len(items)+1)
	for _, item := range items {
		merged := dedupeKeepOrder(append(lowerAll(item.BoostKeywords), boostTerms...))
		if opts.PerItemCap > 0 && len(merged) > opts.PerItemCap {
			merged = merged[:opts.PerItemCap]
		}
		boosted := item
		boosted.BoostKeywords = merged
		if boosted.Weight < 1.0 {
			boosted.Weight = 1.0
		}
		out = append(out, boosted)
	}

	out = append(out, types.QueryItem{
		Text:    strings.Join(boostTerms, " "),
		Purpose: "boost",
		Weight:  opts.BoostQueryWeight,
	})
	return out
}
