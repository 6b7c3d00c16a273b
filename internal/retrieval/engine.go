// Package retrieval issues one similarity query per planned query phrase,
// recomputes cosine similarity client-side, and merges multi-hit results
// into a ranked, deduplicated candidate list.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
	"github.com/pinkpig777/agentic-resume-tailor/internal/vector"
)

// Config holds the retrieval tuning knobs. Values are fixed at construction
// and never mutated by a run.
type Config struct {
	QuantBonusPerPattern float64
	QuantBonusCap        float64
}

// DefaultConfig returns the standard retrieval configuration.
func DefaultConfig() Config {
	return Config{
		QuantBonusPerPattern: 0.05,
		QuantBonusCap:        0.20,
	}
}

// Engine runs retrieval passes against a vector backend.
type Engine struct {
	backend vector.Backend
	cfg     Config
}

// NewEngine returns a retrieval engine over the given backend.
func NewEngine(backend vector.Backend, cfg Config) (*Engine, error) {
	if backend == nil {
		return nil, fmt.Errorf("retrieval: backend is required")
	}
	if cfg.QuantBonusPerPattern < 0 || cfg.QuantBonusCap < 0 {
		return nil, fmt.Errorf("retrieval: quant bonus values must be non-negative")
	}
	return &Engine{backend: backend, cfg: cfg}, nil
}

// Retrieve runs every query item, merges hits by bullet id, applies the
// quantitative-impact bonus, and returns the candidates sorted best-first
// and truncated to finalK. A failing query item aborts the whole pass with
// a QueryError: a partially merged candidate set would bias the ranking.
func (e *Engine) Retrieve(ctx context.Context, items []types.QueryItem, perQueryK, finalK int) ([]types.Candidate, error) {
	if perQueryK <= 0 {
		return nil, fmt.Errorf("retrieval: per-query k must be positive, got %d", perQueryK)
	}
	if finalK <= 0 {
		return nil, fmt.Errorf("retrieval: final k must be positive, got %d", finalK)
	}

	merged := make(map[string]*types.Candidate)
	for _, item := range items {
		queryText := buildQueryText(item)
		if queryText == "" {
			continue
		}
		queryVec, err := e.backend.Embed(ctx, queryText)
		if err != nil {
			return nil, &QueryError{Query: queryText, Cause: err}
		}
		docs, err := e.backend.Query(ctx, queryText, perQueryK)
		if err != nil {
			return nil, &QueryError{Query: queryText, Cause: err}
		}
		for _, doc := range docs {
			cos := Cosine(queryVec, doc.Embedding)
			hit := types.Hit{
				Query:    queryText,
				Purpose:  item.Purpose,
				Weight:   item.Weight,
				Cosine:   cos,
				Weighted: item.Weight * cos,
			}
			cand, ok := merged[doc.ID]
			if !ok {
				cand = &types.Candidate{
					BulletID: doc.ID,
					Source:   doc.Metadata["source"],
					Text:     doc.Text,
					Meta:     doc.Metadata,
					BestHit:  hit,
				}
				merged[doc.ID] = cand
			}
			cand.Hits = append(cand.Hits, hit)
			cand.TotalWeighted += hit.Weighted
			if hit.Weighted > cand.BestHit.Weighted {
				cand.BestHit = hit
			}
		}
	}

	candidates := make([]types.Candidate, 0, len(merged))
	for _, cand := range merged {
		cand.QuantBonus = QuantBonus(cand.Text, e.cfg.QuantBonusPerPattern, e.cfg.QuantBonusCap)
		cand.SelectionScore = cand.BestHit.Weighted + cand.QuantBonus
		cand.EffectiveTotalWeighted = cand.TotalWeighted + cand.QuantBonus
		candidates = append(candidates, *cand)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.SelectionScore != b.SelectionScore {
			return a.SelectionScore > b.SelectionScore
		}
		if a.EffectiveTotalWeighted != b.EffectiveTotalWeighted {
			return a.EffectiveTotalWeighted > b.EffectiveTotalWeighted
		}
		if a.TotalWeighted != b.TotalWeighted {
			return a.TotalWeighted > b.TotalWeighted
		}
		return a.BulletID < b.BulletID
	})

	if len(candidates) > finalK {
		candidates = candidates[:finalK]
	}
	return candidates, nil
}

// buildQueryText appends the item's boost keywords to its base phrase.
func buildQueryText(item types.QueryItem) string {
	parts := make([]string, 0, 1+len(item.BoostKeywords))
	if s := strings.TrimSpace(item.Text); s != "" {
		parts = append(parts, s)
	}
	for _, boost := range item.BoostKeywords {
		if b := strings.TrimSpace(boost); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, " ")
}

// Cosine computes the cosine similarity between two vectors. Mismatched or
// zero-magnitude vectors score 0 rather than erroring: a degenerate stored
// embedding should rank last, not kill the pass.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
