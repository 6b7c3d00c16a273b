package queryplan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/llm"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// ProfileExtractor turns raw job text into a structured target profile.
// Extraction failure is expected and recoverable: callers fall back to
// FallbackQueries and run retrieval-only.
type ProfileExtractor interface {
	Extract(ctx context.Context, jobText string) (*types.TargetProfile, error)
}

// profileSchemaJSON validates the extractor's LLM output before it is
// trusted by the rest of the pipeline.
const profileSchemaJSON = `{
  "type": "object",
  "required": ["role_title", "must_have", "queries"],
  "properties": {
    "role_title": {"type": "string", "minLength": 1},
    "role_summary": {"type": "string"},
    "must_have": {"type": "array", "items": {"$ref": "#/definitions/keyword"}},
    "nice_to_have": {"type": "array", "items": {"$ref": "#/definitions/keyword"}},
    "queries": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["query"],
        "properties": {
          "query": {"type": "string", "minLength": 1},
          "purpose": {"type": "string"},
          "boost_keywords": {"type": "array", "items": {"type": "string"}},
          "weight": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    }
  },
  "definitions": {
    "keyword": {
      "type": "object",
      "required": ["raw"],
      "properties": {
        "raw": {"type": "string", "minLength": 1},
        "canonical": {"type": "string"},
        "category": {"type": "string"}
      }
    }
  }
}`

// GeminiExtractor extracts target profiles with an LLM and validates the
// output against a JSON schema before accepting it.
type GeminiExtractor struct {
	client llm.Client
	canon  *canon.Canonicalizer
	schema *gojsonschema.Schema
}

// NewGeminiExtractor builds an extractor over the given LLM client. The
// canonicalizer fills in canonical spellings the model leaves empty.
func NewGeminiExtractor(client llm.Client, canonicalizer *canon.Canonicalizer) (*GeminiExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("queryplan: extractor requires an LLM client")
	}
	if canonicalizer == nil {
		return nil, fmt.Errorf("queryplan: extractor requires a canonicalizer")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("queryplan: compile profile schema: %w", err)
	}
	return &GeminiExtractor{client: client, canon: canonicalizer, schema: schema}, nil
}

type profilePayload struct {
	RoleTitle   string           `json:"role_title"`
	RoleSummary string           `json:"role_summary"`
	MustHave    []keywordPayload `json:"must_have"`
	NiceToHave  []keywordPayload `json:"nice_to_have"`
	Queries     []queryPayload   `json:"queries"`
}

type keywordPayload struct {
	Raw       string `json:"raw"`
	Canonical string `json:"canonical"`
	Category  string `json:"category"`
}

type queryPayload struct {
	Query         string   `json:"query"`
	Purpose       string   `json:"purpose"`
	BoostKeywords []string `json:"boost_keywords"`
	Weight        float64  `json:"weight"`
}

// Extract runs the extraction prompt and converts the validated response
// into a target profile.
func (e *GeminiExtractor) Extract(ctx context.Context, jobText string) (*types.TargetProfile, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, fmt.Errorf("queryplan: job text is empty")
	}

	prompt := llm.BuildExtractionPrompt(llm.TargetProfileSchema(), jobText)
	raw, err := llm.GenerateValidatedJSON(ctx, e.client, prompt, llm.TierStandard, e.schema)
	if err != nil {
		return nil, fmt.Errorf("queryplan: profile extraction failed: %w", err)
	}

	var payload profilePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("queryplan: decode profile payload: %w", err)
	}
	return e.toProfile(payload), nil
}

func (e *GeminiExtractor) toProfile(payload profilePayload) *types.TargetProfile {
	profile := &types.TargetProfile{
		RoleTitle:   strings.TrimSpace(payload.RoleTitle),
		RoleSummary: strings.TrimSpace(payload.RoleSummary),
		MustHave:    e.toKeywords(payload.MustHave, types.KeywordMustHave),
		NiceToHave:  e.toKeywords(payload.NiceToHave, types.KeywordNiceToHave),
	}
	queries := make([]types.ExperienceQuery, 0, len(payload.Queries))
	for _, q := range payload.Queries {
		text := strings.TrimSpace(q.Query)
		if text == "" {
			continue
		}
		weight := q.Weight
		if weight <= 0 {
			weight = 1.0
		}
		queries = append(queries, types.ExperienceQuery{
			Query:         text,
			Purpose:       strings.TrimSpace(q.Purpose),
			BoostKeywords: dedupeKeepOrder(lowerAll(q.BoostKeywords)),
			Weight:        weight,
		})
	}
	profile.RetrievalPlan = types.RetrievalPlan{ExperienceQueries: queries}
	return profile
}

func (e *GeminiExtractor) toKeywords(payloads []keywordPayload, category types.KeywordCategory) []types.Keyword {
	keywords := make([]types.Keyword, 0, len(payloads))
	for _, kw := range payloads {
		raw := strings.TrimSpace(kw.Raw)
		if raw == "" {
			continue
		}
		canonical := strings.TrimSpace(kw.Canonical)
		if canonical == "" {
			canonical = e.canon.CanonicalizeTerm(raw)
		} else {
			canonical = e.canon.CanonicalizeTerm(canonical)
		}
		keywords = append(keywords, types.Keyword{
			Raw:       raw,
			Canonical: canonical,
			Category:  category,
		})
	}
	return keywords
}
