package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pinkpig777/agentic-resume-tailor/internal/llm"
	"github.com/pinkpig777/agentic-resume-tailor/internal/prompts"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

var rewritePromptHeader = prompts.MustGet("rewriting.json", "rewrite-header")

// rewriteSchemaJSON validates the agent's JSON output before any proposal
// reaches per-bullet validation.
const rewriteSchemaJSON = `{
  "type": "object",
  "required": ["rewritten_bullets"],
  "properties": {
    "rewritten_bullets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["bullet_id", "rewritten_text"],
        "properties": {
          "bullet_id": {"type": "string", "minLength": 1},
          "rewritten_text": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

// GeminiAgent proposes rewrites with an LLM. Its output is only ever a
// proposal: the guard validates every bullet and falls back to the original
// on any violation.
type GeminiAgent struct {
	client llm.Client
	schema *gojsonschema.Schema
}

// NewGeminiAgent builds a rewrite agent over the given LLM client.
func NewGeminiAgent(client llm.Client) (*GeminiAgent, error) {
	if client == nil {
		return nil, fmt.Errorf("rewriting: agent requires an LLM client")
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rewriteSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("rewriting: compile rewrite schema: %w", err)
	}
	return &GeminiAgent{client: client, schema: schema}, nil
}

type rewriteOutput struct {
	RewrittenBullets []struct {
		BulletID      string `json:"bullet_id"`
		RewrittenText string `json:"rewritten_text"`
	} `json:"rewritten_bullets"`
}

// Rewrite asks the model for rewritten texts keyed by bullet id.
func (a *GeminiAgent) Rewrite(ctx context.Context, profile *types.TargetProfile, bullets []AgentBullet, constraints Constraints) (map[string]string, error) {
	payload, err := json.Marshal(bullets)
	if err != nil {
		return nil, fmt.Errorf("rewriting: encode bullets: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(rewritePromptHeader)
	sb.WriteString("\n\nTarget profile summary (may be empty):\n")
	sb.WriteString(profileSummary(profile))
	fmt.Fprintf(&sb, "\n\nLength constraints:\n- min_chars: %d\n- max_chars: %d\n", constraints.MinChars, constraints.MaxChars)
	sb.WriteString("\nBullets to rewrite (LaTeX-ready). Each bullet includes allowed_terms from its original text.\n")
	sb.Write(payload)
	sb.WriteString("\n\nReturn JSON with this shape:\n")
	sb.WriteString(`{"rewritten_bullets": [{"bullet_id": "...", "rewritten_text": "..."}]}`)

	raw, err := llm.GenerateValidatedJSON(ctx, a.client, sb.String(), llm.TierAdvanced, a.schema)
	if err != nil {
		return nil, fmt.Errorf("rewriting: agent call failed: %w", err)
	}

	var out rewriteOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("rewriting: decode agent output: %w", err)
	}
	proposals := make(map[string]string, len(out.RewrittenBullets))
	for _, item := range out.RewrittenBullets {
		proposals[item.BulletID] = item.RewrittenText
	}
	return proposals, nil
}

// profileSummary condenses the target profile into prompt context.
func profileSummary(profile *types.TargetProfile) string {
	if profile == nil {
		return ""
	}
	var parts []string
	if profile.RoleTitle != "" {
		parts = append(parts, "role_title: "+profile.RoleTitle)
	}
	if profile.RoleSummary != "" {
		parts = append(parts, "role_summary: "+profile.RoleSummary)
	}
	if terms := keywordList(profile.MustHave); terms != "" {
		parts = append(parts, "must_have: "+terms)
	}
	if terms := keywordList(profile.NiceToHave); terms != "" {
		parts = append(parts, "nice_to_have: "+terms)
	}
	return strings.Join(parts, " | ")
}

func keywordList(keywords []types.Keyword) string {
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		term := kw.Canonical
		if term == "" {
			term = kw.Raw
		}
		if term != "" {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, ", ")
}
