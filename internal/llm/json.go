// Package llm - json.go provides schema-validated JSON generation with a
// single bounded repair attempt.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// GenerateValidatedJSON asks the model for JSON and validates it against the
// schema. On a validation failure it makes exactly one repair attempt,
// feeding the validation errors back to the model; a second failure is
// returned to the caller. There is no retry loop beyond that.
func GenerateValidatedJSON(ctx context.Context, client Client, prompt string, tier ModelTier, schema *gojsonschema.Schema) (string, error) {
	raw, err := client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return "", err
	}

	problems, err := validateAgainstSchema(schema, raw)
	if err != nil {
		return "", err
	}
	if len(problems) == 0 {
		return raw, nil
	}

	repairPrompt := fmt.Sprintf(
		"%s\n\nYour previous response was invalid JSON for the required schema."+
			"\nPrevious response:\n%s\n\nProblems:\n- %s\n\nReturn corrected JSON only.",
		prompt, raw, strings.Join(problems, "\n- "))

	repaired, err := client.GenerateJSON(ctx, repairPrompt, tier)
	if err != nil {
		return "", fmt.Errorf("repair attempt failed: %w", err)
	}
	problems, err = validateAgainstSchema(schema, repaired)
	if err != nil {
		return "", err
	}
	if len(problems) > 0 {
		return "", fmt.Errorf("response failed schema validation after repair: %s", strings.Join(problems, "; "))
	}
	return repaired, nil
}

func validateAgainstSchema(schema *gojsonschema.Schema, raw string) ([]string, error) {
	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		// Not valid JSON at all; report it as a schema problem so the
		// repair attempt gets a chance to fix it.
		return []string{fmt.Sprintf("not parseable as JSON: %v", err)}, nil
	}
	if result.Valid() {
		return nil, nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return problems, nil
}
