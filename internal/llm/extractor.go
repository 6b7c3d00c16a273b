// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/prompts"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "TargetProfile")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// TargetProfileSchema returns the extraction schema for job descriptions.
// Extracts the role, categorized keywords, and a retrieval query plan.
func TargetProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name:        "TargetProfile",
		Description: prompts.MustGet("extraction.json", "target-profile"),
		Fields: []SchemaField{
			{
				Name:        "role_title",
				Type:        "\"string\"",
				Description: "Job title as written in the posting",
				Required:    true,
			},
			{
				Name:        "role_summary",
				Type:        "\"string\"",
				Description: "One or two sentences describing the role's focus",
				Required:    false,
			},
			{
				Name:        "must_have",
				Type:        "[{\"raw\": \"string\", \"canonical\": \"string\", \"category\": \"must_have\"}]",
				Description: "Skills the posting explicitly requires",
				Required:    true,
			},
			{
				Name:        "nice_to_have",
				Type:        "[{\"raw\": \"string\", \"canonical\": \"string\", \"category\": \"nice_to_have\"}]",
				Description: "Preferred or bonus skills",
				Required:    false,
			},
			{
				Name:        "queries",
				Type:        "[{\"query\": \"string\", \"purpose\": \"string\", \"boost_keywords\": [\"string\"], \"weight\": 1.0}]",
				Description: "3-6 retrieval queries targeting different aspects of the role, weight in (0,2]",
				Required:    true,
			},
		},
	}
}
