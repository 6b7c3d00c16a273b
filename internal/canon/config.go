// Package canon normalizes free text and keyword phrases into the canonical
// form used as the matching key across the tailoring pipeline.
package canon

import (
	"encoding/json"
	"fmt"
	"os"
)

// SchemaVersion is the required schema_version value for canonicalization config files
const SchemaVersion = "canon_config_v1"

// Group maps alternate spellings of a term to its canonical spelling
type Group struct {
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants,omitempty"`
}

// Options controls the base normalization behavior
type Options struct {
	// KeepChars lists punctuation kept during normalization because it
	// disambiguates terms like "C++" or "CI/CD".
	KeepChars           string   `json:"keep_chars"`
	CollapseWhitespace  bool     `json:"collapse_whitespace"`
	SlashToSpace        bool     `json:"slash_to_space"`
	DashToSpace         bool     `json:"dash_to_space"`
	SeparatorExceptions []string `json:"separator_exceptions,omitempty"`
}

// Config is the full canonicalization configuration. It is loaded once and
// passed into the Canonicalizer at construction time; nothing reads it from
// process-wide state.
type Config struct {
	SchemaVersion string  `json:"schema_version"`
	Options       Options `json:"options"`
	Groups        []Group `json:"canon_groups,omitempty"`
}

// DefaultConfig returns the built-in canonicalization configuration
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Options: Options{
			KeepChars:           "+#./-",
			CollapseWhitespace:  true,
			SlashToSpace:        true,
			DashToSpace:         true,
			SeparatorExceptions: []string{"ci/cd"},
		},
	}
}

// LoadConfig loads a canonicalization config from a JSON file.
// A missing path returns the defaults; a malformed file or a wrong schema
// version is an error so bad configs fail at load time rather than skewing
// matching results later.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read canon config %s: %w", path, err)
	}

	// Booleans decode through pointers so an omitted option falls back to
	// its default instead of silently becoming false.
	var raw struct {
		SchemaVersion string `json:"schema_version"`
		Options       struct {
			KeepChars           string   `json:"keep_chars"`
			CollapseWhitespace  *bool    `json:"collapse_whitespace"`
			SlashToSpace        *bool    `json:"slash_to_space"`
			DashToSpace         *bool    `json:"dash_to_space"`
			SeparatorExceptions []string `json:"separator_exceptions"`
		} `json:"options"`
		Groups []Group `json:"canon_groups"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse canon config %s: %w", path, err)
	}

	if raw.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("canon config %s: unsupported schema_version %q (want %q)", path, raw.SchemaVersion, SchemaVersion)
	}

	cfg := DefaultConfig()
	cfg.Groups = raw.Groups
	if raw.Options.KeepChars != "" {
		cfg.Options.KeepChars = raw.Options.KeepChars
	}
	if raw.Options.CollapseWhitespace != nil {
		cfg.Options.CollapseWhitespace = *raw.Options.CollapseWhitespace
	}
	if raw.Options.SlashToSpace != nil {
		cfg.Options.SlashToSpace = *raw.Options.SlashToSpace
	}
	if raw.Options.DashToSpace != nil {
		cfg.Options.DashToSpace = *raw.Options.DashToSpace
	}
	if raw.Options.SeparatorExceptions != nil {
		cfg.Options.SeparatorExceptions = raw.Options.SeparatorExceptions
	}

	return cfg, nil
}
