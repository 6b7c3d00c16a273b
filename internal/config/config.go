// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Job            string `json:"job,omitempty"`             // Path to job posting text file
	JobURL         string `json:"job_url,omitempty"`         // URL to fetch job posting from
	Snapshot       string `json:"snapshot,omitempty"`        // Path to resume snapshot JSON
	CanonConfig    string `json:"canon_config,omitempty"`    // Path to canonicalization config JSON
	FamiliesConfig string `json:"families_config,omitempty"` // Path to keyword families JSON

	// Loop limits
	MaxBullets    int `json:"max_bullets,omitempty"`    // Maximum bullets on the page
	MaxIterations int `json:"max_iterations,omitempty"` // Loop iteration budget
	Threshold     int `json:"threshold,omitempty"`      // Final score at which the loop stops

	// Vector store
	ChromaURL  string `json:"chroma_url,omitempty"` // Chroma server base URL
	Collection string `json:"collection,omitempty"` // Chroma collection name

	// Behavior
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	UseBrowser     bool   `json:"use_browser,omitempty"`     // Use headless browser for SPA job pages
	Verbose        bool   `json:"verbose,omitempty"`         // Print detailed debug information
	RewriteEnabled bool   `json:"rewrite_enabled,omitempty"` // Enable the LLM rewrite step
	DatabaseURL    string `json:"database_url,omitempty"`    // PostgreSQL connection URL for run reports
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	// Validate numeric ranges
	if c.MaxBullets < 0 {
		return fmt.Errorf("config error: 'max_bullets' must be non-negative")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("config error: 'max_iterations' must be non-negative")
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("config error: 'threshold' must be between 0 and 100")
	}

	// Validate file paths exist (if specified)
	for name, path := range map[string]string{
		"job":             c.Job,
		"snapshot":        c.Snapshot,
		"canon_config":    c.CanonConfig,
		"families_config": c.FamiliesConfig,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.Snapshot == "" {
		result.Snapshot = defaults.Snapshot
	}
	if result.CanonConfig == "" {
		result.CanonConfig = defaults.CanonConfig
	}
	if result.FamiliesConfig == "" {
		result.FamiliesConfig = defaults.FamiliesConfig
	}
	if result.ChromaURL == "" {
		result.ChromaURL = defaults.ChromaURL
	}
	if result.Collection == "" {
		result.Collection = defaults.Collection
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.MaxBullets == 0 {
		result.MaxBullets = defaults.MaxBullets
	}
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.Threshold == 0 {
		result.Threshold = defaults.Threshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
