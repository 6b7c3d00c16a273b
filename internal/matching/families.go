// Package matching produces tiered evidence of how job keywords are
// satisfied by resume bullet text.
package matching

import (
	"encoding/json"
	"fmt"
	"os"
)

// FamiliesSchemaVersion is the required schema_version for family config files
const FamiliesSchemaVersion = "families_v1"

// Family maps a generic skill term to the concrete specifics that satisfy it
type Family struct {
	Generic     string   `json:"generic"`
	SatisfiedBy []string `json:"satisfied_by"`
}

// FamilyConfig is the registry of generic-to-specific skill mappings.
// Like the canonicalization config it is loaded once and injected.
type FamilyConfig struct {
	SchemaVersion string   `json:"schema_version"`
	Families      []Family `json:"families"`
}

// DefaultFamilyConfig returns an empty family registry
func DefaultFamilyConfig() *FamilyConfig {
	return &FamilyConfig{SchemaVersion: FamiliesSchemaVersion}
}

// LoadFamilyConfig loads a family config from a JSON file. A missing file
// yields the empty registry; a malformed file or wrong schema version fails
// at load time.
func LoadFamilyConfig(path string) (*FamilyConfig, error) {
	if path == "" {
		return DefaultFamilyConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultFamilyConfig(), nil
		}
		return nil, fmt.Errorf("failed to read family config %s: %w", path, err)
	}

	var cfg FamilyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse family config %s: %w", path, err)
	}

	if cfg.SchemaVersion != FamiliesSchemaVersion {
		return nil, fmt.Errorf("family config %s: unsupported schema_version %q (want %q)", path, cfg.SchemaVersion, FamiliesSchemaVersion)
	}

	return &cfg, nil
}
