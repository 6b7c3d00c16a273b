// Package ingest seeds the vector store from a resume snapshot.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pinkpig777/agentic-resume-tailor/internal/schemas"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// LoadSnapshot reads a resume snapshot from a JSON file
func LoadSnapshot(path string) (*types.ResumeSnapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if err := schemas.ValidateSnapshot(content); err != nil {
		return nil, fmt.Errorf("invalid snapshot file %s: %w", path, err)
	}

	var snapshot types.ResumeSnapshot
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	if countBullets(&snapshot) == 0 {
		return nil, fmt.Errorf("snapshot %s contains no bullets", path)
	}

	return &snapshot, nil
}

func countBullets(s *types.ResumeSnapshot) int {
	n := 0
	for _, exp := range s.Experiences {
		n += len(exp.Bullets)
	}
	for _, proj := range s.Projects {
		n += len(proj.Bullets)
	}
	return n
}
