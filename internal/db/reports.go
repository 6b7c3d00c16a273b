package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

// RunSummary is a lightweight view of a stored run for listing
type RunSummary struct {
	RunID       string    `json:"run_id"`
	RoleTitle   string    `json:"role_title"`
	ProfileUsed bool      `json:"profile_used"`
	FinalScore  int       `json:"final_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveRunReport stores a run report, replacing any prior report with the
// same run ID
func (db *DB) SaveRunReport(ctx context.Context, report *types.RunReport) error {
	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_reports (run_id, role_title, profile_used, final_score, report, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id) DO UPDATE SET
		     role_title = $2, profile_used = $3, final_score = $4, report = $5`,
		report.RunID, report.RoleTitle, report.ProfileUsed, report.FinalScore, jsonBytes, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run report %s: %w", report.RunID, err)
	}
	return nil
}

// GetRunReport retrieves a stored run report by run ID.
// Returns nil without error when no report exists.
func (db *DB) GetRunReport(ctx context.Context, runID string) (*types.RunReport, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT report FROM run_reports WHERE run_id = $1`,
		runID,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run report %s: %w", runID, err)
	}

	var report types.RunReport
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report %s: %w", runID, err)
	}
	return &report, nil
}

// ListRunReports retrieves recent runs, newest first
func (db *DB) ListRunReports(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT run_id, role_title, profile_used, final_score, created_at
		 FROM run_reports ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run reports: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.RoleTitle, &r.ProfileUsed, &r.FinalScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run report: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// DeleteRunReport deletes a stored run report
func (db *DB) DeleteRunReport(ctx context.Context, runID string) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM run_reports WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run report: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run report not found: %s", runID)
	}
	return nil
}
