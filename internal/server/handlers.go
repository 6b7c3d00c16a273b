package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// GenerateRequest represents the request body for /api/generate
type GenerateRequest struct {
	JobText string `json:"job_text,omitempty"`
	JobURL  string `json:"job_url,omitempty"`

	MaxBullets    int  `json:"max_bullets,omitempty"`
	MaxIterations int  `json:"max_iterations,omitempty"`
	Threshold     int  `json:"threshold,omitempty"`
	Rewrite       bool `json:"rewrite,omitempty"`
	UseBrowser    bool `json:"use_browser,omitempty"`
}

func (r *GenerateRequest) validate() error {
	if r.JobText == "" && r.JobURL == "" {
		return &ErrValidation{Field: "job_text", Message: "either job_text or job_url is required"}
	}
	if r.JobText != "" && r.JobURL != "" {
		return &ErrValidation{Field: "job_text", Message: "job_text and job_url are mutually exclusive"}
	}
	if r.Threshold < 0 || r.Threshold > 100 {
		return &ErrValidation{Field: "threshold", Message: "must be between 0 and 100"}
	}
	return nil
}

// handleGenerate runs one tailoring pass and returns the run report
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	opts := s.base
	opts.JobURL = req.JobURL
	opts.JobPath = ""
	if req.MaxBullets > 0 {
		opts.MaxBullets = req.MaxBullets
	}
	if req.MaxIterations > 0 {
		opts.MaxIterations = req.MaxIterations
	}
	if req.Threshold > 0 {
		opts.Threshold = req.Threshold
	}
	opts.RewriteEnabled = req.Rewrite
	opts.UseBrowser = req.UseBrowser

	// The pipeline reads the posting from a file or URL; inline text goes
	// through a temp file.
	if req.JobText != "" {
		tmpDir, err := os.MkdirTemp("", "tailor-job-*")
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to stage job text: "+err.Error())
			return
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		jobPath := filepath.Join(tmpDir, "job.txt")
		if err := os.WriteFile(jobPath, []byte(req.JobText), 0644); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to stage job text: "+err.Error())
			return
		}
		opts.JobPath = jobPath
	}

	report, err := s.runner.Run(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Tailoring run failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleListRuns returns recent stored runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runs, err := s.db.ListRunReports(r.Context(), 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one stored run report
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runID := r.PathValue("id")
	report, err := s.db.GetRunReport(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if report == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleDeleteRun deletes one stored run report
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runID := r.PathValue("id")
	if err := s.db.DeleteRunReport(r.Context(), runID); err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
