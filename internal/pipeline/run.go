// Package pipeline provides the high-level orchestration for a tailoring run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/db"
	"github.com/pinkpig777/agentic-resume-tailor/internal/fetch"
	"github.com/pinkpig777/agentic-resume-tailor/internal/ingest"
	"github.com/pinkpig777/agentic-resume-tailor/internal/ingestion"
	"github.com/pinkpig777/agentic-resume-tailor/internal/llm"
	"github.com/pinkpig777/agentic-resume-tailor/internal/loop"
	"github.com/pinkpig777/agentic-resume-tailor/internal/matching"
	"github.com/pinkpig777/agentic-resume-tailor/internal/observability"
	"github.com/pinkpig777/agentic-resume-tailor/internal/queryplan"
	"github.com/pinkpig777/agentic-resume-tailor/internal/retrieval"
	"github.com/pinkpig777/agentic-resume-tailor/internal/rewriting"
	"github.com/pinkpig777/agentic-resume-tailor/internal/scoring"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
	"github.com/pinkpig777/agentic-resume-tailor/internal/vector/chroma"
)

// RunOptions holds configuration for running a tailoring pipeline
type RunOptions struct {
	JobPath string
	JobURL  string

	SnapshotPath       string
	CanonConfigPath    string
	FamiliesConfigPath string

	MaxBullets    int
	MaxIterations int
	Threshold     int

	ChromaURL  string
	Collection string

	APIKey         string
	UseBrowser     bool
	Verbose        bool
	RewriteEnabled bool
	DatabaseURL    string

	// OutDir, when set, receives the run report JSON and the cleaned
	// job posting text.
	OutDir string
}

func validateOptions(opts RunOptions) error {
	if opts.JobPath == "" && opts.JobURL == "" {
		return fmt.Errorf("pipeline: either a job file or a job URL is required")
	}
	if opts.JobPath != "" && opts.JobURL != "" {
		return fmt.Errorf("pipeline: job file and job URL are mutually exclusive")
	}
	if opts.SnapshotPath == "" {
		return fmt.Errorf("pipeline: resume snapshot path is required")
	}
	if opts.APIKey == "" {
		return fmt.Errorf("pipeline: API key is required for embeddings")
	}
	if opts.ChromaURL == "" {
		return fmt.Errorf("pipeline: vector store URL is required")
	}
	if opts.Collection == "" {
		return fmt.Errorf("pipeline: vector store collection is required")
	}
	return nil
}

// RunPipeline runs one full tailoring pass: ingest the job posting, plan
// queries, run the retrieve-select-rewrite-score loop, and assemble the
// run report. Database persistence is best-effort; a run never fails
// because the report could not be stored.
func RunPipeline(ctx context.Context, opts RunOptions) (*types.RunReport, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	printer := observability.NewPrinter(os.Stdout)

	// Database connection is optional
	var database *db.DB
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
			database = nil
		} else {
			defer database.Close()
		}
	}

	// Step 1: Ingest the job posting
	var jobText string
	var err error
	if opts.JobURL != "" {
		fmt.Printf("Step 1/6: Ingesting job posting from URL: %s...\n", opts.JobURL)
		ingestOpts := &ingestion.Options{
			UseBrowser: opts.UseBrowser,
			Verbose:    opts.Verbose,
		}
		if database != nil {
			ingestOpts.Fetcher = fetch.NewCachedFetcher(database, nil)
		}
		jobText, _, err = ingestion.IngestFromURL(ctx, opts.JobURL, ingestOpts)
		if err != nil {
			return nil, fmt.Errorf("job ingestion from URL failed: %w", err)
		}
	} else {
		fmt.Printf("Step 1/6: Ingesting job posting from file: %s...\n", opts.JobPath)
		jobText, _, err = ingestion.IngestFromFile(opts.JobPath)
		if err != nil {
			return nil, fmt.Errorf("job ingestion from file failed: %w", err)
		}
	}

	// Step 2: Load the resume snapshot and matching configs
	fmt.Printf("Step 2/6: Loading resume snapshot from %s...\n", opts.SnapshotPath)
	snapshot, err := ingest.LoadSnapshot(opts.SnapshotPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot loading failed: %w", err)
	}

	canonCfg, err := canon.LoadConfig(opts.CanonConfigPath)
	if err != nil {
		return nil, fmt.Errorf("canon config loading failed: %w", err)
	}
	familyCfg, err := matching.LoadFamilyConfig(opts.FamiliesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("family config loading failed: %w", err)
	}
	canonicalizer := canon.New(canonCfg)
	matcher := matching.NewMatcher(canonicalizer, familyCfg)

	// Step 3: Plan retrieval queries (structured profile with heuristic fallback)
	fmt.Printf("Step 3/6: Planning retrieval queries...\n")
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	source := planQueries(ctx, client, canonicalizer, jobText, opts.Verbose)
	if opts.Verbose && source.HasProfile() {
		printer.PrintTargetProfile(source.Profile())
	}

	// Step 4: Connect the vector store
	fmt.Printf("Step 4/6: Connecting to vector store at %s...\n", opts.ChromaURL)
	chromaClient, err := chroma.NewClient(opts.ChromaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store client: %w", err)
	}
	if err := chromaClient.EnsureCollection(ctx, opts.Collection); err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", opts.Collection, err)
	}
	store, err := chroma.NewStore(client, chromaClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	// Step 5: Run the tailoring loop
	fmt.Printf("Step 5/6: Running the tailoring loop...\n")
	cfg := loop.DefaultConfig()
	if opts.MaxBullets > 0 {
		cfg.MaxBullets = opts.MaxBullets
	}
	if opts.MaxIterations > 0 {
		cfg.MaxIterations = opts.MaxIterations
	}
	if opts.Threshold > 0 {
		cfg.Threshold = opts.Threshold
	}
	cfg.Rewrite.Enabled = opts.RewriteEnabled

	engine, err := retrieval.NewEngine(store, retrieval.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieval engine: %w", err)
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	var guard *rewriting.Guard
	if opts.RewriteEnabled {
		agent, agentErr := rewriting.NewGeminiAgent(client)
		if agentErr != nil {
			return nil, fmt.Errorf("failed to create rewrite agent: %w", agentErr)
		}
		guard = rewriting.NewGuard(cfg.Rewrite, agent)
	}

	controller, err := loop.NewController(cfg, engine, matcher, scorer, guard, canonCfg.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to create loop controller: %w", err)
	}

	result, err := controller.Run(ctx, source, snapshot)
	if err != nil {
		return nil, fmt.Errorf("tailoring loop failed: %w", err)
	}
	if opts.Verbose {
		for _, trace := range result.Iterations {
			printer.PrintIteration(trace)
		}
	}

	// Step 6: Assemble and persist the run report
	fmt.Printf("Step 6/6: Assembling run report...\n")
	report := loop.BuildReport(result, source.Profile())

	if database != nil {
		if err := database.SaveRunReport(ctx, report); err != nil {
			fmt.Printf("Warning: Failed to save run report: %v\n", err)
		}
	}
	if opts.OutDir != "" {
		if err := writeReport(opts.OutDir, report, jobText); err != nil {
			fmt.Printf("Warning: Failed to write report files: %v\n", err)
		}
	}

	printer.PrintRunSummary(report)
	return report, nil
}

// planQueries extracts a structured target profile from the job text. Any
// extraction failure falls back to heuristic queries; the run proceeds in
// retrieval-only mode rather than aborting.
func planQueries(ctx context.Context, client llm.Client, canonicalizer *canon.Canonicalizer, jobText string, verbose bool) queryplan.Source {
	extractor, err := queryplan.NewGeminiExtractor(client, canonicalizer)
	if err == nil {
		profile, exErr := extractor.Extract(ctx, jobText)
		if exErr == nil {
			return queryplan.FromProfile(profile)
		}
		err = exErr
	}
	if verbose {
		fmt.Printf("[VERBOSE] Profile extraction failed (%v), using heuristic queries\n", err)
	}
	return queryplan.FromQueries(queryplan.FallbackQueries(jobText, 6))
}

// writeReport writes the report JSON and cleaned job text to outDir
func writeReport(outDir string, report *types.RunReport, jobText string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	reportPath := filepath.Join(outDir, "run_report.json")
	if err := os.WriteFile(reportPath, reportJSON, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	jobPath := filepath.Join(outDir, "job_posting.cleaned.txt")
	if err := os.WriteFile(jobPath, []byte(jobText), 0644); err != nil {
		return fmt.Errorf("failed to write job text: %w", err)
	}
	return nil
}
