package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinkpig777/agentic-resume-tailor/internal/config"
	"github.com/pinkpig777/agentic-resume-tailor/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one full tailoring pass end-to-end",
	Long: `Runs the full tailoring loop against a job posting: ingest the posting,
plan retrieval queries, then retrieve, select, optionally rewrite, and score
bullets until the target score or the iteration budget is reached.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runJob            string
	runJobURL         string
	runSnapshot       string
	runCanonConfig    string
	runFamiliesConfig string
	runMaxBullets     int
	runMaxIterations  int
	runThreshold      int
	runChromaURL      string
	runCollection     string
	runAPIKey         string
	runUseBrowser     bool
	runVerbose        bool
	runRewrite        bool
	runDatabaseURL    string
	runOutDir         string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Path to job posting text file (mutually exclusive with --job-url)")
	runCommand.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	runCommand.Flags().StringVarP(&runSnapshot, "snapshot", "s", "", "Path to resume snapshot JSON")
	runCommand.Flags().StringVar(&runCanonConfig, "canon-config", "", "Path to canonicalization config JSON (optional)")
	runCommand.Flags().StringVar(&runFamiliesConfig, "families-config", "", "Path to keyword families JSON (optional)")
	runCommand.Flags().IntVar(&runMaxBullets, "max-bullets", 0, "Maximum bullets on the page")
	runCommand.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "Loop iteration budget")
	runCommand.Flags().IntVar(&runThreshold, "threshold", 0, "Final score at which the loop stops early")
	runCommand.Flags().StringVar(&runChromaURL, "chroma-url", "http://localhost:8000", "Chroma server base URL")
	runCommand.Flags().StringVar(&runCollection, "collection", "resume_bullets", "Chroma collection name")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCommand.Flags().BoolVar(&runRewrite, "rewrite", false, "Enable the LLM rewrite step")
	runCommand.Flags().StringVarP(&runOutDir, "out", "o", "out", "Output directory for the run report")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run report persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// CLI flags override config file values, but only when explicitly set
	if cmd.Flags().Changed("job") {
		cfg.Job = runJob
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = runJobURL
	}
	if cmd.Flags().Changed("snapshot") {
		cfg.Snapshot = runSnapshot
	}
	if cmd.Flags().Changed("canon-config") {
		cfg.CanonConfig = runCanonConfig
	}
	if cmd.Flags().Changed("families-config") {
		cfg.FamiliesConfig = runFamiliesConfig
	}
	if cmd.Flags().Changed("max-bullets") {
		cfg.MaxBullets = runMaxBullets
	}
	if cmd.Flags().Changed("max-iterations") {
		cfg.MaxIterations = runMaxIterations
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Threshold = runThreshold
	}
	if cmd.Flags().Changed("chroma-url") || cfg.ChromaURL == "" {
		cfg.ChromaURL = runChromaURL
	}
	if cmd.Flags().Changed("collection") || cfg.Collection == "" {
		cfg.Collection = runCollection
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = runAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("rewrite") {
		cfg.RewriteEnabled = runRewrite
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	opts := pipeline.RunOptions{
		JobPath:            cfg.Job,
		JobURL:             cfg.JobURL,
		SnapshotPath:       cfg.Snapshot,
		CanonConfigPath:    cfg.CanonConfig,
		FamiliesConfigPath: cfg.FamiliesConfig,
		MaxBullets:         cfg.MaxBullets,
		MaxIterations:      cfg.MaxIterations,
		Threshold:          cfg.Threshold,
		ChromaURL:          cfg.ChromaURL,
		Collection:         cfg.Collection,
		APIKey:             cfg.APIKey,
		UseBrowser:         cfg.UseBrowser,
		Verbose:            cfg.Verbose,
		RewriteEnabled:     cfg.RewriteEnabled,
		DatabaseURL:        cfg.DatabaseURL,
		OutDir:             runOutDir,
	}

	report, err := pipeline.RunPipeline(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("\nDone. Run %s finished with score %d.\n", report.RunID, report.FinalScore)
	return nil
}
