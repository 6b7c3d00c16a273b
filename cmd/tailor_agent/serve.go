package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinkpig777/agentic-resume-tailor/internal/pipeline"
	"github.com/pinkpig777/agentic-resume-tailor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for running tailoring passes and reading stored run reports.`,
	RunE:  runServe,
}

var (
	servePort       int
	serveSnapshot   string
	serveChromaURL  string
	serveCollection string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveSnapshot, "snapshot", "s", "", "Path to resume snapshot JSON (required)")
	serveCmd.Flags().StringVar(&serveChromaURL, "chroma-url", "http://localhost:8000", "Chroma server base URL")
	serveCmd.Flags().StringVar(&serveCollection, "collection", "resume_bullets", "Chroma collection name")
	_ = serveCmd.MarkFlagRequired("snapshot")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	cfg := server.Config{
		Port: servePort,
		Base: pipeline.RunOptions{
			SnapshotPath: serveSnapshot,
			ChromaURL:    serveChromaURL,
			Collection:   serveCollection,
			APIKey:       apiKey,
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	srv, err := server.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
