package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinkpig777/agentic-resume-tailor/internal/ingest"
	"github.com/pinkpig777/agentic-resume-tailor/internal/llm"
	"github.com/pinkpig777/agentic-resume-tailor/internal/vector/chroma"
)

var ingestCommand = &cobra.Command{
	Use:   "ingest",
	Short: "Embed a resume snapshot into the vector store",
	Long: `Loads a resume snapshot JSON, strips markup from each bullet, embeds
the bullets, and upserts them into the Chroma collection the tailoring loop
retrieves from. Re-running with the same snapshot overwrites existing entries.`,
	RunE: runIngestCmd,
}

var (
	ingestSnapshot   string
	ingestChromaURL  string
	ingestCollection string
	ingestAPIKey     string
)

func init() {
	ingestCommand.Flags().StringVarP(&ingestSnapshot, "snapshot", "s", "", "Path to resume snapshot JSON (required)")
	ingestCommand.Flags().StringVar(&ingestChromaURL, "chroma-url", "http://localhost:8000", "Chroma server base URL")
	ingestCommand.Flags().StringVar(&ingestCollection, "collection", "resume_bullets", "Chroma collection name")
	ingestCommand.Flags().StringVar(&ingestAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	_ = ingestCommand.MarkFlagRequired("snapshot")

	rootCmd.AddCommand(ingestCommand)
}

func runIngestCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	apiKey := ingestAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required: pass --api-key or set GEMINI_API_KEY")
	}

	snapshot, err := ingest.LoadSnapshot(ingestSnapshot)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	client, err := llm.NewClient(ctx, nil, apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	chromaClient, err := chroma.NewClient(ingestChromaURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create vector store client: %w", err)
	}
	if err := chromaClient.EnsureCollection(ctx, ingestCollection); err != nil {
		return fmt.Errorf("failed to open collection %s: %w", ingestCollection, err)
	}
	store, err := chroma.NewStore(client, chromaClient)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}

	seeder := ingest.NewSeeder(store)
	count, err := seeder.Seed(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to seed collection: %w", err)
	}

	fmt.Printf("Embedded %d bullets into collection %q.\n", count, ingestCollection)
	return nil
}
