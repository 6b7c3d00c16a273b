package ingest

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pinkpig777/agentic-resume-tailor/internal/canon"
	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
	"github.com/pinkpig777/agentic-resume-tailor/internal/vector"
)

// maxConcurrentEmbeds bounds parallel embedding calls during seeding
const maxConcurrentEmbeds = 4

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Seeder embeds resume bullets and writes them to the vector store.
type Seeder struct {
	store vector.Store
}

// NewSeeder creates a seeder writing to the given store
func NewSeeder(store vector.Store) *Seeder {
	return &Seeder{store: store}
}

// Seed builds documents from the snapshot, embeds them concurrently, and
// upserts the batch. Returns the number of bullets stored.
func (s *Seeder) Seed(ctx context.Context, snapshot *types.ResumeSnapshot) (int, error) {
	docs := BuildDocuments(snapshot)
	if len(docs) == 0 {
		return 0, fmt.Errorf("snapshot contains no bullets")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbeds)
	for i := range docs {
		g.Go(func() error {
			// Embed the markup-stripped text; the raw bullet stays in the
			// document for display and rewriting.
			embedding, err := s.store.Embed(gctx, canon.StripMarkup(docs[i].Text))
			if err != nil {
				return fmt.Errorf("failed to embed bullet %s: %w", docs[i].ID, err)
			}
			docs[i].Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := s.store.Upsert(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to upsert bullets: %w", err)
	}
	return len(docs), nil
}

// BuildDocuments walks the snapshot and produces one document per bullet
// with a deterministic id: "exp:<company-slug>:<index>" for experience
// bullets, "proj:<name-slug>:<index>" for project bullets.
func BuildDocuments(snapshot *types.ResumeSnapshot) []vector.Document {
	if snapshot == nil {
		return nil
	}

	var docs []vector.Document
	for _, exp := range snapshot.Experiences {
		slug := slugify(exp.Company)
		for i, bullet := range exp.Bullets {
			docs = append(docs, vector.Document{
				ID:   "exp:" + slug + ":" + strconv.Itoa(i),
				Text: bullet,
				Metadata: map[string]string{
					"source":  "experience",
					"company": exp.Company,
					"title":   exp.Title,
					"index":   strconv.Itoa(i),
				},
			})
		}
	}
	for _, proj := range snapshot.Projects {
		slug := slugify(proj.Name)
		for i, bullet := range proj.Bullets {
			docs = append(docs, vector.Document{
				ID:   "proj:" + slug + ":" + strconv.Itoa(i),
				Text: bullet,
				Metadata: map[string]string{
					"source": "project",
					"name":   proj.Name,
					"index":  strconv.Itoa(i),
				},
			})
		}
	}
	return docs
}

// slugify lowercases and collapses non-alphanumeric runs to single dashes
// so ids stay stable across runs of the same snapshot
func slugify(s string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "unnamed"
	}
	return slug
}
