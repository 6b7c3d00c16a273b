package chroma

import (
	"context"
	"fmt"

	"github.com/pinkpig777/agentic-resume-tailor/internal/vector"
)

// Store combines an embedder with a chroma Client so it can serve as the
// retrieval engine's vector.Store: queries embed the text first, upserts
// embed any document that arrives without an embedding.
type Store struct {
	embedder vector.Embedder
	client   *Client
}

// NewStore wires an embedder and a chroma client together.
func NewStore(embedder vector.Embedder, client *Client) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("chroma: store requires an embedder")
	}
	if client == nil {
		return nil, fmt.Errorf("chroma: store requires a client")
	}
	return &Store{embedder: embedder, client: client}, nil
}

// Embed delegates to the underlying embedder.
func (s *Store) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embedder.Embed(ctx, text)
}

// Query embeds the text and returns the k nearest stored documents.
func (s *Store) Query(ctx context.Context, text string, k int) ([]vector.Document, error) {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query text: %w", err)
	}
	results, err := s.client.Query(ctx, embedding, k)
	if err != nil {
		return nil, err
	}
	docs := make([]vector.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, vector.Document{
			ID:        r.ID,
			Text:      r.Text,
			Metadata:  r.Metadata,
			Embedding: r.Embedding,
		})
	}
	return docs, nil
}

// Upsert writes the documents into the collection, embedding any document
// whose embedding is missing.
func (s *Store) Upsert(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	metadatas := make([]map[string]string, len(docs))
	embeddings := make([][]float32, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("chroma: document %d has no id", i)
		}
		ids[i] = doc.ID
		texts[i] = doc.Text
		metadatas[i] = doc.Metadata
		embedding := doc.Embedding
		if embedding == nil {
			var err error
			embedding, err = s.embedder.Embed(ctx, doc.Text)
			if err != nil {
				return fmt.Errorf("embed document %s: %w", doc.ID, err)
			}
		}
		embeddings[i] = embedding
	}
	return s.client.Upsert(ctx, ids, texts, metadatas, embeddings)
}
