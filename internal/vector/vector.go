// Package vector defines the interfaces the retrieval engine uses to talk
// to an embedding/vector-similarity backend.
package vector

import "context"

// Document is one stored fragment returned by a similarity query. Backends
// must return embeddings inline because cosine similarity is recomputed
// client-side.
type Document struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Backend is the read side of the vector store consumed by retrieval
type Backend interface {
	Embedder
	// Query returns the k nearest documents for the query text, including
	// stored embeddings and enough metadata to recover bullet id, display
	// text, and source label.
	Query(ctx context.Context, text string, k int) ([]Document, error)
}

// Store extends Backend with the write side used by vector store seeding
type Store interface {
	Backend
	Upsert(ctx context.Context, docs []Document) error
}
