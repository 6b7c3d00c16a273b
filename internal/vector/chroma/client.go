// Package chroma provides a thin HTTP client for a Chroma vector database
// and a Store that pairs it with an embedder to satisfy vector.Store.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// StatusError reports a non-2xx response from the Chroma server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chroma: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to a Chroma server over its REST API. Collections are
// addressed by server-assigned id, resolved once via EnsureCollection.
type Client struct {
	baseURL    string
	httpClient *http.Client

	collectionID string
}

// NewClient returns a client for the Chroma server at baseURL
// (e.g. "http://localhost:8000"). The trailing slash is optional.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("chroma: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("chroma: invalid base URL %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EnsureCollection creates the named collection if it does not exist and
// caches its id for subsequent calls.
func (c *Client) EnsureCollection(ctx context.Context, name string) error {
	body := map[string]any{
		"name":          name,
		"get_or_create": true,
	}
	var resp collectionResponse
	if err := c.post(ctx, "/api/v1/collections", body, &resp); err != nil {
		return fmt.Errorf("chroma: ensure collection %q: %w", name, err)
	}
	if resp.ID == "" {
		return fmt.Errorf("chroma: ensure collection %q: server returned no id", name)
	}
	c.collectionID = resp.ID
	return nil
}

// Upsert writes the documents with their embeddings into the collection.
// EnsureCollection must have been called first.
func (c *Client) Upsert(ctx context.Context, ids []string, texts []string, metadatas []map[string]string, embeddings [][]float32) error {
	if c.collectionID == "" {
		return fmt.Errorf("chroma: upsert: no collection selected")
	}
	if len(ids) != len(texts) || len(ids) != len(embeddings) || (metadatas != nil && len(ids) != len(metadatas)) {
		return fmt.Errorf("chroma: upsert: mismatched slice lengths")
	}
	body := map[string]any{
		"ids":        ids,
		"documents":  texts,
		"embeddings": embeddings,
	}
	if metadatas != nil {
		body["metadatas"] = metadatas
	}
	path := fmt.Sprintf("/api/v1/collections/%s/upsert", c.collectionID)
	if err := c.post(ctx, path, body, nil); err != nil {
		return fmt.Errorf("chroma: upsert %d documents: %w", len(ids), err)
	}
	return nil
}

// QueryResult is one nearest neighbor from a similarity query.
type QueryResult struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

type queryResponse struct {
	IDs        [][]string            `json:"ids"`
	Documents  [][]string            `json:"documents"`
	Metadatas  [][]map[string]string `json:"metadatas"`
	Embeddings [][][]float32         `json:"embeddings"`
}

// Query returns the k nearest documents for the embedding, including the
// stored embeddings so callers can recompute similarity on their side.
func (c *Client) Query(ctx context.Context, embedding []float32, k int) ([]QueryResult, error) {
	if c.collectionID == "" {
		return nil, fmt.Errorf("chroma: query: no collection selected")
	}
	if k <= 0 {
		return nil, fmt.Errorf("chroma: query: k must be positive, got %d", k)
	}
	body := map[string]any{
		"query_embeddings": [][]float32{embedding},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "embeddings"},
	}
	path := fmt.Sprintf("/api/v1/collections/%s/query", c.collectionID)
	var resp queryResponse
	if err := c.post(ctx, path, body, &resp); err != nil {
		return nil, fmt.Errorf("chroma: query: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	ids := resp.IDs[0]
	results := make([]QueryResult, 0, len(ids))
	for i, id := range ids {
		r := QueryResult{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			r.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Embeddings) > 0 && i < len(resp.Embeddings[0]) {
			r.Embedding = resp.Embeddings[0][i]
		}
		results = append(results, r)
	}
	return results, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
