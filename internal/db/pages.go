package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageCacheTTL is how long a fetched page stays fresh
const DefaultPageCacheTTL = 7 * 24 * time.Hour

// Fetch status values for cached pages
const (
	FetchStatusSuccess = "success"
	FetchStatusFailed  = "failed"
)

// CachedPage is one fetched job posting page stored for reuse
type CachedPage struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	RawHTML     *string    `json:"raw_html,omitempty"`
	ParsedText  *string    `json:"parsed_text,omitempty"`
	ContentHash *string    `json:"content_hash,omitempty"`
	HTTPStatus  *int       `json:"http_status,omitempty"`
	FetchStatus string     `json:"fetch_status"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	FetchedAt   time.Time  `json:"fetched_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// IsFresh reports whether the page was fetched within maxAge and has not
// passed its explicit expiry
func (p *CachedPage) IsFresh(maxAge time.Duration) bool {
	if time.Since(p.FetchedAt) > maxAge {
		return false
	}
	if p.ExpiresAt != nil && time.Now().After(*p.ExpiresAt) {
		return false
	}
	return true
}

// HashContent returns the SHA256 hex digest of page content
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// GetCachedPage retrieves a cached page by URL.
// Returns nil without error when the URL has never been fetched.
func (db *DB) GetCachedPage(ctx context.Context, pageURL string) (*CachedPage, error) {
	var p CachedPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, raw_html, parsed_text, content_hash, http_status,
		        fetch_status, error_message, fetched_at, expires_at
		 FROM cached_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.RawHTML, &p.ParsedText, &p.ContentHash, &p.HTTPStatus,
		&p.FetchStatus, &p.ErrorMsg, &p.FetchedAt, &p.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached page: %w", err)
	}
	return &p, nil
}

// GetFreshPage retrieves a page only if it is fresh and its fetch succeeded
func (db *DB) GetFreshPage(ctx context.Context, pageURL string, maxAge time.Duration) (*CachedPage, error) {
	page, err := db.GetCachedPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}
	if !page.IsFresh(maxAge) {
		return nil, nil
	}
	if page.FetchStatus != FetchStatusSuccess {
		return nil, nil
	}
	return page, nil
}

// UpsertCachedPage inserts or updates a cached page
func (db *DB) UpsertCachedPage(ctx context.Context, page *CachedPage) error {
	var contentHash *string
	if page.RawHTML != nil {
		hash := HashContent(*page.RawHTML)
		contentHash = &hash
	}

	expiresAt := page.ExpiresAt
	if expiresAt == nil {
		t := time.Now().Add(DefaultPageCacheTTL)
		expiresAt = &t
	}

	fetchStatus := page.FetchStatus
	if fetchStatus == "" {
		fetchStatus = FetchStatusSuccess
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO cached_pages (url, raw_html, parsed_text, content_hash, http_status,
		                           fetch_status, error_message, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		 ON CONFLICT (url) DO UPDATE SET
		     raw_html = $2,
		     parsed_text = $3,
		     content_hash = $4,
		     http_status = $5,
		     fetch_status = $6,
		     error_message = $7,
		     fetched_at = NOW(),
		     expires_at = $8
		 RETURNING id, fetched_at`,
		page.URL, page.RawHTML, page.ParsedText, contentHash, page.HTTPStatus,
		fetchStatus, page.ErrorMsg, expiresAt,
	).Scan(&page.ID, &page.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert cached page: %w", err)
	}
	return nil
}

// RecordFailedFetch records a failed fetch so repeated runs against a dead
// URL can surface the prior error without re-fetching
func (db *DB) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	status := &httpStatus
	if httpStatus == 0 {
		status = nil
	}
	page := &CachedPage{
		URL:         pageURL,
		HTTPStatus:  status,
		FetchStatus: FetchStatusFailed,
		ErrorMsg:    &errorMsg,
	}
	return db.UpsertCachedPage(ctx, page)
}
