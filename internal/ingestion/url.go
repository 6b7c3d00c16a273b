package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/pinkpig777/agentic-resume-tailor/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = fmt.Errorf("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// Options configures URL ingestion.
type Options struct {
	// Fetcher, when set, routes fetches through the database-backed cache.
	Fetcher *fetch.CachedFetcher
	// UseBrowser enables headless browser fallback for SPA pages.
	UseBrowser bool
	// Verbose logs the extraction steps.
	Verbose bool
}

// IngestFromURL fetches a job posting from a URL, extracts the posting text,
// cleans it, and returns the cleaned text with metadata.
// Platform detection picks selectors tuned for known job boards; when the
// HTTP fetch yields too little text and UseBrowser is set, the page is
// re-rendered in a headless browser.
func IngestFromURL(ctx context.Context, urlStr string, opts *Options) (string, *Metadata, error) {
	if opts == nil {
		opts = &Options{}
	}

	// Detect platform for platform-specific selectors
	platform := fetch.DetectPlatform(urlStr)
	if opts.Verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	html, err := fetchHTML(ctx, urlStr, opts)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(html))
	}

	// Extract text from HTML using platform-specific selectors and noise removal
	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)
	textContent, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if opts.Verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len(textContent))
	}

	// Browser fallback for SPA sites that render nothing over plain HTTP
	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		if opts.Verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				len(textContent), fetch.MinContentLength)
		}

		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr, opts.Verbose)
		if browserErr != nil {
			if opts.Verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
		} else {
			rendered, renderErr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...)
			if renderErr == nil {
				textContent = rendered
				if opts.Verbose {
					log.Printf("[VERBOSE] Browser extracted text: %d chars", len(textContent))
				}
			}
		}
	}

	cleanedText := CleanText(textContent)
	if opts.Verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleanedText))
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)

	return cleanedText, metadata, nil
}

// fetchHTML fetches the raw page, through the cache when one is configured.
func fetchHTML(ctx context.Context, urlStr string, opts *Options) (string, error) {
	if opts.Fetcher != nil {
		result, err := opts.Fetcher.Fetch(ctx, urlStr)
		if err != nil {
			return "", err
		}
		if opts.Verbose && result.FromCache {
			log.Printf("[VERBOSE] Using cached page for %s", urlStr)
		}
		return result.HTML, nil
	}

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}
