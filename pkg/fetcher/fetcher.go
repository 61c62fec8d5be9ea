// Package fetcher defines the interface for web page fetching.
// The static fetcher covers plain HTML listing pages; the dynamic
// fetcher drives a headless browser for JavaScript-rendered booking
// sites. Implement the Fetcher interface to plug in custom fetching
// strategies.
package fetcher

import (
	"context"
	"time"
)

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves page content from a URL.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional wait after load
	Headers         map[string]string
}

// Content represents fetched page data.
type Content struct {
	URL             string
	HTML            string
	Text            string // Extracted readable text
	Title           string
	MetaDescription string
	OGImage         string
	StatusCode      int
	ContentType     string
	FetchedAt       time.Time
	Links           []string // Links found on the page
}
