// Package search provides web search capabilities for candidate
// discovery. SerpAPI is the default implementation; alternate engines
// can be plugged in through the TextSearcher and ImageSearcher
// interfaces.
package search

import "context"

// Result is one search hit.
type Result struct {
	URL     string
	Title   string
	Snippet string
}

// TextSearcher runs text queries against a web search engine.
type TextSearcher interface {
	// SearchText returns up to limit results for the query.
	SearchText(ctx context.Context, query string, limit int) ([]Result, error)
}

// ImageSearcher runs reverse-image queries.
type ImageSearcher interface {
	// SearchImage returns pages where the image at imageURL appears.
	SearchImage(ctx context.Context, imageURL string, limit int) ([]Result, error)
}
