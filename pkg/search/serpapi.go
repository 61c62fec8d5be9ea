package search

import (
	"context"
	"fmt"
	"strconv"

	serpapi "github.com/serpapi/google-search-results-golang"

	"github.com/stayscout/stayscout/internal/logger"
)

// SerpAPIClient implements TextSearcher and ImageSearcher using the
// SerpAPI Google engines.
type SerpAPIClient struct {
	apiKey string
}

// NewSerpAPIClient creates a SerpAPI-backed searcher.
func NewSerpAPIClient(apiKey string) (*SerpAPIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SerpAPI key required")
	}
	return &SerpAPIClient{apiKey: apiKey}, nil
}

// SearchText runs a Google text search.
func (c *SerpAPIClient) SearchText(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	params := map[string]string{
		"engine": "google",
		"q":      query,
		"num":    strconv.Itoa(limit),
	}

	s := serpapi.NewGoogleSearch(params, c.apiKey)
	data, err := s.GetJSON()
	if err != nil {
		return nil, fmt.Errorf("serpapi text search failed: %w", err)
	}

	results := parseResults(data, "organic_results", limit)
	logger.Debug("text search complete", "query", query, "results", len(results))
	return results, nil
}

// SearchImage runs a Google reverse-image search.
func (c *SerpAPIClient) SearchImage(ctx context.Context, imageURL string, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	params := map[string]string{
		"engine":    "google_reverse_image",
		"image_url": imageURL,
	}

	s := serpapi.NewSearch("google_reverse_image", params, c.apiKey)
	data, err := s.GetJSON()
	if err != nil {
		return nil, fmt.Errorf("serpapi image search failed: %w", err)
	}

	results := parseResults(data, "image_results", limit)
	logger.Debug("image search complete", "image_url", imageURL, "results", len(results))
	return results, nil
}

// parseResults extracts links from a SerpAPI JSON payload. The payload
// is loosely typed, so every field access is guarded.
func parseResults(data map[string]interface{}, key string, limit int) []Result {
	raw, ok := data[key].([]interface{})
	if !ok {
		return nil
	}

	results := make([]Result, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		link, _ := entry["link"].(string)
		if link == "" {
			continue
		}
		title, _ := entry["title"].(string)
		snippet, _ := entry["snippet"].(string)

		results = append(results, Result{URL: link, Title: title, Snippet: snippet})
		if len(results) >= limit {
			break
		}
	}
	return results
}

var (
	_ TextSearcher  = (*SerpAPIClient)(nil)
	_ ImageSearcher = (*SerpAPIClient)(nil)
)
