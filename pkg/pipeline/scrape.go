package pipeline

import (
	"context"
	"sync"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/property"
)

// Scraper fetches candidate pages concurrently. A failed fetch yields
// a ScrapedContent with Err set rather than aborting the batch.
type Scraper struct {
	fetcher     fetcher.Fetcher
	concurrency int
	maxChars    int
}

// NewScraper creates a scraper with a bounded worker pool.
func NewScraper(f fetcher.Fetcher, concurrency, maxChars int) *Scraper {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxChars < 1 {
		maxChars = 4000
	}
	return &Scraper{fetcher: f, concurrency: concurrency, maxChars: maxChars}
}

// Scrape fetches a single URL and converts it to ScrapedContent.
func (s *Scraper) Scrape(ctx context.Context, url string) property.ScrapedContent {
	content, err := s.fetcher.Fetch(ctx, url, fetcher.Options{})
	if err != nil {
		logger.Debug("scrape failed", "url", url, "error", err)
		return property.ScrapedContent{URL: url, Err: err.Error()}
	}

	text := content.Text
	if len(text) > s.maxChars {
		text = text[:s.maxChars]
	}

	return property.ScrapedContent{
		URL:             url,
		Title:           content.Title,
		MetaDescription: content.MetaDescription,
		Text:            text,
	}
}

// ScrapeBatch fetches all URLs with bounded concurrency and returns a
// map keyed by URL. Every input URL gets an entry.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string) map[string]property.ScrapedContent {
	results := make(map[string]property.ScrapedContent, len(urls))
	if len(urls) == 0 {
		return results
	}

	resultCh := make(chan property.ScrapedContent, len(urls))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resultCh <- s.Scrape(ctx, url)
		}(url)
	}

	wg.Wait()
	close(resultCh)

	for sc := range resultCh {
		results[sc.URL] = sc
	}
	return results
}
