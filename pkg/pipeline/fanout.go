package pipeline

import (
	"context"
	"sync"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/property"
	"github.com/stayscout/stayscout/pkg/search"
)

// QuerySpec pairs a search query with the candidate source it feeds.
type QuerySpec struct {
	Query  string
	Source property.CandidateSource
}

// Fanout runs search queries concurrently and collects candidates.
// A failed query logs and contributes zero candidates; it never
// cancels its siblings.
type Fanout struct {
	searcher        search.TextSearcher
	imageSearcher   search.ImageSearcher
	concurrency     int
	resultsPerQuery int
}

// NewFanout creates a search fanout with a bounded worker pool.
func NewFanout(searcher search.TextSearcher, imageSearcher search.ImageSearcher, concurrency, resultsPerQuery int) *Fanout {
	if concurrency < 1 {
		concurrency = 1
	}
	if resultsPerQuery < 1 {
		resultsPerQuery = 10
	}
	return &Fanout{
		searcher:        searcher,
		imageSearcher:   imageSearcher,
		concurrency:     concurrency,
		resultsPerQuery: resultsPerQuery,
	}
}

// Execute runs all queries, plus a reverse-image lookup when imageURL
// is set and an image searcher is available. Candidates are returned
// in completion order; callers must not rely on ordering until the
// dedupe stage imposes one.
func (f *Fanout) Execute(ctx context.Context, specs []QuerySpec, imageURL string) []property.Candidate {
	units := len(specs)
	withImage := imageURL != "" && f.imageSearcher != nil
	if withImage {
		units++
	}
	if units == 0 {
		return nil
	}

	resultCh := make(chan []property.Candidate, units)
	sem := make(chan struct{}, f.concurrency)
	var wg sync.WaitGroup

	for _, spec := range specs {
		wg.Add(1)
		go func(spec QuerySpec) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hits, err := f.searcher.SearchText(ctx, spec.Query, f.resultsPerQuery)
			if err != nil {
				logger.Warn("search query failed", "query", spec.Query, "error", err)
				return
			}
			resultCh <- toCandidates(hits, spec.Source, spec.Query)
		}(spec)
	}

	if withImage {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			hits, err := f.imageSearcher.SearchImage(ctx, imageURL, f.resultsPerQuery)
			if err != nil {
				logger.Warn("image search failed", "image_url", imageURL, "error", err)
				return
			}
			resultCh <- toCandidates(hits, property.SourceImageSearch, "")
		}()
	}

	wg.Wait()
	close(resultCh)

	var candidates []property.Candidate
	for batch := range resultCh {
		candidates = append(candidates, batch...)
	}

	logger.Info("search fanout complete",
		"queries", len(specs),
		"image_search", withImage,
		"candidates", len(candidates))
	return candidates
}

func toCandidates(hits []search.Result, source property.CandidateSource, query string) []property.Candidate {
	candidates := make([]property.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, property.NewCandidate(hit.URL, source, query, hit.Title, hit.Snippet))
	}
	return candidates
}
