package pipeline

import (
	"time"

	"github.com/stayscout/stayscout/pkg/affiliate"
)

// Config holds all pipeline tuning knobs.
type Config struct {
	// Match thresholds (0-100)
	ExactThreshold       int
	MinSimilarityExact   int
	MinSimilaritySimilar int

	// Worker pool sizes
	SearchConcurrency int
	ScrapeConcurrency int
	VerifyConcurrency int

	// Search settings
	ResultsPerQuery int

	// Content settings
	MaxContentChars int

	// Feature toggles
	ImageSearch  bool
	OwnerSearch  bool
	PriceLookup  bool
	OwnerMinConf float64

	// Timing
	StageTimeout time.Duration
	CacheTTL     time.Duration

	// Affiliate link configuration
	Affiliate affiliate.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ExactThreshold:       90,
		MinSimilarityExact:   50,
		MinSimilaritySimilar: 70,
		SearchConcurrency:    5,
		ScrapeConcurrency:    5,
		VerifyConcurrency:    3,
		ResultsPerQuery:      10,
		MaxContentChars:      4000,
		ImageSearch:          true,
		OwnerSearch:          true,
		PriceLookup:          true,
		OwnerMinConf:         0.5,
		StageTimeout:         2 * time.Minute,
		CacheTTL:             DefaultCacheTTL,
	}
}

// Option configures the pipeline.
type Option func(*Config)

// WithExactThreshold sets the similarity score at or above which a
// candidate is treated as the same property.
func WithExactThreshold(threshold int) Option {
	return func(c *Config) {
		c.ExactThreshold = threshold
	}
}

// WithSimilarityFloors sets the minimum scores for the exact and
// similar result buckets.
func WithSimilarityFloors(exact, similar int) Option {
	return func(c *Config) {
		c.MinSimilarityExact = exact
		c.MinSimilaritySimilar = similar
	}
}

// WithConcurrency sets the worker pool sizes for search, scrape and
// verification.
func WithConcurrency(search, scrape, verify int) Option {
	return func(c *Config) {
		c.SearchConcurrency = search
		c.ScrapeConcurrency = scrape
		c.VerifyConcurrency = verify
	}
}

// WithResultsPerQuery sets how many results each search query asks for.
func WithResultsPerQuery(n int) Option {
	return func(c *Config) {
		c.ResultsPerQuery = n
	}
}

// WithMaxContentChars caps how much scraped text is sent to the judge.
func WithMaxContentChars(n int) Option {
	return func(c *Config) {
		c.MaxContentChars = n
	}
}

// WithImageSearch toggles reverse image search.
func WithImageSearch(enabled bool) Option {
	return func(c *Config) {
		c.ImageSearch = enabled
	}
}

// WithOwnerSearch toggles the owner website hunt.
func WithOwnerSearch(enabled bool) Option {
	return func(c *Config) {
		c.OwnerSearch = enabled
	}
}

// WithPriceLookup toggles per-candidate price resolution.
func WithPriceLookup(enabled bool) Option {
	return func(c *Config) {
		c.PriceLookup = enabled
	}
}

// WithOwnerMinConfidence sets the confidence floor below which a
// suspected owner site is discarded.
func WithOwnerMinConfidence(conf float64) Option {
	return func(c *Config) {
		c.OwnerMinConf = conf
	}
}

// WithStageTimeout bounds each pipeline stage.
func WithStageTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.StageTimeout = d
	}
}

// WithCacheTTL sets how long completed results stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

// WithAffiliate sets the affiliate link configuration.
func WithAffiliate(cfg affiliate.Config) Option {
	return func(c *Config) {
		c.Affiliate = cfg
	}
}
