package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stayscout/stayscout/pkg/affiliate"
)

// FileConfig is the YAML shape of a pipeline config file. Pointer
// fields distinguish "not set" from an explicit zero so a partial
// file only overrides what it names.
type FileConfig struct {
	ExactThreshold       *int              `yaml:"exact_threshold"`
	MinSimilarityExact   *int              `yaml:"min_similarity_exact"`
	MinSimilaritySimilar *int              `yaml:"min_similarity_similar"`
	SearchConcurrency    *int              `yaml:"search_concurrency"`
	ScrapeConcurrency    *int              `yaml:"scrape_concurrency"`
	VerifyConcurrency    *int              `yaml:"verify_concurrency"`
	ResultsPerQuery      *int              `yaml:"results_per_query"`
	MaxContentChars      *int              `yaml:"max_content_chars"`
	ImageSearch          *bool             `yaml:"image_search"`
	OwnerSearch          *bool             `yaml:"owner_search"`
	PriceLookup          *bool             `yaml:"price_lookup"`
	OwnerMinConfidence   *float64          `yaml:"owner_min_confidence"`
	StageTimeout         string            `yaml:"stage_timeout"`
	CacheTTL             string            `yaml:"cache_ttl"`
	Affiliate            *affiliate.Config `yaml:"affiliate"`
}

// LoadConfigFile reads a YAML config file and returns the options it
// expresses, ready to pass to New.
func LoadConfigFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fc.Options()
}

// Options converts the file config into pipeline options. Durations
// are written as strings ("90s", "1h") and validated here.
func (fc *FileConfig) Options() ([]Option, error) {
	var opts []Option

	if fc.ExactThreshold != nil {
		opts = append(opts, WithExactThreshold(*fc.ExactThreshold))
	}
	if fc.MinSimilarityExact != nil || fc.MinSimilaritySimilar != nil {
		opts = append(opts, func(c *Config) {
			if fc.MinSimilarityExact != nil {
				c.MinSimilarityExact = *fc.MinSimilarityExact
			}
			if fc.MinSimilaritySimilar != nil {
				c.MinSimilaritySimilar = *fc.MinSimilaritySimilar
			}
		})
	}
	if fc.SearchConcurrency != nil || fc.ScrapeConcurrency != nil || fc.VerifyConcurrency != nil {
		opts = append(opts, func(c *Config) {
			if fc.SearchConcurrency != nil {
				c.SearchConcurrency = *fc.SearchConcurrency
			}
			if fc.ScrapeConcurrency != nil {
				c.ScrapeConcurrency = *fc.ScrapeConcurrency
			}
			if fc.VerifyConcurrency != nil {
				c.VerifyConcurrency = *fc.VerifyConcurrency
			}
		})
	}
	if fc.ResultsPerQuery != nil {
		opts = append(opts, WithResultsPerQuery(*fc.ResultsPerQuery))
	}
	if fc.MaxContentChars != nil {
		opts = append(opts, WithMaxContentChars(*fc.MaxContentChars))
	}
	if fc.ImageSearch != nil {
		opts = append(opts, WithImageSearch(*fc.ImageSearch))
	}
	if fc.OwnerSearch != nil {
		opts = append(opts, WithOwnerSearch(*fc.OwnerSearch))
	}
	if fc.PriceLookup != nil {
		opts = append(opts, WithPriceLookup(*fc.PriceLookup))
	}
	if fc.OwnerMinConfidence != nil {
		opts = append(opts, WithOwnerMinConfidence(*fc.OwnerMinConfidence))
	}
	if fc.StageTimeout != "" {
		d, err := time.ParseDuration(fc.StageTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid stage_timeout %q: %w", fc.StageTimeout, err)
		}
		opts = append(opts, WithStageTimeout(d))
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_ttl %q: %w", fc.CacheTTL, err)
		}
		opts = append(opts, WithCacheTTL(d))
	}
	if fc.Affiliate != nil {
		opts = append(opts, WithAffiliate(*fc.Affiliate))
	}

	return opts, nil
}
