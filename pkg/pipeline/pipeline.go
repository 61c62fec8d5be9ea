// Package pipeline orchestrates a vacation rental price comparison:
// profile the source listing, fan out searches for the same property
// across booking platforms and owner websites, verify candidates with
// an LLM judge, price the survivors for the requested stay, and rank
// everything by total cost.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/affiliate"
	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/judge"
	"github.com/stayscout/stayscout/pkg/property"
	"github.com/stayscout/stayscout/pkg/search"
)

// Configuration problems are construction-time errors: a pipeline
// that can be built is a pipeline that can run.
var (
	ErrNoJudge    = errors.New("pipeline: judge is required")
	ErrNoSearcher = errors.New("pipeline: text searcher is required")
	ErrNoFetcher  = errors.New("pipeline: fetcher is required")
)

// Deps are the external capabilities the pipeline runs on. Judge,
// Searcher and Fetcher are required; the rest are optional and their
// absence disables the corresponding behavior.
type Deps struct {
	Judge         judge.Judge
	Searcher      search.TextSearcher
	ImageSearcher search.ImageSearcher
	Fetcher       fetcher.Fetcher
	Cache         Cache
	Linker        *affiliate.Linker
}

// Pipeline runs listing comparisons. Safe for concurrent use once
// constructed.
type Pipeline struct {
	cfg  Config
	deps Deps

	extractor  *Extractor
	fanout     *Fanout
	scraper    *Scraper
	verifier   *Verifier
	pricer     *PriceResolver
	aggregator *Aggregator
}

// New validates dependencies and assembles the pipeline stages.
func New(deps Deps, opts ...Option) (*Pipeline, error) {
	if deps.Judge == nil {
		return nil, ErrNoJudge
	}
	if deps.Searcher == nil {
		return nil, ErrNoSearcher
	}
	if deps.Fetcher == nil {
		return nil, ErrNoFetcher
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ExactThreshold < 0 || cfg.ExactThreshold > 100 {
		return nil, fmt.Errorf("pipeline: exact threshold %d out of range", cfg.ExactThreshold)
	}

	linker := deps.Linker
	if linker == nil {
		linker = affiliate.New(cfg.Affiliate)
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryCache(cfg.CacheTTL)
	}

	return &Pipeline{
		cfg:        cfg,
		deps:       deps,
		extractor:  NewExtractor(deps.Fetcher, deps.Judge, cfg.MaxContentChars),
		fanout:     NewFanout(deps.Searcher, deps.ImageSearcher, cfg.SearchConcurrency, cfg.ResultsPerQuery),
		scraper:    NewScraper(deps.Fetcher, cfg.ScrapeConcurrency, cfg.MaxContentChars),
		verifier:   NewVerifier(deps.Judge, cfg.VerifyConcurrency),
		pricer:     NewPriceResolver(deps.Fetcher, deps.Judge, cfg.ScrapeConcurrency, cfg.MaxContentChars),
		aggregator: NewAggregator(cfg.ExactThreshold, cfg.MinSimilarityExact, cfg.MinSimilaritySimilar, linker),
	}, nil
}

// Run compares the listing at listingURL against the rest of the
// market for the given stay. The result is best-effort: individual
// search, scrape, verification and pricing failures are recorded in
// Result.Errors but never abort the run. An error return means the
// run could not produce a result at all.
func (p *Pipeline) Run(ctx context.Context, listingURL string, stay property.Stay) (*Result, error) {
	if listingURL == "" {
		return nil, errors.New("pipeline: listing URL is required")
	}

	if cached, ok := p.deps.Cache.Get(listingURL); ok {
		logger.Info("returning cached comparison", "url", listingURL)
		return cached, nil
	}

	started := time.Now()
	logger.Info("starting comparison", "url", listingURL, "nights", stay.Nights())

	profile, err := p.stageExtract(ctx, listingURL, stay)
	if err != nil {
		return nil, err
	}

	candidates := p.stageSearch(ctx, profile)
	if len(candidates) == 0 {
		logger.Info("no candidates found", "url", listingURL)
		result := p.aggregator.Aggregate(profile, nil, 0)
		p.deps.Cache.Set(listingURL, result)
		return result, nil
	}

	platformCands := FilterPlatforms(candidates)
	ownerCands := p.filterOwners(candidates, profile)
	pool := append(platformCands, ownerCands...)

	logger.Info("candidates discovered",
		"total", len(candidates),
		"platform", len(platformCands),
		"owner", len(ownerCands))

	verified := p.stageVerify(ctx, profile, pool)
	ranked := p.rank(profile, verified)
	ranked = p.stagePrice(ctx, ranked, stay)

	result := p.aggregator.Aggregate(profile, ranked, len(candidates))
	result.Errors = collectVerdictErrors(verified)

	logger.Info("comparison complete",
		"url", listingURL,
		"exact", result.Stats.ExactMatches,
		"similar", result.Stats.SimilarProperties,
		"owner_direct", result.Stats.OwnerDirectFound,
		"duration", time.Since(started))

	p.deps.Cache.Set(listingURL, result)
	return result, nil
}

func (p *Pipeline) stageExtract(ctx context.Context, listingURL string, stay property.Stay) (*property.Profile, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.extractor.Extract(ctx, listingURL, stay)
}

// stageSearch fans out exact, similar and owner queries in one pass.
// A provider failure on one query never affects the others.
func (p *Pipeline) stageSearch(ctx context.Context, profile *property.Profile) []property.Candidate {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	var specs []QuerySpec
	for _, q := range GenerateExactQueries(profile) {
		specs = append(specs, QuerySpec{Query: q, Source: property.SourceTextSearch})
	}
	for _, q := range GenerateSimilarQueries(profile) {
		specs = append(specs, QuerySpec{Query: q, Source: property.SourcePlatform})
	}
	if p.cfg.OwnerSearch {
		for _, q := range GenerateOwnerQueries(profile) {
			specs = append(specs, QuerySpec{Query: q, Source: property.SourceOwnerSite})
		}
	}

	imageURL := ""
	if p.cfg.ImageSearch && p.deps.ImageSearcher != nil {
		imageURL = profile.ImageURL
	}

	candidates := p.fanout.Execute(ctx, specs, imageURL)
	candidates = DropExcluded(candidates)
	candidates = dropSelf(candidates, profile.URL)
	candidates = Dedupe(candidates)
	return candidates
}

// filterOwners keeps owner-site candidates whose content signals and
// confidence score clear the configured floor.
func (p *Pipeline) filterOwners(candidates []property.Candidate, profile *property.Profile) []property.Candidate {
	if !p.cfg.OwnerSearch {
		return nil
	}

	var kept []property.Candidate
	for _, c := range FilterOwnerSites(candidates) {
		conf := OwnerConfidence(c, profile)
		if conf < p.cfg.OwnerMinConf {
			continue
		}
		c.Platform = property.PlatformOwnerDirect
		c.Source = property.SourceOwnerSite
		kept = append(kept, c)
	}
	return kept
}

func (p *Pipeline) stageVerify(ctx context.Context, profile *property.Profile, candidates []property.Candidate) []VerifiedCandidate {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}

	contents := p.scraper.ScrapeBatch(ctx, urls)
	return p.verifier.VerifyBatch(ctx, profile, candidates, contents)
}

// rank blends the judge's similarity score with the deterministic
// feature score, taking whichever is available or higher, and assigns
// each candidate its category and owner confidence.
func (p *Pipeline) rank(profile *property.Profile, verified []VerifiedCandidate) []RankedResult {
	ranked := make([]RankedResult, 0, len(verified))
	for _, v := range verified {
		score := v.Verdict.SimilarityScore
		if det := SimilarityScore(profile, v.Verdict.Extracted, v.Content.Title); det > score {
			score = det
		}

		item := RankedResult{
			Candidate: v.Candidate,
			Verdict:   v.Verdict,
			Score:     score,
			Category:  Categorize(score),
		}
		if v.Candidate.Source == property.SourceOwnerSite {
			item.OwnerConfidence = OwnerConfidence(v.Candidate, profile)
		}
		ranked = append(ranked, item)
	}
	return ranked
}

// stagePrice resolves a quote for every ranked candidate. Pricing
// failures leave the candidate unpriced rather than dropping it.
func (p *Pipeline) stagePrice(ctx context.Context, ranked []RankedResult, stay property.Stay) []RankedResult {
	if !p.cfg.PriceLookup || len(ranked) == 0 {
		return ranked
	}

	ctx, cancel := p.stageContext(ctx)
	defer cancel()

	urls := make([]string, len(ranked))
	for i, item := range ranked {
		urls[i] = item.Candidate.URL
	}

	quotes := p.pricer.ResolveBatch(ctx, urls, stay)
	for i := range ranked {
		ranked[i].Quote = quotes[ranked[i].Candidate.URL]
		ranked[i].Quote.DeriveTotal(stay.Nights())
	}
	return ranked
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.StageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.cfg.StageTimeout)
}

// dropSelf removes candidates that resolve back to the source listing.
func dropSelf(candidates []property.Candidate, listingURL string) []property.Candidate {
	self := property.Hostname(listingURL)
	kept := candidates[:0]
	for _, c := range candidates {
		if c.URL == listingURL {
			continue
		}
		if self != "" && property.Hostname(c.URL) == self && property.PlatformFromURL(listingURL) != property.PlatformUnknown {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func collectVerdictErrors(verified []VerifiedCandidate) []string {
	var errs []string
	for _, v := range verified {
		if v.Verdict.Err != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", v.Candidate.URL, v.Verdict.Err))
		}
	}
	return errs
}
