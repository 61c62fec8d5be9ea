package pipeline

import (
	"sort"
	"time"

	"github.com/stayscout/stayscout/pkg/affiliate"
	"github.com/stayscout/stayscout/pkg/property"
)

// RankedResult is one candidate listing with everything learned about
// it: the match verdict, the blended similarity score, the resolved
// price, and the link a user should follow to book.
type RankedResult struct {
	Candidate         property.Candidate  `json:"candidate"`
	Verdict           property.Verdict    `json:"verdict"`
	Quote             property.PriceQuote `json:"quote"`
	Score             int                 `json:"score"`
	Category          SimilarityCategory  `json:"category"`
	OwnerConfidence   float64             `json:"owner_confidence,omitempty"`
	Savings           *float64            `json:"savings,omitempty"`
	PerNightEffective *float64            `json:"per_night_effective,omitempty"`
	BookingURL        string              `json:"booking_url"`
	Affiliate         bool                `json:"affiliate"`
}

// Stats summarizes a completed comparison run. SourcesSearched counts
// the original listing plus each distinct platform that produced a
// kept result.
type Stats struct {
	SourcesSearched    int      `json:"sources_searched"`
	CandidatesSearched int      `json:"candidates_searched"`
	CandidatesVerified int      `json:"candidates_verified"`
	ExactMatches       int      `json:"exact_matches"`
	SimilarProperties  int      `json:"similar_properties"`
	OwnerDirectFound   int      `json:"owner_direct_found"`
	AffiliateLinks     int      `json:"affiliate_links"`
	BestPriceSource    string   `json:"best_price_source,omitempty"`
	MaxSavings         *float64 `json:"max_savings,omitempty"`
}

// Result is the outcome of one pipeline run. An empty result with no
// errors means the search genuinely found nothing comparable.
type Result struct {
	Profile      *property.Profile `json:"profile"`
	OwnerDirect  []RankedResult    `json:"owner_direct"`
	ExactMatches []RankedResult    `json:"exact_matches"`
	Similar      []RankedResult    `json:"similar"`
	BestDeal     *RankedResult     `json:"best_deal,omitempty"`
	Stats        Stats             `json:"stats"`
	Errors       []string          `json:"errors,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// Aggregator assembles verified, priced candidates into the final
// ranked result buckets.
type Aggregator struct {
	exactThreshold       int
	minSimilarityExact   int
	minSimilaritySimilar int
	linker               *affiliate.Linker
}

// NewAggregator creates an aggregator. The exact threshold promotes a
// candidate to the exact-match bucket; the similarity floors drop
// candidates too different to be worth showing. linker may be nil.
func NewAggregator(exactThreshold, minSimilarityExact, minSimilaritySimilar int, linker *affiliate.Linker) *Aggregator {
	return &Aggregator{
		exactThreshold:       exactThreshold,
		minSimilarityExact:   minSimilarityExact,
		minSimilaritySimilar: minSimilaritySimilar,
		linker:               linker,
	}
}

// Aggregate buckets the candidates, wraps booking links, computes
// per-candidate savings and effective nightly cost against the
// original listing, and picks the best deal. Bucket promotion uses the
// blended Score so a candidate's bucket always agrees with its
// Category. Input order does not matter; each bucket comes back sorted
// cheapest-first with unpriced candidates at the end.
func (a *Aggregator) Aggregate(profile *property.Profile, items []RankedResult, searched int) *Result {
	result := &Result{
		Profile:     profile,
		GeneratedAt: time.Now(),
	}
	result.Stats.CandidatesSearched = searched
	result.Stats.CandidatesVerified = len(items)

	originalTotal := originalStayTotal(profile)
	nights := 0
	if profile != nil {
		nights = profile.Stay.Nights()
	}

	platforms := make(map[property.Platform]struct{})

	for _, item := range items {
		item.BookingURL = item.Candidate.URL
		if a.linker != nil {
			if wrapped, ok := a.linker.Wrap(item.Candidate.URL); ok {
				item.BookingURL = wrapped
				item.Affiliate = true
				result.Stats.AffiliateLinks++
			}
		}

		if originalTotal != nil && item.Quote.TotalCost != nil {
			saved := *originalTotal - *item.Quote.TotalCost
			item.Savings = &saved
		}
		item.PerNightEffective = item.Quote.EffectiveNightly(nights)

		switch {
		case item.Candidate.Source == property.SourceOwnerSite ||
			item.Candidate.Platform == property.PlatformOwnerDirect:
			result.OwnerDirect = append(result.OwnerDirect, item)
		case (item.Verdict.Exact(a.exactThreshold) || item.Score >= a.exactThreshold) && item.Score >= a.minSimilarityExact:
			result.ExactMatches = append(result.ExactMatches, item)
		case item.Score >= a.minSimilaritySimilar:
			result.Similar = append(result.Similar, item)
		default:
			continue
		}
		platforms[item.Candidate.Platform] = struct{}{}
	}

	sortByPrice(result.OwnerDirect)
	sortByPrice(result.ExactMatches)
	sortByPrice(result.Similar)

	result.Stats.SourcesSearched = 1 + len(platforms)
	result.Stats.OwnerDirectFound = len(result.OwnerDirect)
	result.Stats.ExactMatches = len(result.ExactMatches)
	result.Stats.SimilarProperties = len(result.Similar)

	result.BestDeal = bestDeal(result.OwnerDirect, result.ExactMatches)
	if result.BestDeal != nil {
		result.Stats.BestPriceSource = string(result.BestDeal.Candidate.Platform)
		result.Stats.MaxSavings = result.BestDeal.Savings
	}

	return result
}

// originalStayTotal derives what the user would pay on the original
// listing, preferring a stated total over nightly times nights.
func originalStayTotal(profile *property.Profile) *float64 {
	if profile == nil {
		return nil
	}
	if profile.TotalPrice != nil {
		return profile.TotalPrice
	}
	if profile.NightlyPrice != nil {
		total := *profile.NightlyPrice * float64(profile.Stay.Nights())
		return &total
	}
	return nil
}

// sortByPrice orders results cheapest first. Unpriced candidates keep
// their relative order at the end rather than being discarded.
func sortByPrice(items []RankedResult) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Quote.TotalCost, items[j].Quote.TotalCost
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
}

// bestDeal picks the cheapest priced listing that is the same
// property. Owner-direct entries count as exact matches outright: they
// already cleared the owner-confidence floor, and owner pages are too
// unstructured for the judge's score to gate them fairly.
func bestDeal(ownerDirect, exact []RankedResult) *RankedResult {
	var best *RankedResult
	consider := func(item RankedResult) {
		if item.Quote.TotalCost == nil {
			return
		}
		if best == nil || *item.Quote.TotalCost < *best.Quote.TotalCost {
			copied := item
			best = &copied
		}
	}

	for _, item := range exact {
		consider(item)
	}
	for _, item := range ownerDirect {
		consider(item)
	}
	return best
}
