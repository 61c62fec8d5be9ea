package pipeline

import (
	"strings"
	"testing"

	"github.com/stayscout/stayscout/pkg/affiliate"
	"github.com/stayscout/stayscout/pkg/property"
)

func newTestAggregator(linker *affiliate.Linker) *Aggregator {
	return NewAggregator(90, 50, 70, linker)
}

func pricedItem(url string, score int, exact bool, total float64) RankedResult {
	return RankedResult{
		Candidate: property.NewCandidate(url, property.SourceTextSearch, "", "", ""),
		Verdict:   property.Verdict{IsExactMatch: exact, SimilarityScore: score},
		Quote:     property.PriceQuote{TotalCost: floatPtr(total), Currency: "USD", Found: true},
		Score:     score,
		Category:  Categorize(score),
	}
}

func TestAggregate_Buckets(t *testing.T) {
	profile := fullProfile()

	owner := pricedItem("https://sunsetrentals.com/5b", 95, true, 1200)
	owner.Candidate.Source = property.SourceOwnerSite
	owner.Candidate.Platform = property.PlatformOwnerDirect

	items := []RankedResult{
		pricedItem("https://www.booking.com/hotel/a.html", 95, true, 1400),
		// high score promotes to exact even without the boolean
		pricedItem("https://www.vrbo.com/b", 92, false, 1500),
		pricedItem("https://www.vrbo.com/c", 75, false, 1100),
		// below the similar floor, dropped entirely
		pricedItem("https://www.vrbo.com/d", 40, false, 900),
		owner,
	}

	result := newTestAggregator(nil).Aggregate(profile, items, 20)

	if len(result.ExactMatches) != 2 {
		t.Errorf("ExactMatches = %d, want 2", len(result.ExactMatches))
	}
	if len(result.Similar) != 1 {
		t.Errorf("Similar = %d, want 1", len(result.Similar))
	}
	if len(result.OwnerDirect) != 1 {
		t.Errorf("OwnerDirect = %d, want 1", len(result.OwnerDirect))
	}
	if result.Stats.CandidatesSearched != 20 || result.Stats.CandidatesVerified != 5 {
		t.Errorf("stats = %+v", result.Stats)
	}
	// original listing + booking + vrbo + owner-direct; the dropped
	// candidate's platform does not count
	if result.Stats.SourcesSearched != 4 {
		t.Errorf("SourcesSearched = %d, want 4", result.Stats.SourcesSearched)
	}
}

func TestAggregate_BlendedScorePromotesToExact(t *testing.T) {
	// The deterministic score can outrank the judge's. The bucket has
	// to follow the blended score so it never disagrees with Category.
	item := pricedItem("https://www.vrbo.com/b", 85, false, 1500)
	item.Score = 92
	item.Category = Categorize(92)

	result := newTestAggregator(nil).Aggregate(fullProfile(), []RankedResult{item}, 1)

	if len(result.ExactMatches) != 1 {
		t.Fatalf("ExactMatches = %d, want 1", len(result.ExactMatches))
	}
	if got := result.ExactMatches[0].Category; got != CategorySameComplex {
		t.Errorf("Category = %q, want %q", got, CategorySameComplex)
	}
}

func TestAggregate_SortsCheapestFirstWithUnpricedLast(t *testing.T) {
	items := []RankedResult{
		pricedItem("https://www.vrbo.com/expensive", 95, true, 2000),
		{
			Candidate: property.NewCandidate("https://www.vrbo.com/unpriced", property.SourceTextSearch, "", "", ""),
			Verdict:   property.Verdict{IsExactMatch: true, SimilarityScore: 95},
			Score:     95,
		},
		pricedItem("https://www.vrbo.com/cheap", 95, true, 1000),
	}

	result := newTestAggregator(nil).Aggregate(fullProfile(), items, 3)

	exact := result.ExactMatches
	if len(exact) != 3 {
		t.Fatalf("ExactMatches = %d, want 3 (unpriced kept)", len(exact))
	}
	if !strings.Contains(exact[0].Candidate.URL, "cheap") {
		t.Errorf("first = %s, want cheapest", exact[0].Candidate.URL)
	}
	if !strings.Contains(exact[2].Candidate.URL, "unpriced") {
		t.Errorf("last = %s, want unpriced", exact[2].Candidate.URL)
	}
}

func TestAggregate_Savings(t *testing.T) {
	// 5 nights at 300 puts the original stay at 1500.
	profile := fullProfile()
	profile.Stay = testStay()

	items := []RankedResult{
		pricedItem("https://www.vrbo.com/cheaper", 95, true, 1200),
		pricedItem("https://www.booking.com/hotel/pricier.html", 95, true, 1700),
	}

	result := newTestAggregator(nil).Aggregate(profile, items, 2)

	cheaper := result.ExactMatches[0]
	if cheaper.Savings == nil || *cheaper.Savings != 300 {
		t.Errorf("Savings = %v, want 300", cheaper.Savings)
	}

	// A pricier listing reports negative savings rather than hiding it.
	pricier := result.ExactMatches[1]
	if pricier.Savings == nil || *pricier.Savings != -200 {
		t.Errorf("Savings = %v, want -200", pricier.Savings)
	}
}

func TestAggregate_BestDeal(t *testing.T) {
	owner := pricedItem("https://sunsetrentals.com/5b", 95, true, 1100)
	owner.Candidate.Source = property.SourceOwnerSite
	owner.Candidate.Platform = property.PlatformOwnerDirect

	// cheapest overall, but not the same property
	similar := pricedItem("https://www.vrbo.com/similar", 75, false, 900)

	items := []RankedResult{
		pricedItem("https://www.booking.com/hotel/a.html", 95, true, 1300),
		owner,
		similar,
	}

	result := newTestAggregator(nil).Aggregate(fullProfile(), items, 3)

	if result.BestDeal == nil {
		t.Fatal("no best deal")
	}
	if result.BestDeal.Candidate.URL != "https://sunsetrentals.com/5b" {
		t.Errorf("BestDeal = %s, want the cheapest exact listing", result.BestDeal.Candidate.URL)
	}
	if result.Stats.BestPriceSource != string(property.PlatformOwnerDirect) {
		t.Errorf("BestPriceSource = %q", result.Stats.BestPriceSource)
	}
}

func TestAggregate_BestDealOwnerDirectWithoutExactVerdict(t *testing.T) {
	// Owner pages are unstructured, so the judge often scores them
	// conservatively. A cheaper owner-direct listing still wins best
	// deal over a pricier platform exact match.
	owner := pricedItem("https://sunsetrentals.com/5b", 75, false, 1375)
	owner.Candidate.Source = property.SourceOwnerSite
	owner.Candidate.Platform = property.PlatformOwnerDirect

	items := []RankedResult{
		pricedItem("https://www.booking.com/hotel/a.html", 95, true, 1689),
		owner,
	}

	result := newTestAggregator(nil).Aggregate(fullProfile(), items, 2)

	if result.BestDeal == nil {
		t.Fatal("no best deal")
	}
	if result.BestDeal.Candidate.URL != "https://sunsetrentals.com/5b" {
		t.Errorf("BestDeal = %s, want the owner-direct listing", result.BestDeal.Candidate.URL)
	}
	if result.Stats.BestPriceSource != string(property.PlatformOwnerDirect) {
		t.Errorf("BestPriceSource = %q", result.Stats.BestPriceSource)
	}
}

func TestAggregate_PerNightEffective(t *testing.T) {
	// 5 nights; 1200 all-in is 240 a night.
	profile := fullProfile()
	profile.Stay = testStay()

	items := []RankedResult{
		pricedItem("https://www.vrbo.com/a", 95, true, 1200),
		{
			Candidate: property.NewCandidate("https://www.vrbo.com/unpriced", property.SourceTextSearch, "", "", ""),
			Verdict:   property.Verdict{IsExactMatch: true, SimilarityScore: 95},
			Score:     95,
		},
	}

	result := newTestAggregator(nil).Aggregate(profile, items, 2)

	priced := result.ExactMatches[0]
	if priced.PerNightEffective == nil || *priced.PerNightEffective != 240 {
		t.Errorf("PerNightEffective = %v, want 240", priced.PerNightEffective)
	}
	if unpriced := result.ExactMatches[1]; unpriced.PerNightEffective != nil {
		t.Errorf("PerNightEffective = %v for unpriced quote, want nil", unpriced.PerNightEffective)
	}
}

func TestAggregate_AffiliateWrapping(t *testing.T) {
	linker := affiliate.New(affiliate.Config{BookingAID: "12345"})

	owner := pricedItem("https://sunsetrentals.com/5b", 95, true, 1100)
	owner.Candidate.Source = property.SourceOwnerSite

	items := []RankedResult{
		pricedItem("https://www.booking.com/hotel/a.html", 95, true, 1300),
		owner,
	}

	result := newTestAggregator(linker).Aggregate(fullProfile(), items, 2)

	match := result.ExactMatches[0]
	if !match.Affiliate || !strings.Contains(match.BookingURL, "aid=12345") {
		t.Errorf("BookingURL = %q, want affiliate-wrapped", match.BookingURL)
	}

	direct := result.OwnerDirect[0]
	if direct.Affiliate || direct.BookingURL != "https://sunsetrentals.com/5b" {
		t.Errorf("owner-direct link rewritten: %q", direct.BookingURL)
	}
	if result.Stats.AffiliateLinks != 1 {
		t.Errorf("AffiliateLinks = %d, want 1", result.Stats.AffiliateLinks)
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	result := newTestAggregator(nil).Aggregate(fullProfile(), nil, 0)

	if result.BestDeal != nil {
		t.Error("BestDeal set with no candidates")
	}
	if result.Stats.ExactMatches != 0 || result.Stats.SimilarProperties != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}
}
