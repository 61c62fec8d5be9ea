package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/property"
	"github.com/stayscout/stayscout/pkg/search"
)

// fakeJudge routes judge calls by system prompt so one fake can serve
// extraction, verification and pricing in the same run.
type fakeJudge struct {
	fn    func(systemPrompt, userPrompt string, out any) error
	calls int32
}

func (f *fakeJudge) Judge(_ context.Context, systemPrompt, userPrompt string, _ map[string]any, out any) error {
	atomic.AddInt32(&f.calls, 1)
	return f.fn(systemPrompt, userPrompt, out)
}

func (f *fakeJudge) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

// decodeInto is the fake's stand-in for a model emitting JSON.
func decodeInto(payload string, out any) error {
	return json.Unmarshal([]byte(payload), out)
}

type fakeSearcher struct {
	mu      sync.Mutex
	results []search.Result
	failOn  string
	queries []string
}

func (f *fakeSearcher) SearchText(_ context.Context, query string, _ int) ([]search.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, errors.New("search provider unavailable")
	}
	return f.results, nil
}

func (f *fakeSearcher) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeImageSearcher struct {
	mu      sync.Mutex
	results []search.Result
	called  int
}

func (f *fakeImageSearcher) SearchImage(_ context.Context, _ string, _ int) ([]search.Result, error) {
	f.mu.Lock()
	f.called++
	f.mu.Unlock()
	return f.results, nil
}

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]fetcher.Content
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ fetcher.Options) (fetcher.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[url]; ok {
		return fetcher.Content{}, err
	}
	if page, ok := f.pages[url]; ok {
		page.URL = url
		return page, nil
	}
	return fetcher.Content{
		URL:  url,
		Text: "Beachfront condo vacation rental. Nightly rate $200.",
	}, nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

const profileJSON = `{
	"title": "Oceanview Towers - Unit 5B",
	"property_type": "condo",
	"bedrooms": 2,
	"bathrooms": 2,
	"max_guests": 6,
	"location": "Scenic Gulf Drive",
	"city": "Destin",
	"region": "FL",
	"host_name": "Sunset Rentals",
	"amenities": ["pool", "ocean view", "wifi"],
	"unique_features": ["private balcony"],
	"search_keywords": ["destin condo", "oceanview towers"],
	"nightly_price": 300,
	"currency": "USD"
}`

const exactVerdictJSON = `{
	"is_exact_match": true,
	"similarity_score": 95,
	"matching_features": ["same building", "same unit count"],
	"recommendation": "book",
	"extracted_details": {
		"property_type": "condo",
		"bedrooms": 2,
		"location": "Destin, FL",
		"currency": "USD"
	}
}`

const quoteJSON = `{"nightly_rate": 250, "cleaning_fee": 100, "currency": "USD"}`

// routingJudge answers each stage with canned JSON.
func routingJudge() *fakeJudge {
	return &fakeJudge{fn: func(systemPrompt, _ string, out any) error {
		switch {
		case strings.Contains(systemPrompt, "extracting structured property"):
			return decodeInto(profileJSON, out)
		case strings.Contains(systemPrompt, "same physical property"):
			return decodeInto(exactVerdictJSON, out)
		default:
			return decodeInto(quoteJSON, out)
		}
	}}
}

func testStay() property.Stay {
	checkIn := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return property.Stay{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 5)}
}

func TestNew_RequiresDependencies(t *testing.T) {
	judge := routingJudge()
	searcher := &fakeSearcher{}
	fetch := &fakeFetcher{}

	tests := []struct {
		name    string
		deps    Deps
		wantErr error
	}{
		{"missing judge", Deps{Searcher: searcher, Fetcher: fetch}, ErrNoJudge},
		{"missing searcher", Deps{Judge: judge, Fetcher: fetch}, ErrNoSearcher},
		{"missing fetcher", Deps{Judge: judge, Searcher: searcher}, ErrNoFetcher},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_RejectsBadThreshold(t *testing.T) {
	deps := Deps{Judge: routingJudge(), Searcher: &fakeSearcher{}, Fetcher: &fakeFetcher{}}
	if _, err := New(deps, WithExactThreshold(150)); err == nil {
		t.Fatal("New() accepted out-of-range threshold")
	}
}

func TestRun_RequiresURL(t *testing.T) {
	p, err := New(Deps{Judge: routingJudge(), Searcher: &fakeSearcher{}, Fetcher: &fakeFetcher{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), "", testStay()); err == nil {
		t.Fatal("Run() accepted empty URL")
	}
}

func TestRun_FindsExactMatch(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{URL: "https://www.booking.com/hotel/us/oceanview-5b.html", Title: "Oceanview Towers Unit 5B", Snippet: "Destin condo"},
	}}

	p, err := New(
		Deps{Judge: routingJudge(), Searcher: searcher, Fetcher: &fakeFetcher{}},
		WithImageSearch(false),
	)
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Run(context.Background(), "https://www.airbnb.com/rooms/12345", testStay())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Profile == nil || result.Profile.Title != "Oceanview Towers - Unit 5B" {
		t.Fatalf("profile not extracted: %+v", result.Profile)
	}
	if len(result.ExactMatches) != 1 {
		t.Fatalf("ExactMatches = %d, want 1", len(result.ExactMatches))
	}

	match := result.ExactMatches[0]
	if match.Candidate.Platform != property.PlatformBooking {
		t.Errorf("platform = %q, want booking", match.Candidate.Platform)
	}
	if match.Quote.TotalCost == nil {
		t.Fatal("match not priced")
	}
	// 5 nights at 250 plus 100 cleaning
	if *match.Quote.TotalCost != 1350 {
		t.Errorf("TotalCost = %v, want 1350", *match.Quote.TotalCost)
	}
	// original is 5 nights at 300
	if match.Savings == nil || *match.Savings != 150 {
		t.Errorf("Savings = %v, want 150", match.Savings)
	}
	if result.BestDeal == nil || result.BestDeal.Candidate.URL != match.Candidate.URL {
		t.Errorf("BestDeal = %+v", result.BestDeal)
	}
}

func TestRun_NoCandidatesIsNotAnError(t *testing.T) {
	p, err := New(
		Deps{Judge: routingJudge(), Searcher: &fakeSearcher{}, Fetcher: &fakeFetcher{}},
		WithImageSearch(false),
	)
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.Run(context.Background(), "https://www.airbnb.com/rooms/12345", testStay())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.ExactMatches)+len(result.Similar)+len(result.OwnerDirect) != 0 {
		t.Errorf("expected empty result, got %+v", result.Stats)
	}
	if result.BestDeal != nil {
		t.Error("BestDeal set on empty result")
	}
}

func TestRun_CachesResults(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{URL: "https://www.vrbo.com/123456", Title: "Oceanview Towers", Snippet: "Destin"},
	}}

	p, err := New(
		Deps{Judge: routingJudge(), Searcher: searcher, Fetcher: &fakeFetcher{}},
		WithImageSearch(false),
	)
	if err != nil {
		t.Fatal(err)
	}

	url := "https://www.airbnb.com/rooms/777"
	first, err := p.Run(context.Background(), url, testStay())
	if err != nil {
		t.Fatal(err)
	}

	queriesAfterFirst := searcher.queryCount()
	second, err := p.Run(context.Background(), url, testStay())
	if err != nil {
		t.Fatal(err)
	}

	if second != first {
		t.Error("second run did not return the cached result")
	}
	if searcher.queryCount() != queriesAfterFirst {
		t.Error("cached run still hit the search provider")
	}
}

func TestRun_ExtractionFailureIsFatal(t *testing.T) {
	badJudge := &fakeJudge{fn: func(_, _ string, _ any) error {
		return errors.New("provider down")
	}}

	p, err := New(Deps{Judge: badJudge, Searcher: &fakeSearcher{}, Fetcher: &fakeFetcher{}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Run(context.Background(), "https://www.airbnb.com/rooms/1", testStay()); err == nil {
		t.Fatal("Run() succeeded without a profile")
	}
}

func TestDropSelf(t *testing.T) {
	candidates := []property.Candidate{
		property.NewCandidate("https://www.airbnb.com/rooms/12345", property.SourceTextSearch, "q", "", ""),
		property.NewCandidate("https://www.airbnb.com/rooms/99999", property.SourceTextSearch, "q", "", ""),
		property.NewCandidate("https://www.vrbo.com/123", property.SourceTextSearch, "q", "", ""),
	}

	// Same-platform results are echoes of the source listing, not deals.
	kept := dropSelf(candidates, "https://www.airbnb.com/rooms/12345")
	if len(kept) != 1 || kept[0].URL != "https://www.vrbo.com/123" {
		t.Errorf("dropSelf kept %v", urlsOf(kept))
	}
}

func urlsOf(candidates []property.Candidate) []string {
	urls := make([]string, len(candidates))
	for i, c := range candidates {
		urls[i] = c.URL
	}
	return urls
}
