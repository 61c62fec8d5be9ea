package pipeline

import (
	"reflect"
	"testing"

	"github.com/stayscout/stayscout/pkg/property"
)

func TestDedupe(t *testing.T) {
	first := property.NewCandidate("https://www.vrbo.com/123", property.SourceTextSearch, "query a", "First", "")
	duplicate := property.NewCandidate("https://www.vrbo.com/123", property.SourceImageSearch, "query b", "Second", "")
	other := property.NewCandidate("https://www.booking.com/hotel/x.html", property.SourceTextSearch, "query a", "", "")

	out := Dedupe([]property.Candidate{first, duplicate, other})

	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	// First occurrence wins, keeping its source and query.
	if out[0].Source != property.SourceTextSearch || out[0].Title != "First" {
		t.Errorf("first occurrence not preserved: %+v", out[0])
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	candidates := []property.Candidate{
		property.NewCandidate("https://www.vrbo.com/1", property.SourceTextSearch, "", "", ""),
		property.NewCandidate("https://www.vrbo.com/1", property.SourceTextSearch, "", "", ""),
		property.NewCandidate("https://www.vrbo.com/2", property.SourceTextSearch, "", "", ""),
	}

	once := Dedupe(candidates)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedupe not idempotent: %v vs %v", once, twice)
	}
	if len(candidates) != 3 {
		t.Error("input slice was modified")
	}
}

func TestFilterPlatforms(t *testing.T) {
	candidates := []property.Candidate{
		property.NewCandidate("https://www.booking.com/hotel/x.html", property.SourceTextSearch, "", "", ""),
		property.NewCandidate("https://random-blog.example.com/post", property.SourceTextSearch, "", "", ""),
		property.NewCandidate("https://www.vrbo.com/456", property.SourceTextSearch, "", "", ""),
	}

	out := FilterPlatforms(candidates)
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2: %v", len(out), urlsOf(out))
	}
	for _, c := range out {
		if c.Platform == property.PlatformUnknown {
			t.Errorf("kept non-platform candidate %s", c.URL)
		}
	}
}

func TestFilterOwnerSites(t *testing.T) {
	candidates := []property.Candidate{
		// platform URL, never an owner site
		property.NewCandidate("https://www.vrbo.com/1", property.SourceTextSearch, "", "Beach house vacation rental", ""),
		// excluded domain
		property.NewCandidate("https://www.facebook.com/somepage", property.SourceTextSearch, "", "Direct booking available", ""),
		// independent site with a rental signal
		property.NewCandidate("https://sunsetrentals.com/oceanview", property.SourceTextSearch, "", "Oceanview condo", "Book direct and save"),
		// independent site without any signal
		property.NewCandidate("https://news.example.com/article", property.SourceTextSearch, "", "Travel news", "Latest headlines"),
	}

	out := FilterOwnerSites(candidates)
	if len(out) != 1 || out[0].URL != "https://sunsetrentals.com/oceanview" {
		t.Errorf("got %v, want only the independent rental site", urlsOf(out))
	}
}

func TestDropExcluded(t *testing.T) {
	candidates := []property.Candidate{
		property.NewCandidate("https://www.facebook.com/page", property.SourceTextSearch, "", "", ""),
		property.NewCandidate("https://www.vrbo.com/1", property.SourceTextSearch, "", "", ""),
	}

	out := DropExcluded(candidates)
	if len(out) != 1 || out[0].URL != "https://www.vrbo.com/1" {
		t.Errorf("got %v", urlsOf(out))
	}
}
