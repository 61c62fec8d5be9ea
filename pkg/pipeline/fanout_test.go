package pipeline

import (
	"context"
	"testing"

	"github.com/stayscout/stayscout/pkg/property"
	"github.com/stayscout/stayscout/pkg/search"
)

func TestFanout_CollectsAllQueries(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{URL: "https://www.vrbo.com/1", Title: "Condo"},
	}}
	fanout := NewFanout(searcher, nil, 5, 10)

	specs := []QuerySpec{
		{Query: "destin condo", Source: property.SourceTextSearch},
		{Query: "destin 2 bedroom", Source: property.SourcePlatform},
	}

	candidates := fanout.Execute(context.Background(), specs, "")
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	if searcher.queryCount() != 2 {
		t.Errorf("searcher called %d times, want 2", searcher.queryCount())
	}
}

func TestFanout_FailedQueryDoesNotCancelSiblings(t *testing.T) {
	searcher := &fakeSearcher{
		results: []search.Result{{URL: "https://www.vrbo.com/1"}},
		failOn:  "broken",
	}
	fanout := NewFanout(searcher, nil, 2, 10)

	specs := []QuerySpec{
		{Query: "good query one", Source: property.SourceTextSearch},
		{Query: "broken query", Source: property.SourceTextSearch},
		{Query: "good query two", Source: property.SourceTextSearch},
	}

	candidates := fanout.Execute(context.Background(), specs, "")
	if len(candidates) != 2 {
		t.Errorf("got %d candidates, want 2 from the surviving queries", len(candidates))
	}
}

func TestFanout_ImageSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	imageSearcher := &fakeImageSearcher{results: []search.Result{
		{URL: "https://www.booking.com/hotel/match.html"},
	}}
	fanout := NewFanout(searcher, imageSearcher, 5, 10)

	candidates := fanout.Execute(context.Background(), nil, "https://img.example.com/photo.jpg")

	if imageSearcher.called != 1 {
		t.Fatalf("image searcher called %d times, want 1", imageSearcher.called)
	}
	if len(candidates) != 1 || candidates[0].Source != property.SourceImageSearch {
		t.Errorf("got %+v, want one image-search candidate", candidates)
	}
}

func TestFanout_NoImageURLSkipsImageSearch(t *testing.T) {
	imageSearcher := &fakeImageSearcher{}
	fanout := NewFanout(&fakeSearcher{}, imageSearcher, 5, 10)

	fanout.Execute(context.Background(), []QuerySpec{{Query: "q", Source: property.SourceTextSearch}}, "")

	if imageSearcher.called != 0 {
		t.Errorf("image searcher called %d times, want 0", imageSearcher.called)
	}
}
