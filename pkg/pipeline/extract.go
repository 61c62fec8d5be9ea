package pipeline

import (
	"context"
	"fmt"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/judge"
	"github.com/stayscout/stayscout/pkg/property"
)

const extractSystemPrompt = `You are an expert at extracting structured property information from vacation rental listings. Your task is to analyze the provided listing page and extract key details that would help identify this same property on other rental websites.

Be thorough but only include information that is clearly stated or strongly implied. If something is not mentioned, use null.`

var profileSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":           map[string]any{"type": "string"},
		"property_type":   map[string]any{"type": "string", "description": "apartment, house, villa, condo, cabin, etc."},
		"bedrooms":        map[string]any{"type": []string{"integer", "null"}},
		"bathrooms":       map[string]any{"type": []string{"number", "null"}},
		"max_guests":      map[string]any{"type": []string{"integer", "null"}},
		"location":        map[string]any{"type": "string", "description": "specific location details: neighborhood, landmarks, street"},
		"city":            map[string]any{"type": "string"},
		"region":          map[string]any{"type": "string", "description": "state, province or country"},
		"address":         map[string]any{"type": "string"},
		"host_name":       map[string]any{"type": "string"},
		"amenities":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"unique_features": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"search_keywords": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "5-10 keywords effective for finding this property"},
		"nightly_price":   map[string]any{"type": []string{"number", "null"}},
		"total_price":     map[string]any{"type": []string{"number", "null"}},
		"currency":        map[string]any{"type": "string"},
	},
	"required": []any{"title", "property_type"},
}

// extractedProfile is the judge's wire shape for a listing profile.
type extractedProfile struct {
	Title          string   `json:"title" validate:"required"`
	PropertyType   string   `json:"property_type"`
	Bedrooms       *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms      *float64 `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests      *int     `json:"max_guests" validate:"omitempty,gte=0"`
	Location       string   `json:"location"`
	City           string   `json:"city"`
	Region         string   `json:"region"`
	Address        string   `json:"address"`
	HostName       string   `json:"host_name"`
	Amenities      []string `json:"amenities"`
	UniqueFeatures []string `json:"unique_features"`
	SearchKeywords []string `json:"search_keywords"`
	NightlyPrice   *float64 `json:"nightly_price" validate:"omitempty,gte=0"`
	TotalPrice     *float64 `json:"total_price" validate:"omitempty,gte=0"`
	Currency       string   `json:"currency"`
}

// Extractor builds a property profile from the source listing page.
type Extractor struct {
	fetcher  fetcher.Fetcher
	judge    judge.Judge
	maxChars int
}

// NewExtractor creates a profile extractor. maxChars bounds how much
// page text is sent to the judge.
func NewExtractor(f fetcher.Fetcher, j judge.Judge, maxChars int) *Extractor {
	if maxChars < 1 {
		maxChars = 4000
	}
	return &Extractor{fetcher: f, judge: j, maxChars: maxChars}
}

// Extract fetches the listing URL and judges its content into a
// profile. Unlike candidate-side failures, a failure here is fatal to
// the run: without a profile there is nothing to compare against.
func (e *Extractor) Extract(ctx context.Context, url string, stay property.Stay) (*property.Profile, error) {
	content, err := e.fetcher.Fetch(ctx, url, fetcher.Options{})
	if err != nil {
		return nil, fmt.Errorf("fetching listing %s: %w", url, err)
	}

	text := content.Text
	if len(text) > e.maxChars {
		text = text[:e.maxChars]
	}

	prompt := fmt.Sprintf(`Analyze this vacation rental listing:

URL: %s
Page Title: %s
Meta Description: %s

Content:
%s

Extract the property details as specified.`,
		url, content.Title, content.MetaDescription, text)

	var extracted extractedProfile
	if err := e.judge.Judge(ctx, extractSystemPrompt, prompt, profileSchema, &extracted); err != nil {
		return nil, fmt.Errorf("extracting profile from %s: %w", url, err)
	}

	profile := &property.Profile{
		URL:            url,
		Title:          extracted.Title,
		Location:       extracted.Location,
		City:           extracted.City,
		Region:         extracted.Region,
		PropertyType:   extracted.PropertyType,
		Bedrooms:       extracted.Bedrooms,
		Bathrooms:      extracted.Bathrooms,
		MaxGuests:      extracted.MaxGuests,
		Amenities:      extracted.Amenities,
		UniqueFeatures: extracted.UniqueFeatures,
		SearchKeywords: extracted.SearchKeywords,
		HostName:       extracted.HostName,
		Address:        extracted.Address,
		ImageURL:       firstImage(content),
		Stay:           stay,
		NightlyPrice:   extracted.NightlyPrice,
		TotalPrice:     extracted.TotalPrice,
		Currency:       extracted.Currency,
	}
	if profile.Currency == "" {
		profile.Currency = "USD"
	}

	logger.Info("extracted listing profile",
		"url", url,
		"title", profile.Title,
		"type", profile.PropertyType,
		"city", profile.City)
	return profile, nil
}

// firstImage picks a representative listing image for reverse image
// search, preferring the page's og:image.
func firstImage(content fetcher.Content) string {
	if content.OGImage != "" {
		return content.OGImage
	}
	for _, link := range content.Links {
		if hasImageExt(link) {
			return link
		}
	}
	return ""
}

func hasImageExt(url string) bool {
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		if len(url) > len(ext) && url[len(url)-len(ext):] == ext {
			return true
		}
	}
	return false
}
