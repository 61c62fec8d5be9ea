// Package property defines the data model shared across the matching
// pipeline: the source listing profile, search candidates, scraped
// page content, match verdicts and price quotes.
package property

import (
	"regexp"
	"strings"
	"time"
)

// Stay is the date range being priced.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Nights returns the number of nights in the stay. A missing or
// inverted range counts as a single night so price math stays defined.
func (s Stay) Nights() int {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return 1
	}
	n := int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Profile describes the source listing the user wants compared.
// It is built once at the start of a pipeline run and treated as
// immutable afterwards.
type Profile struct {
	URL            string
	Title          string
	Location       string
	City           string
	Region         string
	PropertyType   string
	Bedrooms       *int
	Bathrooms      *float64
	MaxGuests      *int
	Amenities      []string
	UniqueFeatures []string
	SearchKeywords []string
	HostName       string
	Address        string
	ImageURL       string
	Stay           Stay
	NightlyPrice   *float64
	TotalPrice     *float64
	Currency       string
}

// Trailing unit designators that listings append to a building name:
// "Salmon Run D203", "Oceanview - Unit 5B", "The Pines #12".
var complexNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)\s*[-–]\s*(?:unit|room|apt|apartment|suite)\s*\w+$`),
	regexp.MustCompile(`^(.+?)\s*#\s*\d+`),
	regexp.MustCompile(`^(.+?)\s+[A-Z]?\d+[A-Z]?$`),
}

// ComplexName derives the building or complex name from the listing
// title by stripping a trailing unit designator. Returns "" when the
// title carries no recognizable unit suffix, or when stripping would
// leave too little to identify a building.
func (p *Profile) ComplexName() string {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return ""
	}

	for _, re := range complexNamePatterns {
		m := re.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) > 3 {
			return name
		}
	}
	return ""
}

// LocationString returns the most specific location description
// available, preferring the free-form location over city/region.
func (p *Profile) LocationString() string {
	if p.Location != "" {
		return p.Location
	}
	parts := make([]string, 0, 2)
	if p.City != "" {
		parts = append(parts, p.City)
	}
	if p.Region != "" {
		parts = append(parts, p.Region)
	}
	return strings.Join(parts, ", ")
}
