// Package pipeline implements the multi-stage property matching and
// ranking flow: search fanout, deduplication, verification, similarity
// scoring, price resolution and aggregation.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/stayscout/stayscout/pkg/property"
)

const (
	maxExactQueries   = 5
	maxSimilarQueries = 6
	maxOwnerQueries   = 8
)

// Platforms worth site-restricting exact-match queries to.
var siteRestrictedDomains = []string{"booking.com", "vrbo.com", "tripadvisor.com"}

// Amenities that push a similar-property query toward the luxury end.
var luxuryAmenities = []string{"pool", "hot tub", "ocean view", "concierge", "gym", "spa"}

// Street tokens that mark a location string as a usable address.
var streetTokens = []string{"street", "avenue", "road", "drive", "boulevard"}

// GenerateExactQueries builds high-specificity queries aimed at
// finding this exact listing on other platforms, most specific first.
// Queries whose inputs are missing are skipped.
func GenerateExactQueries(p *property.Profile) []string {
	queries := make([]string, 0, maxExactQueries)
	location := p.LocationString()

	if complexName := p.ComplexName(); complexName != "" && location != "" {
		queries = append(queries, fmt.Sprintf(`"%s" %s vacation rental -airbnb`, complexName, location))
	}

	if p.Title != "" {
		sites := make([]string, len(siteRestrictedDomains))
		for i, d := range siteRestrictedDomains {
			sites[i] = "site:" + d
		}
		queries = append(queries, fmt.Sprintf(`"%s" %s`, p.Title, strings.Join(sites, " OR ")))
	}

	if len(p.UniqueFeatures) > 0 && location != "" {
		features := strings.Join(firstN(p.UniqueFeatures, 2), " ")
		queries = append(queries, fmt.Sprintf(`%s "%s" vacation rental -airbnb`, location, features))
	}

	if hasStreetToken(location) {
		queries = append(queries, fmt.Sprintf(`"%s" short term rental booking.com vrbo`, location))
	}

	if p.PropertyType != "" && len(p.Amenities) > 0 && location != "" {
		amenities := strings.Join(firstN(p.Amenities, 2), " ")
		queries = append(queries, fmt.Sprintf(`%s %s "%s" -airbnb`, location, p.PropertyType, amenities))
	}

	return capQueries(queries, maxExactQueries)
}

// GenerateSimilarQueries builds broader queries for comparable
// properties in the same area.
func GenerateSimilarQueries(p *property.Profile) []string {
	queries := make([]string, 0, maxSimilarQueries)
	location := p.LocationString()
	if location == "" {
		return nil
	}

	propType := p.PropertyType
	if propType == "" {
		propType = "vacation rental"
	}

	if p.Bedrooms != nil {
		queries = append(queries, fmt.Sprintf("%s %d bedroom %s booking.com vrbo", location, *p.Bedrooms, propType))
	}

	if p.Bedrooms != nil && p.Bathrooms != nil {
		queries = append(queries, fmt.Sprintf("%s %dBR %gBA vacation rental -airbnb", location, *p.Bedrooms, *p.Bathrooms))
	}

	if len(p.Amenities) > 0 {
		top := strings.Join(firstN(p.Amenities, 2), " ")
		queries = append(queries, fmt.Sprintf("%s %s %s -airbnb", location, top, propType))
	}

	queries = append(queries, fmt.Sprintf("%s %s short term rental booking vrbo", location, propType))

	category := "affordable"
	if isLuxury(p.Amenities) || isLuxury(p.UniqueFeatures) {
		category = "luxury"
	}
	queries = append(queries, fmt.Sprintf("%s %s %s rental", location, category, propType))

	return capQueries(queries, maxSimilarQueries)
}

// GenerateOwnerQueries builds queries aimed at the property's own
// booking site, in priority order: the host name is often the
// management company and finds a direct site fastest, then the
// property name, then the address, then a platform-negated location
// sweep.
func GenerateOwnerQueries(p *property.Profile) []string {
	queries := make([]string, 0, maxOwnerQueries)

	if p.HostName != "" {
		queries = append(queries, fmt.Sprintf(`"%s" vacation rentals`, p.HostName))
		queries = append(queries, fmt.Sprintf(`"%s" direct booking`, p.HostName))
		if p.Region != "" {
			queries = append(queries, fmt.Sprintf(`"%s" %s vacation rentals`, p.HostName, p.Region))
		}
		if p.City != "" {
			queries = append(queries, fmt.Sprintf(`"%s" %s property rentals`, p.HostName, p.City))
		}
	}

	if p.Title != "" && p.City != "" {
		queries = append(queries, fmt.Sprintf(`"%s" %s direct booking`, p.Title, p.City))
		queries = append(queries, fmt.Sprintf(`"%s" %s vacation rental -airbnb -vrbo`, p.Title, p.City))
	}

	if p.Address != "" {
		queries = append(queries, fmt.Sprintf(`"%s" vacation rental direct booking`, p.Address))
	}

	if p.City != "" && p.Region != "" {
		propType := p.PropertyType
		if propType == "" {
			propType = "vacation rental"
		}
		queries = append(queries, fmt.Sprintf("%s %s %s direct booking -airbnb -vrbo -booking.com", p.City, p.Region, propType))
	}

	return capQueries(queries, maxOwnerQueries)
}

func capQueries(queries []string, max int) []string {
	if len(queries) > max {
		return queries[:max]
	}
	return queries
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func hasStreetToken(location string) bool {
	lower := strings.ToLower(location)
	for _, token := range streetTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func isLuxury(amenities []string) bool {
	joined := strings.ToLower(strings.Join(amenities, " "))
	for _, a := range luxuryAmenities {
		if strings.Contains(joined, a) {
			return true
		}
	}
	return false
}
