package pipeline

import (
	"math"
	"strings"

	"github.com/stayscout/stayscout/pkg/property"
)

// SimilarityCategory buckets a similarity score.
type SimilarityCategory string

const (
	CategorySameComplex SimilarityCategory = "same_complex"
	CategoryNearby      SimilarityCategory = "nearby"
	CategoryCityWide    SimilarityCategory = "city_wide"
	CategoryDifferent   SimilarityCategory = "different"
)

// Weights for the similarity components. When the source listing has
// no complex name the complex weight is dropped and the remainder is
// renormalized, so a standalone house is never penalized for not
// being in a building.
const (
	weightLocation  = 0.35
	weightComplex   = 0.25
	weightSpecs     = 0.15
	weightAmenities = 0.15
	weightPrice     = 0.10
)

// Candidate nightly price must fall within this band of the original
// to earn the price component.
const priceBandPercent = 30

// SimilarityScore computes a 0-100 similarity between the source
// profile and a verified candidate's extracted details. The score is
// arithmetic over fixed component weights, so ranking is reproducible
// across runs regardless of judge wording.
func SimilarityScore(p *property.Profile, d property.CandidateDetails, candidateTitle string) int {
	complexName := p.ComplexName()

	total := weightLocation * locationComponent(p, d)
	weightSum := weightLocation

	if complexName != "" {
		total += weightComplex * complexComponent(complexName, d, candidateTitle)
		weightSum += weightComplex
	}

	total += weightSpecs * specsComponent(p, d)
	total += weightAmenities * amenitiesComponent(p, d)
	total += weightPrice * priceComponent(p, d)
	weightSum += weightSpecs + weightAmenities + weightPrice

	score := int(math.Round(total / weightSum * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Categorize buckets a similarity score: 90+ means another unit in
// the same complex, 80-89 a nearby property, 70-79 a same-city
// comparable, below 70 not comparable.
func Categorize(score int) SimilarityCategory {
	switch {
	case score >= 90:
		return CategorySameComplex
	case score >= 80:
		return CategoryNearby
	case score >= 70:
		return CategoryCityWide
	default:
		return CategoryDifferent
	}
}

func locationComponent(p *property.Profile, d property.CandidateDetails) float64 {
	candidate := strings.ToLower(d.Location)
	if candidate == "" {
		return 0
	}
	if p.City != "" && strings.Contains(candidate, strings.ToLower(p.City)) {
		return 1
	}
	if p.Region != "" && strings.Contains(candidate, strings.ToLower(p.Region)) {
		return 0.5
	}
	if p.Location != "" && strings.Contains(strings.ToLower(p.Location), candidate) {
		return 0.5
	}
	return 0
}

func complexComponent(complexName string, d property.CandidateDetails, candidateTitle string) float64 {
	if complexName == "" {
		return 0
	}
	needle := strings.ToLower(complexName)
	if strings.Contains(strings.ToLower(candidateTitle), needle) ||
		strings.Contains(strings.ToLower(d.Location), needle) {
		return 1
	}
	return 0
}

func specsComponent(p *property.Profile, d property.CandidateDetails) float64 {
	var earned, possible float64

	if p.PropertyType != "" {
		possible++
		if strings.EqualFold(p.PropertyType, d.PropertyType) {
			earned++
		}
	}

	if p.Bedrooms != nil {
		possible++
		if d.Bedrooms != nil {
			diff := *d.Bedrooms - *p.Bedrooms
			if diff < 0 {
				diff = -diff
			}
			switch diff {
			case 0:
				earned++
			case 1:
				earned += 0.5
			}
		}
	}

	if p.Bathrooms != nil {
		possible++
		if d.Bathrooms != nil && math.Abs(*d.Bathrooms-*p.Bathrooms) <= 0.5 {
			earned++
		}
	}

	if p.MaxGuests != nil {
		possible++
		if d.MaxGuests != nil {
			diff := *d.MaxGuests - *p.MaxGuests
			if diff < 0 {
				diff = -diff
			}
			if diff <= 2 {
				earned++
			}
		}
	}

	if possible == 0 {
		return 0
	}
	return earned / possible
}

// amenitiesComponent scores the overlap between the source's top five
// amenities and the candidate's.
func amenitiesComponent(p *property.Profile, d property.CandidateDetails) float64 {
	wanted := firstN(p.Amenities, 5)
	if len(wanted) == 0 {
		return 0
	}

	candidate := strings.ToLower(strings.Join(d.Amenities, " | "))
	matched := 0
	for _, a := range wanted {
		if strings.Contains(candidate, strings.ToLower(a)) {
			matched++
		}
	}
	return float64(matched) / float64(len(wanted))
}

func priceComponent(p *property.Profile, d property.CandidateDetails) float64 {
	if p.NightlyPrice == nil || *p.NightlyPrice <= 0 || d.NightlyPrice == nil {
		return 0
	}
	band := *p.NightlyPrice * priceBandPercent / 100
	if math.Abs(*d.NightlyPrice-*p.NightlyPrice) <= band {
		return 1
	}
	return 0
}
