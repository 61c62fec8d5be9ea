package pipeline

import (
	"testing"

	"github.com/stayscout/stayscout/pkg/property"
)

func TestSimilarityScore_PerfectMatch(t *testing.T) {
	p := fullProfile()
	d := property.CandidateDetails{
		PropertyType: "condo",
		Bedrooms:     intPtr(2),
		Bathrooms:    floatPtr(2),
		MaxGuests:    intPtr(6),
		Amenities:    []string{"pool", "ocean view", "wifi", "parking"},
		Location:     "Destin, FL",
		NightlyPrice: floatPtr(310),
	}

	got := SimilarityScore(p, d, "Oceanview Towers Unit 7A")
	if got != 100 {
		t.Errorf("SimilarityScore() = %d, want 100", got)
	}
}

func TestSimilarityScore_LocationOnly(t *testing.T) {
	p := fullProfile()
	d := property.CandidateDetails{Location: "Destin, Florida"}

	// Location is the only earned component; the complex name is in
	// the profile so its weight stays in the denominator.
	// 0.35 / 1.0 = 35
	got := SimilarityScore(p, d, "Some Other Condo")
	if got != 35 {
		t.Errorf("SimilarityScore() = %d, want 35", got)
	}
}

func TestSimilarityScore_NoComplexNameRenormalizes(t *testing.T) {
	p := fullProfile()
	p.Title = "Cozy beachfront cottage"

	d := property.CandidateDetails{Location: "Destin, FL"}

	// Without a complex name the weight pool shrinks to 0.75, so the
	// location component alone is worth 0.35/0.75 = 47.
	got := SimilarityScore(p, d, "Another cottage")
	if got != 47 {
		t.Errorf("SimilarityScore() = %d, want 47", got)
	}
}

func TestSimilarityScore_RegionOnlyIsHalfCredit(t *testing.T) {
	p := fullProfile()
	p.Title = "Cozy beachfront cottage"

	full := SimilarityScore(p, property.CandidateDetails{Location: "Destin, FL"}, "")
	regionOnly := SimilarityScore(p, property.CandidateDetails{Location: "Navarre, FL"}, "")

	if regionOnly >= full {
		t.Errorf("region-only score %d should be below same-city score %d", regionOnly, full)
	}
	if regionOnly == 0 {
		t.Error("same region should still earn partial credit")
	}
}

func TestSimilarityScore_PriceBand(t *testing.T) {
	p := fullProfile()
	inBand := property.CandidateDetails{Location: "Destin", NightlyPrice: floatPtr(380)}
	outOfBand := property.CandidateDetails{Location: "Destin", NightlyPrice: floatPtr(450)}

	// 300 +/- 30% covers 210..390
	if SimilarityScore(p, inBand, "") <= SimilarityScore(p, outOfBand, "") {
		t.Error("in-band price should outscore out-of-band price")
	}
}

func TestSimilarityScore_AdjacentBedroomsPartialCredit(t *testing.T) {
	p := fullProfile()
	exact := property.CandidateDetails{Location: "Destin", PropertyType: "condo", Bedrooms: intPtr(2)}
	adjacent := property.CandidateDetails{Location: "Destin", PropertyType: "condo", Bedrooms: intPtr(3)}
	far := property.CandidateDetails{Location: "Destin", PropertyType: "condo", Bedrooms: intPtr(5)}

	exactScore := SimilarityScore(p, exact, "")
	adjacentScore := SimilarityScore(p, adjacent, "")
	farScore := SimilarityScore(p, far, "")

	if !(exactScore > adjacentScore && adjacentScore > farScore) {
		t.Errorf("want exact %d > adjacent %d > far %d", exactScore, adjacentScore, farScore)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score int
		want  SimilarityCategory
	}{
		{100, CategorySameComplex},
		{90, CategorySameComplex},
		{89, CategoryNearby},
		{80, CategoryNearby},
		{79, CategoryCityWide},
		{70, CategoryCityWide},
		{69, CategoryDifferent},
		{0, CategoryDifferent},
	}

	for _, tt := range tests {
		if got := Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
