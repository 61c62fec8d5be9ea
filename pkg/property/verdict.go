package property

// CandidateDetails holds structured facts the judge extracted from a
// candidate page while verifying it. Numeric fields are pointers so an
// absent value is distinguishable from zero.
type CandidateDetails struct {
	PropertyType string   `json:"property_type"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *float64 `json:"bathrooms" validate:"omitempty,gte=0"`
	MaxGuests    *int     `json:"max_guests" validate:"omitempty,gte=0"`
	Amenities    []string `json:"amenities"`
	Location     string   `json:"location"`
	NightlyPrice *float64 `json:"nightly_price" validate:"omitempty,gte=0"`
	TotalPrice   *float64 `json:"total_price" validate:"omitempty,gte=0"`
	Currency     string   `json:"currency"`
}

// Verdict is the outcome of verifying one candidate against the source
// profile.
type Verdict struct {
	IsExactMatch     bool             `json:"is_exact_match"`
	SimilarityScore  int              `json:"similarity_score" validate:"gte=0,lte=100"`
	MatchingFeatures []string         `json:"matching_features"`
	Contradictions   []string         `json:"contradictions"`
	Recommendation   string           `json:"recommendation"`
	PriceDifference  *float64         `json:"price_difference"`
	Extracted        CandidateDetails `json:"extracted_details"`
	Err              string           `json:"-"`
}

// Exact reconciles the judge's boolean with its numeric score: a score
// at or above the threshold is treated as exact even when the raw
// boolean disagrees.
func (v Verdict) Exact(threshold int) bool {
	return v.IsExactMatch || v.SimilarityScore >= threshold
}

// FailedVerdict builds the zero-score verdict used when a candidate
// could not be verified.
func FailedVerdict(reason string) Verdict {
	return Verdict{
		IsExactMatch:    false,
		SimilarityScore: 0,
		Recommendation:  "skip",
		Err:             reason,
	}
}
