package property

// ExtractionMethod records how a price was obtained.
type ExtractionMethod string

const (
	MethodPattern ExtractionMethod = "pattern"
	MethodJudged  ExtractionMethod = "judged"
)

// RateType records which rate was used to derive a total.
type RateType string

const (
	RateNightly RateType = "nightly"
	RateWeekly  RateType = "weekly"
	RateMonthly RateType = "monthly"
)

// PriceQuote is the resolved price for one candidate. Numeric fields
// are pointers so an absent figure is distinguishable from zero.
type PriceQuote struct {
	NightlyRate *float64         `json:"nightly_rate" validate:"omitempty,gte=0"`
	TotalCost   *float64         `json:"total_cost" validate:"omitempty,gte=0"`
	CleaningFee *float64         `json:"cleaning_fee" validate:"omitempty,gte=0"`
	ServiceFee  *float64         `json:"service_fee" validate:"omitempty,gte=0"`
	Taxes       *float64         `json:"taxes" validate:"omitempty,gte=0"`
	WeeklyRate  *float64         `json:"weekly_rate" validate:"omitempty,gte=0"`
	MonthlyRate *float64         `json:"monthly_rate" validate:"omitempty,gte=0"`
	Currency    string           `json:"currency"`
	Method      ExtractionMethod `json:"-"`
	RateUsed    RateType         `json:"-"`
	Confidence  float64          `json:"confidence" validate:"gte=0,lte=1"`
	Found       bool             `json:"-"`
	Err         string           `json:"-"`
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// DeriveTotal fills TotalCost for the given stay length when it was
// not stated on the page. Long stays prefer the monthly or weekly rate
// when one was advertised: a month-plus stay takes the flat monthly
// rate, a week-plus stay takes whole weeks at the weekly rate with the
// remainder at the nightly rate. Fees and taxes are added on top, with
// missing figures counted as zero. A quote with neither a total nor a
// nightly rate is left unpriced.
func (q *PriceQuote) DeriveTotal(nights int) {
	if q.TotalCost != nil {
		return
	}
	if nights < 1 {
		nights = 1
	}

	var base float64
	switch {
	case nights >= 28 && q.MonthlyRate != nil:
		base = *q.MonthlyRate
		q.RateUsed = RateMonthly
	case nights >= 7 && q.WeeklyRate != nil && q.NightlyRate != nil:
		weeks := nights / 7
		extra := nights % 7
		base = float64(weeks)**q.WeeklyRate + float64(extra)**q.NightlyRate
		q.RateUsed = RateWeekly
	case q.NightlyRate != nil:
		base = float64(nights) * *q.NightlyRate
		q.RateUsed = RateNightly
	default:
		return
	}

	total := base + deref(q.CleaningFee) + deref(q.ServiceFee) + deref(q.Taxes)
	q.TotalCost = &total
	q.Found = true
}

// EffectiveNightly returns the all-in per-night cost, or nil when the
// quote has no total.
func (q *PriceQuote) EffectiveNightly(nights int) *float64 {
	if q.TotalCost == nil || nights < 1 {
		return nil
	}
	v := *q.TotalCost / float64(nights)
	return &v
}
