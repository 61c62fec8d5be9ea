package property

import (
	"testing"
	"time"
)

func TestStay_Nights(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		stay Stay
		want int
	}{
		{"week", Stay{CheckIn: day(1), CheckOut: day(8)}, 7},
		{"single night", Stay{CheckIn: day(1), CheckOut: day(2)}, 1},
		{"zero range", Stay{CheckIn: day(5), CheckOut: day(5)}, 1},
		{"inverted", Stay{CheckIn: day(8), CheckOut: day(1)}, 1},
		{"unset", Stay{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stay.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProfile_ComplexName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"trailing unit number", "Salmon Run D203", "Salmon Run"},
		{"dash unit", "Oceanview Towers - Unit 5B", "Oceanview Towers"},
		{"hash unit", "The Pines #12", "The Pines"},
		{"no unit suffix", "Cozy Beach Cottage", ""},
		{"too short prefix", "A 12", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Profile{Title: tt.title}
			if got := p.ComplexName(); got != tt.want {
				t.Errorf("ComplexName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProfile_LocationString(t *testing.T) {
	p := &Profile{City: "Lincoln City", Region: "Oregon"}
	if got := p.LocationString(); got != "Lincoln City, Oregon" {
		t.Errorf("LocationString() = %q", got)
	}

	p.Location = "Lincoln City, OR, USA"
	if got := p.LocationString(); got != "Lincoln City, OR, USA" {
		t.Errorf("Location should take precedence, got %q", got)
	}
}

func TestPlatformFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.airbnb.com/rooms/12345", PlatformAirbnb},
		{"https://booking.com/hotel/us/foo.html", PlatformBooking},
		{"https://www.vrbo.com/1234", PlatformVrbo},
		{"https://secure.tripadvisor.com/x", PlatformTripadvisor},
		{"https://oceanviewrentals.example.com/", PlatformUnknown},
		{"not a url", PlatformUnknown},
	}

	for _, tt := range tests {
		if got := PlatformFromURL(tt.url); got != tt.want {
			t.Errorf("PlatformFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIsExcludedURL(t *testing.T) {
	if !IsExcludedURL("https://www.facebook.com/somepage") {
		t.Error("facebook should be excluded")
	}
	if !IsExcludedURL("https://en.wikipedia.org/wiki/Lincoln_City") {
		t.Error("wikipedia subdomain should be excluded")
	}
	if IsExcludedURL("https://www.vrbo.com/1234") {
		t.Error("vrbo should not be excluded")
	}
}

func TestVerdict_Exact(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    bool
	}{
		{"boolean set", Verdict{IsExactMatch: true, SimilarityScore: 50}, true},
		{"score promotes", Verdict{IsExactMatch: false, SimilarityScore: 95}, true},
		{"at threshold", Verdict{SimilarityScore: 90}, true},
		{"below threshold", Verdict{SimilarityScore: 89}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.Exact(90); got != tt.want {
				t.Errorf("Exact(90) = %v, want %v", got, tt.want)
			}
		})
	}
}

func f(v float64) *float64 { return &v }

func TestPriceQuote_DeriveTotal_Nightly(t *testing.T) {
	q := &PriceQuote{
		NightlyRate: f(200),
		CleaningFee: f(150),
		ServiceFee:  f(80),
		Taxes:       f(120),
	}
	q.DeriveTotal(5)

	if q.TotalCost == nil {
		t.Fatal("expected a total")
	}
	if *q.TotalCost != 5*200+150+80+120 {
		t.Errorf("TotalCost = %v", *q.TotalCost)
	}
	if q.RateUsed != RateNightly {
		t.Errorf("RateUsed = %q", q.RateUsed)
	}
}

func TestPriceQuote_DeriveTotal_MissingFeesCountAsZero(t *testing.T) {
	q := &PriceQuote{NightlyRate: f(100)}
	q.DeriveTotal(3)

	if q.TotalCost == nil || *q.TotalCost != 300 {
		t.Errorf("TotalCost = %v, want 300", q.TotalCost)
	}
}

func TestPriceQuote_DeriveTotal_WeeklyOverride(t *testing.T) {
	q := &PriceQuote{
		NightlyRate: f(200),
		WeeklyRate:  f(1000),
	}
	q.DeriveTotal(10)

	// 1 week at the weekly rate + 3 extra nights
	if q.TotalCost == nil || *q.TotalCost != 1000+3*200 {
		t.Errorf("TotalCost = %v, want 1600", q.TotalCost)
	}
	if q.RateUsed != RateWeekly {
		t.Errorf("RateUsed = %q", q.RateUsed)
	}
}

func TestPriceQuote_DeriveTotal_MonthlyOverride(t *testing.T) {
	q := &PriceQuote{
		NightlyRate: f(200),
		MonthlyRate: f(3500),
		CleaningFee: f(100),
	}
	q.DeriveTotal(30)

	if q.TotalCost == nil || *q.TotalCost != 3600 {
		t.Errorf("TotalCost = %v, want 3600", q.TotalCost)
	}
	if q.RateUsed != RateMonthly {
		t.Errorf("RateUsed = %q", q.RateUsed)
	}
}

func TestPriceQuote_DeriveTotal_StatedTotalWins(t *testing.T) {
	q := &PriceQuote{NightlyRate: f(200), TotalCost: f(999)}
	q.DeriveTotal(5)

	if *q.TotalCost != 999 {
		t.Errorf("stated total should not be recomputed, got %v", *q.TotalCost)
	}
}

func TestPriceQuote_DeriveTotal_NoRates(t *testing.T) {
	q := &PriceQuote{CleaningFee: f(150)}
	q.DeriveTotal(5)

	if q.TotalCost != nil {
		t.Errorf("quote without rates should stay unpriced, got %v", *q.TotalCost)
	}
}

func TestPriceQuote_EffectiveNightly(t *testing.T) {
	q := &PriceQuote{TotalCost: f(700)}
	got := q.EffectiveNightly(7)
	if got == nil || *got != 100 {
		t.Errorf("EffectiveNightly = %v, want 100", got)
	}

	empty := &PriceQuote{}
	if empty.EffectiveNightly(7) != nil {
		t.Error("unpriced quote should return nil")
	}
}
