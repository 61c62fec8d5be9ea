package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/fetcher"
	"github.com/stayscout/stayscout/pkg/judge"
	"github.com/stayscout/stayscout/pkg/property"
)

// Prices outside this range are treated as extraction noise.
const (
	minPlausiblePrice = 20
	maxPlausiblePrice = 20000
)

var bookingPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)b_price_no_default[^>]*>[\s$]*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)"price":\s*"?(\d+(?:\.\d{2})?)"?`),
	regexp.MustCompile(`(?i)data-price["']?\s*=\s*["']?(\d+(?:,\d{3})*(?:\.\d{2})?)`),
}

var vrboPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"listPrice":\s*(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)price-value[^>]*>[\s$]*(\d+(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)"rateNightly":\s*(\d+(?:\.\d{2})?)`),
}

var genericPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:/\s*night|per night|nightly)`),
	regexp.MustCompile(`(?i)"price":\s*(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)"nightly_rate":\s*(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(?:price|rate)["']?\s*[:=]\s*["']?\$?(\d+(?:,\d{3})*(?:\.\d{2})?)`),
}

var priceKeywords = []string{"price", "rate", "cost", "fee", "total", "nightly", "night", "$", "usd"}

// priceSchema constrains the judge's output for price extraction.
var priceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"nightly_rate": map[string]any{"type": []string{"number", "null"}},
		"total_cost":   map[string]any{"type": []string{"number", "null"}},
		"cleaning_fee": map[string]any{"type": []string{"number", "null"}},
		"service_fee":  map[string]any{"type": []string{"number", "null"}},
		"taxes":        map[string]any{"type": []string{"number", "null"}},
		"weekly_rate":  map[string]any{"type": []string{"number", "null"}},
		"monthly_rate": map[string]any{"type": []string{"number", "null"}},
		"currency":     map[string]any{"type": "string"},
		"confidence":   map[string]any{"type": "number", "minimum": 0, "maximum": 1},
	},
	"required": []any{"currency"},
}

const priceSystemPrompt = `You are an expert at extracting pricing information from vacation rental listings. Be precise: report only numbers that appear on the page. If the total for the stay is not shown, leave total_cost null.`

// PriceResolver obtains a price quote for each candidate. It fetches
// the page with stay dates appended to the URL, tries cheap pattern
// extraction first, and falls back to a judge call over a
// pricing-focused excerpt.
type PriceResolver struct {
	fetcher     fetcher.Fetcher
	judge       judge.Judge
	concurrency int
	maxChars    int
}

// NewPriceResolver creates a price resolver with a bounded worker pool.
func NewPriceResolver(f fetcher.Fetcher, j judge.Judge, concurrency, maxChars int) *PriceResolver {
	if concurrency < 1 {
		concurrency = 1
	}
	if maxChars < 1 {
		maxChars = 4000
	}
	return &PriceResolver{fetcher: f, judge: j, concurrency: concurrency, maxChars: maxChars}
}

// Resolve fetches the candidate URL with stay dates and extracts a
// price quote. Failure at any step yields an unpriced quote with Err
// set; pricing failures never remove a candidate from the results.
func (r *PriceResolver) Resolve(ctx context.Context, url string, stay property.Stay) property.PriceQuote {
	nights := stay.Nights()
	dated := WithDateParams(url, stay)

	content, err := r.fetcher.Fetch(ctx, dated, fetcher.Options{})
	if err != nil {
		logger.Debug("price fetch failed", "url", dated, "error", err)
		return property.PriceQuote{Currency: "USD", Err: err.Error()}
	}

	if quote := extractByPattern(content.HTML, property.PlatformFromURL(url)); quote != nil {
		quote.DeriveTotal(nights)
		return *quote
	}

	quote := r.extractByJudge(ctx, url, content.Text, stay, nights)
	quote.DeriveTotal(nights)
	return quote
}

// ResolveBatch prices all URLs concurrently, returning a map keyed by
// the original (undated) URL.
func (r *PriceResolver) ResolveBatch(ctx context.Context, urls []string, stay property.Stay) map[string]property.PriceQuote {
	quotes := make(map[string]property.PriceQuote, len(urls))
	if len(urls) == 0 {
		return quotes
	}

	type priced struct {
		url   string
		quote property.PriceQuote
	}

	resultCh := make(chan priced, len(urls))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resultCh <- priced{url: url, quote: r.Resolve(ctx, url, stay)}
		}(url)
	}

	wg.Wait()
	close(resultCh)

	for p := range resultCh {
		quotes[p.url] = p.quote
	}
	return quotes
}

// WithDateParams appends check-in/check-out query parameters in the
// form each platform expects, so the page renders stay-specific
// pricing. URLs that already carry dates pass through unchanged.
func WithDateParams(url string, stay property.Stay) string {
	if stay.CheckIn.IsZero() || stay.CheckOut.IsZero() {
		return url
	}
	if strings.Contains(strings.ToLower(url), "checkin") || strings.Contains(strings.ToLower(url), "arrival") {
		return url
	}

	checkIn := stay.CheckIn.Format("2006-01-02")
	checkOut := stay.CheckOut.Format("2006-01-02")

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}

	switch property.PlatformFromURL(url) {
	case property.PlatformVrbo:
		return fmt.Sprintf("%s%sarrival=%s&departure=%s", url, sep, checkIn, checkOut)
	case property.PlatformHotels:
		return fmt.Sprintf("%s%scheckIn=%s&checkOut=%s", url, sep, checkIn, checkOut)
	default:
		return fmt.Sprintf("%s%scheckin=%s&checkout=%s", url, sep, checkIn, checkOut)
	}
}

// extractByPattern scans raw HTML for platform-specific price markup.
// Returns nil when nothing plausible is found.
func extractByPattern(html string, platform property.Platform) *property.PriceQuote {
	if html == "" {
		return nil
	}

	var patterns []*regexp.Regexp
	switch platform {
	case property.PlatformBooking:
		patterns = bookingPricePatterns
	case property.PlatformVrbo:
		patterns = vrboPricePatterns
	default:
		patterns = genericPricePatterns
	}

	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			raw := strings.ReplaceAll(m[1], ",", "")
			price, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if price < minPlausiblePrice || price > maxPlausiblePrice {
				continue
			}
			return &property.PriceQuote{
				NightlyRate: &price,
				Currency:    "USD",
				Method:      property.MethodPattern,
				Confidence:  0.7,
				Found:       true,
			}
		}
	}
	return nil
}

func (r *PriceResolver) extractByJudge(ctx context.Context, url, text string, stay property.Stay, nights int) property.PriceQuote {
	excerpt := priceExcerpt(text, r.maxChars)
	if excerpt == "" {
		return property.PriceQuote{Currency: "USD", Err: "no pricing content"}
	}

	prompt := fmt.Sprintf(`Extract pricing from this vacation rental listing.

URL: %s
Dates: %s to %s (%d nights)

Content:
%s`,
		url,
		stay.CheckIn.Format("2006-01-02"),
		stay.CheckOut.Format("2006-01-02"),
		nights,
		excerpt)

	var quote property.PriceQuote
	if err := r.judge.Judge(ctx, priceSystemPrompt, prompt, priceSchema, &quote); err != nil {
		if errors.Is(err, judge.ErrBadJudgement) {
			logger.Debug("price judgement unparseable", "url", url, "error", err)
		} else {
			logger.Warn("price judgement failed", "url", url, "error", err)
		}
		return property.PriceQuote{Currency: "USD", Err: err.Error()}
	}

	if quote.NightlyRate != nil && (*quote.NightlyRate < minPlausiblePrice || *quote.NightlyRate > maxPlausiblePrice) {
		quote.NightlyRate = nil
	}
	if quote.Currency == "" {
		quote.Currency = "USD"
	}
	quote.Method = property.MethodJudged
	quote.Found = quote.NightlyRate != nil || quote.TotalCost != nil
	return quote
}

// priceExcerpt keeps lines near pricing keywords so the judge sees
// rates and fees without the page's boilerplate.
func priceExcerpt(text string, maxChars int) string {
	lines := strings.Split(text, "\n")
	keep := make([]bool, len(lines))

	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, kw := range priceKeywords {
			if strings.Contains(lower, kw) {
				for j := max(0, i-3); j < min(len(lines), i+4); j++ {
					keep[j] = true
				}
				break
			}
		}
	}

	var sb strings.Builder
	for i, line := range lines {
		if !keep[i] {
			continue
		}
		if sb.Len()+len(line) > maxChars {
			break
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		if len(text) > maxChars {
			return text[:maxChars]
		}
		return text
	}
	return strings.TrimSpace(sb.String())
}
