package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/stayscout/stayscout/internal/logger"
	"github.com/stayscout/stayscout/pkg/judge"
	"github.com/stayscout/stayscout/pkg/property"
)

const verifySystemPrompt = `You are an expert at comparing vacation rental property listings to determine if they represent the same physical property.

Analyze the original property details and the candidate listing content to determine if they are THE SAME property.

Be strict: only report an exact match if you are highly confident they are the same property.
Key indicators: location, property type, bedrooms/bathrooms, unique amenities, descriptions.

Score similarity 0-100. While judging, weigh location proximity most heavily, then whether both are in the same complex or building, then matching property specs, then shared amenities, then price band.`

// verdictSchema constrains the judge's output for verification.
var verdictSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"is_exact_match":   map[string]any{"type": "boolean"},
		"similarity_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"matching_features": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"contradictions": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"recommendation":   map[string]any{"type": "string"},
		"price_difference": map[string]any{"type": []string{"number", "null"}},
		"extracted_details": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"property_type": map[string]any{"type": "string"},
				"bedrooms":      map[string]any{"type": []string{"integer", "null"}},
				"bathrooms":     map[string]any{"type": []string{"number", "null"}},
				"max_guests":    map[string]any{"type": []string{"integer", "null"}},
				"amenities": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"location":      map[string]any{"type": "string"},
				"nightly_price": map[string]any{"type": []string{"number", "null"}},
				"total_price":   map[string]any{"type": []string{"number", "null"}},
				"currency":      map[string]any{"type": "string"},
			},
		},
	},
	"required": []any{"is_exact_match", "similarity_score"},
}

// VerifiedCandidate pairs a candidate with its scraped content and
// the judge's verdict.
type VerifiedCandidate struct {
	Candidate property.Candidate
	Content   property.ScrapedContent
	Verdict   property.Verdict
}

// Verifier judges whether candidates match the source property.
type Verifier struct {
	judge       judge.Judge
	concurrency int
}

// NewVerifier creates a verifier with a bounded worker pool.
func NewVerifier(j judge.Judge, concurrency int) *Verifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Verifier{judge: j, concurrency: concurrency}
}

// Verify judges one candidate against the profile. A failed fetch
// short-circuits to a zero verdict without spending a judge call; a
// bad judgement likewise becomes a zero verdict with the reason
// recorded.
func (v *Verifier) Verify(ctx context.Context, p *property.Profile, c property.Candidate, content property.ScrapedContent) VerifiedCandidate {
	if content.Failed() {
		reason := content.Err
		if reason == "" {
			reason = "no content"
		}
		return VerifiedCandidate{
			Candidate: c,
			Content:   content,
			Verdict:   property.FailedVerdict("failed to scrape: " + reason),
		}
	}

	var verdict property.Verdict
	err := v.judge.Judge(ctx, verifySystemPrompt, verifyUserPrompt(p, c, content), verdictSchema, &verdict)
	if err != nil {
		logger.Warn("verification judgement failed", "url", c.URL, "error", err)
		if errors.Is(err, judge.ErrBadJudgement) {
			return VerifiedCandidate{Candidate: c, Content: content, Verdict: property.FailedVerdict(err.Error())}
		}
		return VerifiedCandidate{Candidate: c, Content: content, Verdict: property.FailedVerdict("judgement unavailable: " + err.Error())}
	}

	return VerifiedCandidate{Candidate: c, Content: content, Verdict: verdict}
}

// VerifyBatch judges candidates concurrently. One bad candidate never
// cancels its siblings; its verdict simply scores zero.
func (v *Verifier) VerifyBatch(ctx context.Context, p *property.Profile, candidates []property.Candidate, contents map[string]property.ScrapedContent) []VerifiedCandidate {
	if len(candidates) == 0 {
		return nil
	}

	resultCh := make(chan VerifiedCandidate, len(candidates))
	sem := make(chan struct{}, v.concurrency)
	var wg sync.WaitGroup

	for _, c := range candidates {
		wg.Add(1)
		go func(c property.Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resultCh <- v.Verify(ctx, p, c, contents[c.URL])
		}(c)
	}

	wg.Wait()
	close(resultCh)

	results := make([]VerifiedCandidate, 0, len(candidates))
	for vc := range resultCh {
		results = append(results, vc)
	}
	return results
}

func verifyUserPrompt(p *property.Profile, c property.Candidate, content property.ScrapedContent) string {
	var sb strings.Builder

	sb.WriteString("ORIGINAL PROPERTY:\n")
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	fmt.Fprintf(&sb, "Location: %s\n", p.LocationString())
	fmt.Fprintf(&sb, "Property Type: %s\n", orNotSpecified(p.PropertyType))
	fmt.Fprintf(&sb, "Bedrooms: %s\n", intOrNotSpecified(p.Bedrooms))
	fmt.Fprintf(&sb, "Bathrooms: %s\n", floatOrNotSpecified(p.Bathrooms))
	fmt.Fprintf(&sb, "Amenities: %s\n", listOrNotSpecified(p.Amenities))
	fmt.Fprintf(&sb, "Unique Features: %s\n", listOrNotSpecified(p.UniqueFeatures))

	sb.WriteString("\nCANDIDATE LISTING:\n")
	fmt.Fprintf(&sb, "URL: %s\n", c.URL)
	fmt.Fprintf(&sb, "Title: %s\n", content.Title)
	fmt.Fprintf(&sb, "Meta Description: %s\n", content.MetaDescription)
	fmt.Fprintf(&sb, "Content Preview: %s\n", content.Text)

	sb.WriteString("\nIs this the same property?")
	return sb.String()
}

func orNotSpecified(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}

func intOrNotSpecified(v *int) string {
	if v == nil {
		return "not specified"
	}
	return fmt.Sprintf("%d", *v)
}

func floatOrNotSpecified(v *float64) string {
	if v == nil {
		return "not specified"
	}
	return fmt.Sprintf("%g", *v)
}

func listOrNotSpecified(items []string) string {
	if len(items) == 0 {
		return "not specified"
	}
	return strings.Join(items, ", ")
}
