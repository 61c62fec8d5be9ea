package pipeline

import (
	"strings"

	"github.com/stayscout/stayscout/pkg/property"
)

// Dedupe removes candidates whose URL was already seen, keeping the
// first occurrence. It is pure and idempotent: the input slice is not
// modified, and deduping an already-deduped list is a no-op.
func Dedupe(candidates []property.Candidate) []property.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]property.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c)
	}
	return out
}

// FilterPlatforms keeps only candidates hosted on known booking
// platforms. The exact-match path uses this to discard blogs, review
// sites and other noise before the expensive verification stage.
func FilterPlatforms(candidates []property.Candidate) []property.Candidate {
	out := make([]property.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if property.IsPlatformURL(c.URL) {
			out = append(out, c)
		}
	}
	return out
}

// Signals in a result's title or snippet that suggest a bookable
// rental site rather than a directory or article.
var ownerSiteSignals = []string{
	"vacation rental",
	"direct booking",
	"book direct",
	"property rental",
	"rental property",
	"beach house",
	"beach rental",
	"mountain cabin",
	"villa rental",
	"cottage rental",
	"condo rental",
}

// FilterOwnerSites keeps candidates that look like owner-run booking
// sites: not a platform, not an excluded domain, and carrying at least
// one rental signal in the title or snippet.
func FilterOwnerSites(candidates []property.Candidate) []property.Candidate {
	out := make([]property.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if property.IsPlatformURL(c.URL) || property.IsExcludedURL(c.URL) {
			continue
		}
		content := strings.ToLower(c.Title + " " + c.Snippet)
		for _, signal := range ownerSiteSignals {
			if strings.Contains(content, signal) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// DropExcluded removes candidates on domains that never host listings.
func DropExcluded(candidates []property.Candidate) []property.Candidate {
	out := make([]property.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !property.IsExcludedURL(c.URL) {
			out = append(out, c)
		}
	}
	return out
}
