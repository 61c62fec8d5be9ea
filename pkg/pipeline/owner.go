package pipeline

import (
	"strings"

	"github.com/stayscout/stayscout/pkg/property"
)

var bookingKeywords = []string{"direct booking", "book direct", "reserve now", "book now", "availability"}

var freeHostingDomains = []string{"blogspot", "wordpress.com", "wix.com", "weebly", "squarespace"}

// OwnerConfidence scores how likely a candidate is the property's own
// booking site, 0.0 to 1.0. The host name dominates: it is often the
// property management company, and finding it inside the domain itself
// is close to proof.
func OwnerConfidence(c property.Candidate, p *property.Profile) float64 {
	score := 0.4

	url := strings.ToLower(c.URL)
	content := strings.ToLower(c.Title + " " + c.Snippet)

	if p.HostName != "" {
		hostLower := strings.ToLower(p.HostName)
		hostClean := alnumOnly(hostLower)
		urlClean := strings.NewReplacer("-", "", ".", "").Replace(url)

		switch {
		case hostClean != "" && strings.Contains(urlClean, hostClean):
			score += 0.50
		case strings.Contains(content, hostLower):
			score += 0.35
		case hostWordMatch(hostLower, content):
			score += 0.20
		}
	}

	if p.Title != "" && strings.Contains(content, strings.ToLower(p.Title)) {
		score += 0.25
	}

	if p.Address != "" && strings.Contains(content, strings.ToLower(p.Address)) {
		score += 0.15
	}

	for _, kw := range bookingKeywords {
		if strings.Contains(content, kw) {
			score += 0.10
			break
		}
	}

	onFreeHosting := false
	for _, host := range freeHostingDomains {
		if strings.Contains(url, host) {
			onFreeHosting = true
			break
		}
	}
	if !onFreeHosting {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// hostWordMatch reports whether any substantial word of the host name
// appears in the content.
func hostWordMatch(hostLower, content string) bool {
	for _, word := range strings.Fields(hostLower) {
		if len(word) > 3 && strings.Contains(content, word) {
			return true
		}
	}
	return false
}

func alnumOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
