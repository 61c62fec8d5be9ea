package property

import (
	"net/url"
	"strings"
)

// Platform identifies the booking site a URL belongs to.
type Platform string

const (
	PlatformAirbnb      Platform = "airbnb"
	PlatformVrbo        Platform = "vrbo"
	PlatformBooking     Platform = "booking"
	PlatformHotels      Platform = "hotels"
	PlatformExpedia     Platform = "expedia"
	PlatformTripadvisor Platform = "tripadvisor"
	PlatformAgoda       Platform = "agoda"
	PlatformHomeAway    Platform = "homeaway"
	PlatformFlipKey     Platform = "flipkey"
	PlatformVacasa      Platform = "vacasa"
	PlatformOwnerDirect Platform = "owner_direct"
	PlatformUnknown     Platform = "unknown"
)

// PlatformDomains maps booking-site domains to their platform.
var PlatformDomains = map[string]Platform{
	"airbnb.com":         PlatformAirbnb,
	"vrbo.com":           PlatformVrbo,
	"booking.com":        PlatformBooking,
	"hotels.com":         PlatformHotels,
	"expedia.com":        PlatformExpedia,
	"tripadvisor.com":    PlatformTripadvisor,
	"trip.com":           PlatformAgoda,
	"agoda.com":          PlatformAgoda,
	"homeaway.com":       PlatformHomeAway,
	"flipkey.com":        PlatformFlipKey,
	"vacasa.com":         PlatformVacasa,
	"vacationrenter.com": PlatformUnknown,
	"rentalo.com":        PlatformUnknown,
	"tripping.com":       PlatformUnknown,
}

// ExcludedDomains are sites that turn up in search results but never
// host bookable listings.
var ExcludedDomains = []string{
	"yelp.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"reddit.com",
	"pinterest.com",
	"youtube.com",
	"google.com",
	"wikipedia.org",
}

// Hostname returns the lowercased host of rawURL without a www prefix.
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}

// PlatformFromURL identifies which booking platform hosts the URL.
func PlatformFromURL(rawURL string) Platform {
	host := Hostname(rawURL)
	if host == "" {
		return PlatformUnknown
	}
	for domain, platform := range PlatformDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform
		}
	}
	return PlatformUnknown
}

// IsPlatformURL reports whether the URL belongs to a known booking
// platform.
func IsPlatformURL(rawURL string) bool {
	host := Hostname(rawURL)
	if host == "" {
		return false
	}
	for domain := range PlatformDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// IsExcludedURL reports whether the URL belongs to a domain that never
// hosts listings.
func IsExcludedURL(rawURL string) bool {
	host := Hostname(rawURL)
	if host == "" {
		return false
	}
	for _, domain := range ExcludedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
