package model

import (
	"fmt"
	"strings"
)

// Platform identifies a supported social platform. The set is closed: every
// platform declares its cookie domain, the named cookies to capture, and the
// presence cookie whose absence means the user has no session on that platform.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
)

// Platforms lists every supported platform in declaration order.
var Platforms = []Platform{PlatformInstagram, PlatformLinkedIn}

// platformSpec holds the per-platform cookie declarations.
type platformSpec struct {
	domain      string
	cookieKeys  []string
	presenceKey string
}

var platformSpecs = map[Platform]platformSpec{
	PlatformInstagram: {
		domain:      "instagram.com",
		cookieKeys:  []string{"sessionid", "csrftoken", "ds_user_id", "mid", "ig_did"},
		presenceKey: "sessionid",
	},
	PlatformLinkedIn: {
		domain:      "linkedin.com",
		cookieKeys:  []string{"li_at", "JSESSIONID", "liap", "bcookie", "bscookie"},
		presenceKey: "li_at",
	},
}

// ParsePlatform converts a wire-level platform string into a Platform.
// Returns an error for any value outside the closed set.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(strings.ToLower(s)) {
	case PlatformInstagram:
		return PlatformInstagram, nil
	case PlatformLinkedIn:
		return PlatformLinkedIn, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// MatchesDomain reports whether a cookie host belongs to this platform.
// Hosts are matched against the platform domain and any of its subdomains;
// a leading dot (as stored by browsers for domain cookies) is ignored.
func (p Platform) MatchesDomain(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), ".")
	domain := platformSpecs[p].domain
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// CookieKeys returns the ordered set of named cookies captured for this
// platform. The returned slice must not be mutated.
func (p Platform) CookieKeys() []string {
	return platformSpecs[p].cookieKeys
}

// PresenceKey returns the cookie whose absence means "not logged in to the
// platform". It is always a member of CookieKeys.
func (p Platform) PresenceKey() string {
	return platformSpecs[p].presenceKey
}

// Domain returns the registrable cookie domain for this platform.
func (p Platform) Domain() string {
	return platformSpecs[p].domain
}
