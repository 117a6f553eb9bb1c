package model

// CredentialBundle is a point-in-time capture of a platform's session cookies
// plus the user-agent string they were captured under. Missing cookies are
// simply absent from Cookies.
//
// A bundle exists only for the duration of one outbound sync request. It is
// never persisted, never logged, and never included in any status object.
type CredentialBundle struct {
	Cookies   map[string]string
	UserAgent string
}

// Has reports whether the named cookie was present at capture time.
func (b CredentialBundle) Has(key string) bool {
	_, ok := b.Cookies[key]
	return ok
}

// HasPresenceCookie reports whether the platform's presence cookie was
// captured, i.e. whether the user appears to be logged in to the platform.
func (b CredentialBundle) HasPresenceCookie(p Platform) bool {
	return b.Has(p.PresenceKey())
}
