package models

import "time"

// Session is a short-lived authenticated-session record bound to device
// activity. It is a convenience cache, not a security boundary: validity is
// always recomputed from the timestamps, never read back as a cached boolean.
type Session struct {
	// Token is an opaque random identifier for the session.
	Token string `json:"token"`

	// CreatedAt is when the session was issued.
	CreatedAt time.Time `json:"created_at"`

	// LastActivityAt moves forward on every touch; the session stays valid
	// until LastActivityAt + idle timeout.
	LastActivityAt time.Time `json:"last_activity_at"`

	// ExpiresAt is the precomputed expiry instant, derived from
	// LastActivityAt. Stored for inspection only.
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the session is still alive at the given instant.
func (s *Session) ValidAt(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return now.Before(s.ExpiresAt)
}
