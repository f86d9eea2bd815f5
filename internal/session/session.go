// Package session implements server-side cookie sessions: opaque tokens
// stored hashed, a per-session CSRF secret, and an optional signed
// remember-me cookie that outlives the server-side session.
package session

import "time"

type Session struct {
	TokenHash string
	UserID    string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether the session is bound to a user identity.
// Anonymous sessions exist so pre-login pages can carry a CSRF token.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
