package domain

import "time"

// Session is a time-bounded authorization context minted after a successful
// authentication. Sessions live only in the authenticator's in-memory table;
// they are destroyed on expiry or explicit invalidation.
//
// A session always references an existing, active client at creation time. It
// may later point to a disabled client; that is rejected at use time, not by
// the cleanup sweep.
type Session struct {
	ID         string
	ClientID   string
	Token      string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
