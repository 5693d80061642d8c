package domain

import "time"

// Credentials carries the authentication material extracted from an inbound
// request. At most one mode is attempted, in precedence order: existing
// session id, client id + shared secret, signed bearer token.
type Credentials struct {
	SessionID    string
	ClientID     string
	ClientSecret string
	BearerToken  string

	// SourceAddress identifies the network origin of the request. Together
	// with the client id it keys the failed-attempt counters.
	SourceAddress string
}

// Empty reports whether no credential material is present at all.
func (c Credentials) Empty() bool {
	return c.SessionID == "" && c.ClientID == "" && c.ClientSecret == "" && c.BearerToken == ""
}

// CounterClientID returns the client identifier used to key failure counters,
// falling back to "anonymous" when no client id was supplied.
func (c Credentials) CounterClientID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return "anonymous"
}

// AuthContext is the outcome of a successful authentication, carried through
// the rest of the pipeline.
type AuthContext struct {
	ClientID  string
	SessionID string
	ExpiresAt time.Time

	// Token and FreshSession are set when a new session was minted during this
	// authentication; the pair is surfaced to the caller exactly once.
	Token        string
	FreshSession bool
}
