// Package domain defines the caller-identity models for the gateway:
// client records, sessions, and the credential shapes accepted by the
// authenticator.
package domain

import "time"

// ClientStatus indicates whether a client may authenticate.
type ClientStatus string

const (
	// ClientStatusActive allows the client to authenticate.
	ClientStatusActive ClientStatus = "active"

	// ClientStatusDisabled blocks authentication regardless of credential
	// correctness. Clients are never deleted, only disabled.
	ClientStatusDisabled ClientStatus = "disabled"
)

// Client is a caller identity in the directory. The credential is stored as a
// one-way hash; the plain secret is only ever returned once, at creation or
// rotation time.
type Client struct {
	ID             string       `json:"client_id"`
	CredentialHash string       `json:"credential_hash"`
	Description    string       `json:"description"`
	Status         ClientStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsActive reports whether the client may authenticate.
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// CreateClientInput contains the parameters for registering a new client.
// The client secret is generated server-side and cannot be supplied.
type CreateClientInput struct {
	ID          string // Unique client identifier
	Description string // Human-readable description
}

// CreateClientOutput contains the result of registering a client.
// SECURITY: the PlainSecret is only returned once and must be securely
// transmitted to the client. It is never retrievable again.
type CreateClientOutput struct {
	ID          string // Client identifier
	PlainSecret string // Plain text secret (transmit securely, never log)
}

// UpdateClientInput contains the mutable fields of a client record.
type UpdateClientInput struct {
	Description string
	Status      ClientStatus
}
