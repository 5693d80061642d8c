// Package service provides technical services for authentication: client
// credential generation and hashing, and signed session token handling.
package service

import "time"

// CredentialService defines operations for client secret generation and
// validation. Implementations must use cryptographically secure random
// generation and an industry-standard hash (argon2id).
type CredentialService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (shared with the client once) and the
	// hashed version (stored in the directory).
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain text secret. Used on credential rotation.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret compares a plain text secret against a stored hash in
	// constant time. Returns true on match.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenSigner issues and verifies the signed bearer tokens bound to sessions.
type TokenSigner interface {
	// Sign produces a signed token asserting the subject client until expiry.
	Sign(clientID string, expiresAt time.Time) (string, error)

	// Verify checks the token signature and expiry and returns the subject
	// client id and expiry on success.
	Verify(token string, now time.Time) (clientID string, expiresAt time.Time, err error)
}
