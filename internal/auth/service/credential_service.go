package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// credentialService implements CredentialService using Argon2id hashing.
type credentialService struct {
	hasher *pwdhash.PasswordHasher
}

// GenerateSecret creates a new cryptographically secure 32-byte random secret.
// The secret is base64 URL-encoded for easy transmission and storage.
func (s *credentialService) GenerateSecret() (plainSecret string, hashedSecret string, err error) {
	// Generate 32 random bytes (256 bits)
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret = base64.URLEncoding.EncodeToString(randomBytes)

	hashedSecret, err = s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}

	return plainSecret, hashedSecret, nil
}

// HashSecret hashes a plain text secret using Argon2id.
func (s *credentialService) HashSecret(plainSecret string) (hashedSecret string, err error) {
	hashedSecret, err = s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret performs a constant-time comparison between a plain secret and its hash.
func (s *credentialService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	if err != nil {
		return false
	}
	return ok
}

// NewCredentialService creates a CredentialService using Argon2id hashing with
// the Moderate policy, balancing security and per-request latency.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &credentialService{
		hasher: hasher,
	}
}
