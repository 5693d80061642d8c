package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// tokenPayload is the claims half of a signed session token.
type tokenPayload struct {
	Subject   string `json:"sub"`
	ExpiresAt int64  `json:"exp"`
}

// tokenSigner implements TokenSigner with HMAC-SHA256 over a JSON payload.
// Token format: base64url(payload) "." base64url(signature).
type tokenSigner struct {
	signingKey []byte
}

// NewTokenSigner creates a TokenSigner. The HMAC key is derived from the
// configured secret with HKDF-SHA256 so the raw secret never signs directly;
// the info string is versioned for future algorithm changes.
func NewTokenSigner(secret string) (TokenSigner, error) {
	if secret == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token signing secret must not be empty")
	}

	info := []byte("session-token-signing-v1")
	reader := hkdf.New(sha256.New, []byte(secret), nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}

	return &tokenSigner{signingKey: signingKey}, nil
}

// Sign produces a signed token binding clientID until expiresAt.
func (t *tokenSigner) Sign(clientID string, expiresAt time.Time) (string, error) {
	payload, err := json.Marshal(tokenPayload{
		Subject:   clientID,
		ExpiresAt: expiresAt.UTC().Unix(),
	})
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode token payload")
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	signature := t.sign(encoded)

	return encoded + "." + signature, nil
}

// Verify checks signature and expiry. All failures collapse into
// ErrInvalidCredentials so callers cannot distinguish tampering from expiry.
func (t *tokenSigner) Verify(token string, now time.Time) (string, time.Time, error) {
	encoded, signature, found := strings.Cut(token, ".")
	if !found || encoded == "" || signature == "" {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}

	expected := t.sign(encoded)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}
	if payload.Subject == "" {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}

	expiresAt := time.Unix(payload.ExpiresAt, 0).UTC()
	if !expiresAt.After(now.UTC()) {
		return "", time.Time{}, authDomain.ErrInvalidCredentials
	}

	return payload.Subject, expiresAt, nil
}

func (t *tokenSigner) sign(encoded string) string {
	mac := hmac.New(sha256.New, t.signingKey)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
