package domain

import (
	"github.com/allisson/gatekeeper/internal/errors"
)

// Authentication errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrClientExists indicates a client with the specified ID already exists.
	ErrClientExists = errors.Wrap(errors.ErrConflict, "client already exists")

	// ErrNoCredentials indicates the request carried no credential material.
	ErrNoCredentials = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrInvalidCredentials indicates a bad secret, token, or session. Returned
	// for unknown clients too, to prevent enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrAccountLocked indicates the failure threshold for this source/client
	// pair was exceeded; the lockout clears only by time decay.
	ErrAccountLocked = errors.Wrap(errors.ErrLocked, "account locked")
)
