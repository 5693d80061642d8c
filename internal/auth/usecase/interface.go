// Package usecase implements the authentication business logic: the client
// directory operations and the session authenticator.
package usecase

import (
	"context"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
)

// ClientRepository defines persistence operations for client records.
type ClientRepository interface {
	// Create inserts a new client record. Returns ErrClientExists when the id
	// is already taken.
	Create(ctx context.Context, client *authDomain.Client) error

	// Update replaces an existing client record.
	Update(ctx context.Context, client *authDomain.Client) error

	// Get retrieves a client record by id. Returns ErrClientNotFound when absent.
	Get(ctx context.Context, clientID string) (*authDomain.Client, error)

	// List retrieves client records ordered by id with pagination support.
	List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error)
}

// ClientUseCase defines the directory management operations exposed to the
// administrative surface.
type ClientUseCase interface {
	// Create registers a new client and returns the generated plain secret once.
	Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)

	// Update modifies a client's description and status.
	Update(ctx context.Context, clientID string, input *authDomain.UpdateClientInput) error

	// Disable marks a client as disabled. Records are never deleted.
	Disable(ctx context.Context, clientID string) error

	// RotateSecret replaces the client's credential and returns the new plain
	// secret once.
	RotateSecret(ctx context.Context, clientID string) (*authDomain.CreateClientOutput, error)

	// Get retrieves a client record by id.
	Get(ctx context.Context, clientID string) (*authDomain.Client, error)

	// List retrieves client records with pagination support.
	List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error)
}

// Authenticator establishes caller identity from request credentials and owns
// the session table and failed-attempt counters.
type Authenticator interface {
	// Authenticate validates the credentials, applying the precedence session
	// id > client id + secret > bearer token, and returns the resulting
	// authorization context. Failures are counted per (source, client) and a
	// lockout rejects further attempts before any validation.
	Authenticate(ctx context.Context, creds authDomain.Credentials) (*authDomain.AuthContext, error)

	// Invalidate destroys a session before its natural expiry.
	Invalidate(sessionID string)

	// SweepExpiredSessions removes sessions past their expiry. Run periodically
	// by the scheduler, independent of request traffic.
	SweepExpiredSessions(ctx context.Context)

	// PruneFailureCounters drops failure entries older than the lockout window.
	// Run periodically by the scheduler.
	PruneFailureCounters(ctx context.Context)
}
