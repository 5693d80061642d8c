package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	"github.com/allisson/gatekeeper/internal/clock"
)

// AuthenticatorConfig holds the tunables of the session authenticator.
type AuthenticatorConfig struct {
	// SessionExpiration is the lifetime of a minted session.
	SessionExpiration time.Duration
	// LockoutMaxAttempts is the failure count within LockoutWindow that locks
	// further attempts from the same (source, client) pair.
	LockoutMaxAttempts int
	// LockoutWindow is the sliding window for counting failures.
	LockoutWindow time.Duration
}

// failureKey identifies a failed-attempt counter.
type failureKey struct {
	source   string
	clientID string
}

// sessionAuthenticator implements Authenticator. It exclusively owns the
// in-memory session table and the failed-attempt counters.
type sessionAuthenticator struct {
	cfg               AuthenticatorConfig
	clientRepo        ClientRepository
	credentialService authService.CredentialService
	tokenSigner       authService.TokenSigner
	clock             clock.Clock
	logger            *slog.Logger

	mu       sync.Mutex
	sessions map[string]*authDomain.Session

	fmu      sync.Mutex
	failures map[failureKey][]time.Time
}

// NewAuthenticator creates the session authenticator.
func NewAuthenticator(
	cfg AuthenticatorConfig,
	clientRepo ClientRepository,
	credentialService authService.CredentialService,
	tokenSigner authService.TokenSigner,
	clk clock.Clock,
	logger *slog.Logger,
) Authenticator {
	return &sessionAuthenticator{
		cfg:               cfg,
		clientRepo:        clientRepo,
		credentialService: credentialService,
		tokenSigner:       tokenSigner,
		clock:             clk,
		logger:            logger,
		sessions:          make(map[string]*authDomain.Session),
		failures:          make(map[failureKey][]time.Time),
	}
}

// Authenticate establishes caller identity from the supplied credentials.
//
// Credential precedence: (a) existing session id, (b) client id + shared
// secret, (c) signed bearer token. Exactly one mode is attempted.
//
// The lockout counter for (source address, client id or "anonymous") is
// consulted before any validation; at or past the threshold the request is
// rejected without touching credentials. Every validation failure increments
// the counter. A success does not reset it: the lockout clears only by time
// decay.
func (a *sessionAuthenticator) Authenticate(
	ctx context.Context,
	creds authDomain.Credentials,
) (*authDomain.AuthContext, error) {
	key := failureKey{source: creds.SourceAddress, clientID: creds.CounterClientID()}

	if a.locked(key) {
		a.logger.Debug("authentication rejected: account locked",
			slog.String("source", creds.SourceAddress),
			slog.String("client_id", key.clientID))
		return nil, authDomain.ErrAccountLocked
	}

	// No credential present is itself a failure.
	if creds.Empty() {
		a.recordFailure(key)
		return nil, authDomain.ErrNoCredentials
	}

	switch {
	case creds.SessionID != "":
		return a.authenticateSession(ctx, creds, key)
	case creds.ClientID != "" || creds.ClientSecret != "":
		return a.authenticateSecret(ctx, creds, key)
	default:
		return a.authenticateBearer(ctx, creds, key)
	}
}

// authenticateSession validates an existing session: it must exist and not be
// expired. No new session is minted; LastUsedAt is refreshed.
//
// Disabling a client does not revoke its open sessions: they stay valid until
// their own expiry. Only new authentications for the disabled client fail.
func (a *sessionAuthenticator) authenticateSession(
	ctx context.Context,
	creds authDomain.Credentials,
	key failureKey,
) (*authDomain.AuthContext, error) {
	now := a.clock.Now()

	a.mu.Lock()
	session, ok := a.sessions[creds.SessionID]
	if ok && session.Expired(now) {
		delete(a.sessions, creds.SessionID)
		ok = false
	}
	var snapshot authDomain.Session
	if ok {
		session.LastUsedAt = now
		snapshot = *session
	}
	a.mu.Unlock()

	if !ok {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	return &authDomain.AuthContext{
		ClientID:  snapshot.ClientID,
		SessionID: snapshot.ID,
		ExpiresAt: snapshot.ExpiresAt,
	}, nil
}

// authenticateSecret validates a client id + shared secret pair and mints a
// new session on success.
func (a *sessionAuthenticator) authenticateSecret(
	ctx context.Context,
	creds authDomain.Credentials,
	key failureKey,
) (*authDomain.AuthContext, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	client, err := a.clientRepo.Get(ctx, creds.ClientID)
	if err != nil {
		// Unknown client collapses into the generic error to prevent enumeration.
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	// A disabled client always fails, regardless of secret correctness.
	if !client.IsActive() {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	if !a.credentialService.CompareSecret(creds.ClientSecret, client.CredentialHash) {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	return a.mintSession(client.ID)
}

// authenticateBearer verifies a signed bearer token and mints a new session
// bound to the token's subject.
func (a *sessionAuthenticator) authenticateBearer(
	ctx context.Context,
	creds authDomain.Credentials,
	key failureKey,
) (*authDomain.AuthContext, error) {
	subject, _, err := a.tokenSigner.Verify(creds.BearerToken, a.clock.Now())
	if err != nil {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	client, err := a.clientRepo.Get(ctx, subject)
	if err != nil || !client.IsActive() {
		a.recordFailure(key)
		return nil, authDomain.ErrInvalidCredentials
	}

	return a.mintSession(client.ID)
}

// mintSession creates a session with a random identifier and a signed token
// bound to the client id, with the configured expiry.
func (a *sessionAuthenticator) mintSession(clientID string) (*authDomain.AuthContext, error) {
	now := a.clock.Now()
	expiresAt := now.Add(a.cfg.SessionExpiration)

	token, err := a.tokenSigner.Sign(clientID, expiresAt)
	if err != nil {
		return nil, err
	}

	session := &authDomain.Session{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ClientID:   clientID,
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
	}

	a.mu.Lock()
	a.sessions[session.ID] = session
	a.mu.Unlock()

	a.logger.Debug("session minted",
		slog.String("client_id", clientID),
		slog.String("session_id", session.ID))

	return &authDomain.AuthContext{
		ClientID:     clientID,
		SessionID:    session.ID,
		ExpiresAt:    expiresAt,
		Token:        token,
		FreshSession: true,
	}, nil
}

// Invalidate destroys a session before its natural expiry.
func (a *sessionAuthenticator) Invalidate(sessionID string) {
	a.mu.Lock()
	delete(a.sessions, sessionID)
	a.mu.Unlock()
}

// SweepExpiredSessions removes sessions past their expiry.
func (a *sessionAuthenticator) SweepExpiredSessions(ctx context.Context) {
	now := a.clock.Now()
	removed := 0

	a.mu.Lock()
	for id, session := range a.sessions {
		if session.Expired(now) {
			delete(a.sessions, id)
			removed++
		}
	}
	a.mu.Unlock()

	if removed > 0 {
		a.logger.Debug("expired sessions swept", slog.Int("count", removed))
	}
}

// PruneFailureCounters drops failure entries older than the lockout window.
func (a *sessionAuthenticator) PruneFailureCounters(ctx context.Context) {
	cutoff := a.clock.Now().Add(-a.cfg.LockoutWindow)

	a.fmu.Lock()
	for key, attempts := range a.failures {
		kept := attempts[:0]
		for _, at := range attempts {
			if at.After(cutoff) {
				kept = append(kept, at)
			}
		}
		if len(kept) == 0 {
			delete(a.failures, key)
		} else {
			a.failures[key] = kept
		}
	}
	a.fmu.Unlock()
}

// locked reports whether the failure count within the window reached the
// threshold.
func (a *sessionAuthenticator) locked(key failureKey) bool {
	cutoff := a.clock.Now().Add(-a.cfg.LockoutWindow)

	a.fmu.Lock()
	defer a.fmu.Unlock()

	count := 0
	for _, at := range a.failures[key] {
		if at.After(cutoff) {
			count++
		}
	}
	return count >= a.cfg.LockoutMaxAttempts
}

func (a *sessionAuthenticator) recordFailure(key failureKey) {
	a.fmu.Lock()
	a.failures[key] = append(a.failures[key], a.clock.Now())
	a.fmu.Unlock()
}
