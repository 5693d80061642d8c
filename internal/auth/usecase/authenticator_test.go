package usecase

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	"github.com/allisson/gatekeeper/internal/clock"
)

// fakeClientRepo is an in-memory ClientRepository for authenticator tests.
type fakeClientRepo struct {
	clients map[string]*authDomain.Client
}

func (f *fakeClientRepo) Create(ctx context.Context, client *authDomain.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Update(ctx context.Context, client *authDomain.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	client, ok := f.clients[clientID]
	if !ok {
		return nil, authDomain.ErrClientNotFound
	}
	copied := *client
	return &copied, nil
}

func (f *fakeClientRepo) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	return nil, nil
}

// fakeCredentialService compares secrets by "hashed:" prefix so tests avoid
// argon2 latency.
type fakeCredentialService struct{}

func (fakeCredentialService) GenerateSecret() (string, string, error) {
	return "plain", "hashed:plain", nil
}

func (fakeCredentialService) HashSecret(plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (fakeCredentialService) CompareSecret(plain, hashed string) bool {
	return hashed == "hashed:"+plain
}

type authFixture struct {
	auth   Authenticator
	repo   *fakeClientRepo
	clock  *clock.FakeClock
	signer authService.TokenSigner
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	signer, err := authService.NewTokenSigner("test-signing-secret")
	require.NoError(t, err)

	repo := &fakeClientRepo{clients: map[string]*authDomain.Client{
		"c1": {
			ID:             "c1",
			CredentialHash: "hashed:s3cret",
			Status:         authDomain.ClientStatusActive,
		},
	}}

	auth := NewAuthenticator(
		AuthenticatorConfig{
			SessionExpiration:  time.Hour,
			LockoutMaxAttempts: 5,
			LockoutWindow:      15 * time.Minute,
		},
		repo,
		fakeCredentialService{},
		signer,
		fake,
		slog.New(slog.DiscardHandler),
	)

	return &authFixture{auth: auth, repo: repo, clock: fake, signer: signer}
}

func secretCreds(secret string) authDomain.Credentials {
	return authDomain.Credentials{
		ClientID:      "c1",
		ClientSecret:  secret,
		SourceAddress: "10.0.0.1",
	}
}

func TestAuthenticator_SecretSuccess(t *testing.T) {
	f := newAuthFixture(t)

	authCtx, err := f.auth.Authenticate(context.Background(), secretCreds("s3cret"))
	require.NoError(t, err)

	assert.Equal(t, "c1", authCtx.ClientID)
	assert.NotEmpty(t, authCtx.SessionID)
	assert.NotEmpty(t, authCtx.Token)
	assert.True(t, authCtx.FreshSession)

	// Session expiry is exactly the configured window past creation
	assert.Equal(t, f.clock.Now().Add(time.Hour), authCtx.ExpiresAt)
}

func TestAuthenticator_SecretFailure(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Authenticate(context.Background(), secretCreds("wrong"))
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_UnknownClient(t *testing.T) {
	f := newAuthFixture(t)

	creds := authDomain.Credentials{ClientID: "ghost", ClientSecret: "x", SourceAddress: "10.0.0.1"}
	_, err := f.auth.Authenticate(context.Background(), creds)
	// Unknown client collapses into the generic error to prevent enumeration
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_NoCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Authenticate(context.Background(), authDomain.Credentials{SourceAddress: "10.0.0.1"})
	assert.ErrorIs(t, err, authDomain.ErrNoCredentials)
}

func TestAuthenticator_DisabledClient(t *testing.T) {
	f := newAuthFixture(t)
	f.repo.clients["c1"].Status = authDomain.ClientStatusDisabled

	// Correct secret still fails for a disabled client
	_, err := f.auth.Authenticate(context.Background(), secretCreds("s3cret"))
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_Lockout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.auth.Authenticate(ctx, secretCreds("wrong"))
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	}

	// Sixth attempt is rejected before validation, even with correct credentials
	_, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	assert.ErrorIs(t, err, authDomain.ErrAccountLocked)

	// After the window passes with no further attempts, a correct attempt succeeds
	f.clock.Advance(15*time.Minute + time.Second)
	_, err = f.auth.Authenticate(ctx, secretCreds("s3cret"))
	assert.NoError(t, err)
}

func TestAuthenticator_SuccessDoesNotResetCounter(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := f.auth.Authenticate(ctx, secretCreds("wrong"))
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
	}

	// A success in between does not clear accumulated failures
	_, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, secretCreds("wrong"))
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)

	_, err = f.auth.Authenticate(ctx, secretCreds("s3cret"))
	assert.ErrorIs(t, err, authDomain.ErrAccountLocked)
}

func TestAuthenticator_LockoutIsPerSourceAndClient(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = f.auth.Authenticate(ctx, secretCreds("wrong"))
	}

	// A different source address is unaffected
	other := secretCreds("s3cret")
	other.SourceAddress = "10.0.0.2"
	_, err := f.auth.Authenticate(ctx, other)
	assert.NoError(t, err)
}

func TestAuthenticator_SessionReuse(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	f.clock.Advance(time.Minute)

	reused, err := f.auth.Authenticate(ctx, authDomain.Credentials{
		SessionID:     minted.SessionID,
		SourceAddress: "10.0.0.1",
	})
	require.NoError(t, err)

	// Same session, no fresh mint
	assert.Equal(t, minted.SessionID, reused.SessionID)
	assert.False(t, reused.FreshSession)
	assert.Empty(t, reused.Token)
}

func TestAuthenticator_SessionExpiry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	f.clock.Advance(time.Hour + time.Second)

	_, err = f.auth.Authenticate(ctx, authDomain.Credentials{
		SessionID:     minted.SessionID,
		SourceAddress: "10.0.0.1",
	})
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_SessionSurvivesClientDisable(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	f.repo.clients["c1"].Status = authDomain.ClientStatusDisabled

	// The open session stays valid until its own expiry
	reused, err := f.auth.Authenticate(ctx, authDomain.Credentials{
		SessionID:     minted.SessionID,
		SourceAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", reused.ClientID)

	// But new authentications for the disabled client fail
	_, err = f.auth.Authenticate(ctx, secretCreds("s3cret"))
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_BearerToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	token, err := f.signer.Sign("c1", f.clock.Now().Add(time.Hour))
	require.NoError(t, err)

	authCtx, err := f.auth.Authenticate(ctx, authDomain.Credentials{
		BearerToken:   token,
		SourceAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", authCtx.ClientID)
	assert.True(t, authCtx.FreshSession)
}

func TestAuthenticator_BearerToken_Invalid(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Authenticate(context.Background(), authDomain.Credentials{
		BearerToken:   "garbage",
		SourceAddress: "10.0.0.1",
	})
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_SessionPrecedesSecret(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	// When both a session id and a (wrong) secret are supplied, the session
	// wins: only one mode is attempted.
	creds := secretCreds("wrong")
	creds.SessionID = minted.SessionID
	reused, err := f.auth.Authenticate(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, minted.SessionID, reused.SessionID)
}

func TestAuthenticator_Invalidate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	f.auth.Invalidate(minted.SessionID)

	_, err = f.auth.Authenticate(ctx, authDomain.Credentials{
		SessionID:     minted.SessionID,
		SourceAddress: "10.0.0.1",
	})
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_SweepExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	minted, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	f.auth.SweepExpiredSessions(ctx)

	_, err = f.auth.Authenticate(ctx, authDomain.Credentials{
		SessionID:     minted.SessionID,
		SourceAddress: "10.0.0.1",
	})
	assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
}

func TestAuthenticator_PruneFailureCounters(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = f.auth.Authenticate(ctx, secretCreds("wrong"))
	}

	f.clock.Advance(16 * time.Minute)
	f.auth.PruneFailureCounters(ctx)

	_, err := f.auth.Authenticate(ctx, secretCreds("s3cret"))
	assert.NoError(t, err)
}
