package usecase

import (
	"context"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
	"github.com/allisson/gatekeeper/internal/clock"
	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

// clientUseCase implements ClientUseCase for managing the client directory.
type clientUseCase struct {
	clientRepo        ClientRepository
	credentialService authService.CredentialService
	clock             clock.Clock
}

// Create registers a new client with a generated secret.
// Returns the client id and plain text secret. The plain secret is only
// returned once and must be securely stored by the caller; the hashed version
// is what the directory persists.
func (c *clientUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	if input.ID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client id must not be empty")
	}

	// Generate a secure random secret
	plainSecret, hashedSecret, err := c.credentialService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	client := &authDomain.Client{
		ID:             input.ID,
		CredentialHash: hashedSecret,
		Description:    input.Description,
		Status:         authDomain.ClientStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Update modifies a client's description and status.
// The client id and credential remain unchanged.
func (c *clientUseCase) Update(
	ctx context.Context,
	clientID string,
	input *authDomain.UpdateClientInput,
) error {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return err
	}

	client.Description = input.Description
	client.Status = input.Status
	client.UpdatedAt = c.clock.Now()

	return c.clientRepo.Update(ctx, client)
}

// Disable marks a client as disabled, preventing authentication while
// preserving the record and its audit history.
func (c *clientUseCase) Disable(ctx context.Context, clientID string) error {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return err
	}

	client.Status = authDomain.ClientStatusDisabled
	client.UpdatedAt = c.clock.Now()

	return c.clientRepo.Update(ctx, client)
}

// RotateSecret replaces the client's credential with a freshly generated one.
// The new plain secret is only returned once.
func (c *clientUseCase) RotateSecret(
	ctx context.Context,
	clientID string,
) (*authDomain.CreateClientOutput, error) {
	client, err := c.clientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	plainSecret, hashedSecret, err := c.credentialService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	client.CredentialHash = hashedSecret
	client.UpdatedAt = c.clock.Now()

	if err := c.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Get retrieves a client by id.
func (c *clientUseCase) Get(ctx context.Context, clientID string) (*authDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

// List retrieves clients ordered by id with pagination support.
func (c *clientUseCase) List(ctx context.Context, offset, limit int) ([]*authDomain.Client, error) {
	return c.clientRepo.List(ctx, offset, limit)
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	clientRepo ClientRepository,
	credentialService authService.CredentialService,
	clk clock.Clock,
) ClientUseCase {
	return &clientUseCase{
		clientRepo:        clientRepo,
		credentialService: credentialService,
		clock:             clk,
	}
}
