package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/gatekeeper/internal/app"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/config"
)

// RunUpdateClient updates a client's description and status.
func RunUpdateClient(ctx context.Context, id, description, status, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize client use case: %w", err)
	}

	return updateClient(ctx, clientUseCase, logger, id, description, status, format, ioTuple)
}

func updateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	id string,
	description string,
	status string,
	format string,
	ioTuple IOTuple,
) error {
	logger.Info("updating client", slog.String("client_id", id))

	input := &authDomain.UpdateClientInput{
		Description: description,
		Status:      authDomain.ClientStatus(status),
	}

	if err := clientUseCase.Update(ctx, id, input); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"client_id": id,
			"status":    status,
		}, ioTuple.Writer)
	} else {
		_, _ = fmt.Fprintf(ioTuple.Writer, "Client %s updated successfully\n", id)
	}

	logger.Info("client updated successfully", slog.String("client_id", id))
	return nil
}

// RunRotateClientSecret replaces a client's credential and prints the new
// secret. The secret is shown only once.
func RunRotateClientSecret(ctx context.Context, id, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize client use case: %w", err)
	}

	return rotateClientSecret(ctx, clientUseCase, logger, id, format, ioTuple)
}

func rotateClientSecret(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	id string,
	format string,
	ioTuple IOTuple,
) error {
	logger.Info("rotating client secret", slog.String("client_id", id))

	output, err := clientUseCase.RotateSecret(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to rotate client secret: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"client_id": output.ID,
			"secret":    output.PlainSecret,
		}, ioTuple.Writer)
	} else {
		writeSecretText("Client secret rotated successfully!", output, ioTuple.Writer)
	}

	logger.Info("client secret rotated successfully", slog.String("client_id", id))
	return nil
}
