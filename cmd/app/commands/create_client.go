package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/gatekeeper/internal/app"
	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/config"
)

// RunCreateClient registers a new client in the directory and prints the
// generated secret. The secret is shown only once.
func RunCreateClient(ctx context.Context, id, description, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize client use case: %w", err)
	}

	return createClient(ctx, clientUseCase, logger, id, description, format, ioTuple)
}

func createClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	id string,
	description string,
	format string,
	ioTuple IOTuple,
) error {
	logger.Info("creating new client", slog.String("client_id", id))

	input := &authDomain.CreateClientInput{
		ID:          id,
		Description: description,
	}

	output, err := clientUseCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{
			"client_id": output.ID,
			"secret":    output.PlainSecret,
		}, ioTuple.Writer)
	} else {
		writeSecretText("Client created successfully!", output, ioTuple.Writer)
	}

	logger.Info("client created successfully", slog.String("client_id", output.ID))
	return nil
}

// writeSecretText prints a client id and its freshly generated secret in
// human-readable form.
func writeSecretText(headline string, output *authDomain.CreateClientOutput, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "\n%s\n", headline)
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.ID)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}
