package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/gatekeeper/internal/app"
	authUseCase "github.com/allisson/gatekeeper/internal/auth/usecase"
	"github.com/allisson/gatekeeper/internal/config"
)

// RunListClients prints the registered clients with pagination.
func RunListClients(ctx context.Context, offset, limit int, format string, ioTuple IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	clientUseCase, err := container.ClientUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize client use case: %w", err)
	}

	return listClients(ctx, clientUseCase, logger, offset, limit, format, ioTuple)
}

func listClients(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	offset int,
	limit int,
	format string,
	ioTuple IOTuple,
) error {
	clients, err := clientUseCase.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	if format == "json" {
		type clientRow struct {
			ID          string `json:"client_id"`
			Description string `json:"description"`
			Status      string `json:"status"`
		}
		rows := make([]clientRow, 0, len(clients))
		for _, client := range clients {
			rows = append(rows, clientRow{
				ID:          client.ID,
				Description: client.Description,
				Status:      string(client.Status),
			})
		}
		outputJSON(rows, ioTuple.Writer)
	} else {
		if len(clients) == 0 {
			_, _ = fmt.Fprintln(ioTuple.Writer, "No clients found")
		}
		for _, client := range clients {
			_, _ = fmt.Fprintf(
				ioTuple.Writer,
				"%s\t%s\t%s\n",
				client.ID,
				client.Status,
				client.Description,
			)
		}
	}

	logger.Info("clients listed", slog.Int("count", len(clients)))
	return nil
}
