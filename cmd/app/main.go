// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/gatekeeper/cmd/app/commands"
)

var version = "1.0.0"

func main() {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
	offsetFlag := &cli.IntFlag{
		Name:  "offset",
		Value: 0,
		Usage: "Pagination offset",
	}
	limitFlag := &cli.IntFlag{
		Name:  "limit",
		Value: 50,
		Usage: "Pagination limit",
	}

	cmd := &cli.Command{
		Name:    "gatekeeper",
		Usage:   "Request gateway security layer",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-client",
				Usage: "Register a new client and print its generated secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Unique client identifier (e.g., billing-service)",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Human-readable description",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateClient(
						ctx,
						cmd.String("id"),
						cmd.String("description"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "update-client",
				Usage: "Update a client's description and status",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Human-readable description",
					},
					&cli.StringFlag{
						Name:  "status",
						Value: "active",
						Usage: "Client status: 'active' or 'disabled'",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunUpdateClient(
						ctx,
						cmd.String("id"),
						cmd.String("description"),
						cmd.String("status"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "rotate-client-secret",
				Usage: "Replace a client's credential and print the new secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Client identifier",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateClientSecret(
						ctx,
						cmd.String("id"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "list-clients",
				Usage: "List registered clients",
				Flags: []cli.Flag{offsetFlag, limitFlag, formatFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListClients(
						ctx,
						cmd.Int("offset"),
						cmd.Int("limit"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "set-rule",
				Usage: "Add or replace an access rule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:     "pattern",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Resource pattern (e.g., 'store/collection/{name}' or 'invoices/*')",
					},
					&cli.StringFlag{
						Name:     "actions",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Comma-separated actions (e.g., 'read,write' or '*')",
					},
					&cli.StringFlag{
						Name:  "conditions",
						Usage: "JSON object of field-equality conditions",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSetRule(
						ctx,
						cmd.String("client-id"),
						cmd.String("pattern"),
						cmd.String("actions"),
						cmd.String("conditions"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "delete-rule",
				Usage: "Delete an access rule",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:     "pattern",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Resource pattern of the rule to delete",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDeleteRule(
						ctx,
						cmd.String("client-id"),
						cmd.String("pattern"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "list-rules",
				Usage: "List access rules",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client-id",
						Aliases: []string{"c"},
						Usage:   "List only this client's rules",
					},
					offsetFlag,
					limitFlag,
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListRules(
						ctx,
						cmd.String("client-id"),
						cmd.Int("offset"),
						cmd.Int("limit"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "set-rate-limit",
				Usage: "Add or replace a rate limit for a (client, operation) pair",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:    "operation",
						Aliases: []string{"o"},
						Value:   "*",
						Usage:   "Operation name, '*' for a client-wide default",
					},
					&cli.IntFlag{
						Name:     "requests-per-minute",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Sustained request rate per minute",
					},
					&cli.IntFlag{
						Name:     "burst",
						Aliases:  []string{"b"},
						Required: true,
						Usage:    "Maximum burst size",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSetRateLimit(
						ctx,
						cmd.String("client-id"),
						cmd.String("operation"),
						cmd.Int("requests-per-minute"),
						cmd.Int("burst"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "delete-rate-limit",
				Usage: "Delete a rate limit",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "client-id",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Client identifier",
					},
					&cli.StringFlag{
						Name:    "operation",
						Aliases: []string{"o"},
						Value:   "*",
						Usage:   "Operation name, '*' for the client-wide default",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDeleteRateLimit(
						ctx,
						cmd.String("client-id"),
						cmd.String("operation"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "list-rate-limits",
				Usage: "List configured rate limits",
				Flags: []cli.Flag{offsetFlag, limitFlag, formatFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListRateLimits(
						ctx,
						cmd.Int("offset"),
						cmd.Int("limit"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "query-audit-logs",
				Usage: "Query audit log entries, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client-id",
						Aliases: []string{"c"},
						Usage:   "Filter by client identifier",
					},
					&cli.StringFlag{
						Name:    "operation",
						Aliases: []string{"o"},
						Usage:   "Filter by operation name",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status: 'success' or 'error'",
					},
					&cli.StringFlag{
						Name:  "since",
						Usage: "Only entries at or after this RFC 3339 timestamp",
					},
					&cli.StringFlag{
						Name:  "until",
						Usage: "Only entries at or before this RFC 3339 timestamp",
					},
					&cli.IntFlag{
						Name:  "offset",
						Value: 0,
						Usage: "Number of matching entries to skip",
					},
					&cli.IntFlag{
						Name:  "limit",
						Value: 100,
						Usage: "Maximum number of entries",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunQueryAuditLogs(
						ctx,
						cmd.String("client-id"),
						cmd.String("operation"),
						cmd.String("status"),
						cmd.String("since"),
						cmd.String("until"),
						cmd.Int("offset"),
						cmd.Int("limit"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "clean-audit-logs",
				Usage: "Delete audit logs older than the configured retention window",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanAuditLogs(ctx, commands.DefaultIO())
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
