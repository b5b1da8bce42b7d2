// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/neoskop/hostit/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "hostit",
		Usage:   "Simple REST file hosting",
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
				Name:  "create-token",
				Usage: "Issue a signed capability token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "put",
						Usage: "File ID the token may overwrite",
					},
					&cli.StringFlag{
						Name:  "del",
						Usage: "File ID the token may delete",
					},
					&cli.BoolFlag{
						Name:  "adm",
						Usage: "Grant the administrative scope (all writes allowed)",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime (defaults to TOKEN_TTL_MINUTES)",
					},
					&cli.StringFlag{
						Name:  "issuer",
						Usage: "Issuer claim override (defaults to TOKEN_ISSUER)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateToken(
						cmd.String("put"),
						cmd.String("del"),
						cmd.Bool("adm"),
						cmd.Duration("ttl"),
						cmd.String("issuer"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
