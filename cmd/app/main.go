package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/collect"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func run(cmd *cli.Command, action internal.Action) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if action.Mode != "" {
		if _, err := collect.ParseMode(action.Mode); err != nil {
			return err
		}
	}

	if err := internal.Run(context.Background(), action, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func collectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Conflict mode for shared attachments (move, copy, skip, prompt, cancel)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Log planned operations without touching any file",
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Collect the attachments referenced by Markdown and canvas notes into per-note attachment folders, rewriting links",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "collect",
				Usage: "Relocate referenced attachments and rewrite links",
				Commands: []*cli.Command{
					{
						Name:      "note",
						Usage:     "Collect attachments for a single note",
						ArgsUsage: "<note path>",
						Flags: append(collectFlags(), &cli.StringFlag{
							Name:  "old-note-name",
							Usage: "The note's previous base name, used by the replace-notename policy after a manual rename",
						}),
						Action: func(_ context.Context, cmd *cli.Command) error {
							note := cmd.Args().First()
							if note == "" {
								return fmt.Errorf("note path is required")
							}
							return run(cmd, internal.Action{
								Kind:        internal.ActionCollectNote,
								Target:      note,
								Mode:        cmd.String("mode"),
								OldNoteName: cmd.String("old-note-name"),
								DryRun:      cmd.Bool("dry-run"),
							})
						},
					},
					{
						Name:      "folder",
						Usage:     "Collect attachments for every note under a folder (asks for confirmation)",
						ArgsUsage: "<folder>",
						Flags: append(collectFlags(), &cli.BoolFlag{
							Name:    "yes",
							Aliases: []string{"y"},
							Usage:   "Skip the confirmation prompt",
						}),
						Action: func(_ context.Context, cmd *cli.Command) error {
							folder := cmd.Args().First()
							if folder == "" {
								return fmt.Errorf("folder is required (use 'collect vault' for the whole vault)")
							}
							return run(cmd, internal.Action{
								Kind:   internal.ActionCollectFolder,
								Target: folder,
								Mode:   cmd.String("mode"),
								Yes:    cmd.Bool("yes"),
								DryRun: cmd.Bool("dry-run"),
							})
						},
					},
					{
						Name:  "vault",
						Usage: "Collect attachments for every note in the vault (asks for confirmation)",
						Flags: append(collectFlags(), &cli.BoolFlag{
							Name:    "yes",
							Aliases: []string{"y"},
							Usage:   "Skip the confirmation prompt",
						}),
						Action: func(_ context.Context, cmd *cli.Command) error {
							return run(cmd, internal.Action{
								Kind:   internal.ActionCollectVault,
								Mode:   cmd.String("mode"),
								Yes:    cmd.Bool("yes"),
								DryRun: cmd.Bool("dry-run"),
							})
						},
					},
				},
			},
			{
				Name:  "sync",
				Usage: "Rebuild the vault file and backlink index",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return run(cmd, internal.Action{Kind: internal.ActionSync})
				},
			},
			{
				Name:  "watch",
				Usage: "Keep the index up to date while the vault is edited",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return run(cmd, internal.Action{Kind: internal.ActionWatch})
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve the collection tools over MCP stdio",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return run(cmd, internal.Action{Kind: internal.ActionMCP})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
