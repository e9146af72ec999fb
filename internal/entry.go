// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/collect"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/storage"
)

// Action kinds.
const (
	ActionCollectNote   = "collect-note"
	ActionCollectFolder = "collect-folder"
	ActionCollectVault  = "collect-vault"
	ActionSync          = "sync"
	ActionWatch         = "watch"
	ActionMCP           = "mcp"
)

// Action describes what one invocation should do.
type Action struct {
	Kind        string
	Target      string // note path or folder, depending on Kind
	Mode        string // conflict-mode override, empty for config default
	OldNoteName string // note's previous base name, for replace-notename
	Yes         bool   // skip the destructive-run confirmation
	DryRun      bool   // log planned operations, mutate nothing
}

// Run starts the application with the given options.
func Run(ctx context.Context, action Action, opts ...Option) error {
	app := &application{out: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("action", action.Kind),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Bring the index up to date so backlink counts are trustworthy.
	if err := index.Sync(db, store, logger); err != nil {
		return fmt.Errorf("initial sync: %w", err)
	}

	// Process-wide abort: host shutdown stops any in-flight batch.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch action.Kind {
	case ActionSync:
		logger.Info("Index synchronized")
		return nil

	case ActionWatch:
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return index.Watch(gCtx, db, store, store.Root(), logger, nil)
		})
		return g.Wait()

	case ActionMCP:
		return mcpserver.New(store, db, collectConfig(cfg, action), logger).ServeStdio()

	case ActionCollectNote, ActionCollectFolder, ActionCollectVault:
		prompter := app.prompter
		if prompter == nil {
			prompter = collect.NewTerminalPrompter(os.Stdin, app.out)
		}
		runner := collect.NewRunner(store, db, collectConfig(cfg, action), prompter, logger)

		var rep *collect.Report
		switch action.Kind {
		case ActionCollectNote:
			rep, err = runner.CollectNote(ctx, action.Target)
		case ActionCollectFolder:
			rep, err = runner.CollectFolder(ctx, action.Target, action.Yes)
		default:
			rep, err = runner.CollectVault(ctx, action.Yes)
		}
		if err != nil {
			return err
		}
		logger.Info("Collection finished",
			slog.Int("notes", rep.Notes),
			slog.Int("moved", rep.Moved),
			slog.Int("copied", rep.Copied),
			slog.Int("skipped", rep.Skipped),
			slog.Int("failed", rep.Failed),
			slog.Bool("aborted", rep.Aborted))
		return nil

	default:
		return fmt.Errorf("unknown action: %s", action.Kind)
	}
}

// collectConfig maps file configuration plus per-invocation overrides onto
// the engine's settings.
func collectConfig(cfg *Config, action Action) collect.Config {
	mode := collect.Mode(cfg.Collect.ConflictMode)
	if action.Mode != "" {
		if m, err := collect.ParseMode(action.Mode); err == nil {
			mode = m
		}
	}
	return collect.Config{
		AttachmentFolder: cfg.Collect.AttachmentFolder,
		RenamePolicy:     cfg.Collect.RenamePolicy,
		NameTemplate:     cfg.Collect.NameTemplate,
		HashLength:       cfg.Collect.HashLength,
		OldNoteName:      action.OldNoteName,
		ConflictMode:     mode,
		Exclude:          cfg.Collect.Exclude,
		IgnoreKey:        cfg.Collect.IgnoreKey,
		ContinueOnError:  cfg.Collect.ContinueOnError,
		DryRun:           action.DryRun,
	}
}
