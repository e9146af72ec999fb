package collect

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// Executor performs the filesystem-level relocation or duplication of one
// attachment and records the outcome in the index. With dryRun set it only
// logs what would happen.
type Executor struct {
	store  storage.Provider
	db     index.VaultIndex
	logger *slog.Logger
	dryRun bool
}

// NewExecutor creates an executor.
func NewExecutor(store storage.Provider, db index.VaultIndex, logger *slog.Logger, dryRun bool) *Executor {
	return &Executor{store: store, db: db, logger: logger, dryRun: dryRun}
}

// UniqueDestination adjusts mv.NewPath so it never clobbers an existing
// unrelated file, appending a numeric suffix ("img-1.png") on collision.
// The old path itself is never treated as a collision.
func (e *Executor) UniqueDestination(mv *models.MoveResult) {
	candidate := mv.NewPath
	ext := path.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)
	for i := 1; candidate != mv.OldPath && e.store.Exists(candidate); i++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
	}
	mv.NewPath = candidate
}

// Apply executes one finalized move or copy. mode must be ModeMove or
// ModeCopy; no-op pairs must be filtered out by the caller beforehand.
func (e *Executor) Apply(mode Mode, mv models.MoveResult) error {
	if mv.NoOp() {
		return fmt.Errorf("collect: no-op relocation reached executor: %s", mv.OldPath)
	}

	if e.dryRun {
		e.logger.Info("collect: dry-run, would relocate",
			slog.String("mode", string(mode)),
			slog.String("from", mv.OldPath),
			slog.String("to", mv.NewPath))
		return nil
	}

	switch mode {
	case ModeMove:
		if err := e.store.Move(mv.OldPath, mv.NewPath); err != nil {
			return err
		}
		// Best-effort cleanup of now-empty parents, never past the root.
		_ = e.store.PruneEmptyDirs(mv.OldPath)
		if err := e.db.RecordMove(mv.OldPath, mv.NewPath); err != nil {
			return err
		}

	case ModeCopy:
		if err := e.store.Copy(mv.OldPath, mv.NewPath); err != nil {
			return err
		}
		data, err := e.store.Read(mv.NewPath)
		if err != nil {
			return err
		}
		if err := e.db.RecordCopy(models.FileMetadata{
			Path:      mv.NewPath,
			Checksum:  checksum.Sum(data),
			Size:      int64(len(data)),
			UpdatedAt: time.Now(),
		}); err != nil {
			return err
		}

	default:
		return fmt.Errorf("collect: executor cannot apply mode %q", mode)
	}

	e.logger.Info("collect: relocated",
		slog.String("mode", string(mode)),
		slog.String("from", mv.OldPath),
		slog.String("to", mv.NewPath))
	return nil
}
