package collect

import (
	"context"
	"fmt"

	"github.com/starford/raido/internal/apperr"
)

// BacklinkSource answers "which notes reference this file" queries.
// Satisfied by the SQLite index.
type BacklinkSource interface {
	Backlinks(target string) ([]string, error)
}

// Prompter is the interactive surface for conflict resolution and batch
// confirmation. The CLI implementation reads stdin; tests and the MCP
// server supply non-interactive implementations.
type Prompter interface {
	// ResolveConflict asks which mode to apply for an attachment shared by
	// the given notes. remember requests caching the answer for the rest
	// of the batch. The returned mode must not be ModePrompt.
	ResolveConflict(attachment string, referrers []string) (mode Mode, remember bool, err error)
	// Confirm asks a yes/no question before a destructive batch run.
	Confirm(question string) (bool, error)
}

// DetectConflict returns the sorted referrer list for an attachment and
// whether it is shared. Zero or one referencing note means no conflict.
func DetectConflict(src BacklinkSource, attachment string) (referrers []string, shared bool, err error) {
	refs, err := src.Backlinks(attachment)
	if err != nil {
		return nil, false, fmt.Errorf("collect: backlinks for %s: %w", attachment, err)
	}
	return refs, len(refs) > 1, nil
}

// resolveMode runs the conflict-resolution state machine for one shared
// attachment. A remembered mode from an earlier prompt short-circuits the
// prompt. The loop is bounded to one re-entry: a prompt answer can never be
// ModePrompt again, so the second pass always terminates.
func resolveMode(ctx context.Context, cc *ConflictContext, p Prompter, mode Mode, attachment string, referrers []string) (Mode, error) {
	if m, ok := cc.Remembered(); ok {
		mode = m
	}

	for attempt := 0; attempt < 2; attempt++ {
		switch mode {
		case ModeCancel, ModeCopy, ModeMove, ModeSkip:
			return mode, nil

		case ModePrompt:
			if err := cc.Err(ctx); err != nil {
				return "", err
			}
			answer, remember, err := p.ResolveConflict(attachment, referrers)
			if err != nil {
				return "", fmt.Errorf("collect: conflict prompt: %w", err)
			}
			if answer == ModePrompt {
				return "", fmt.Errorf("collect: prompt answered with prompt: %w", apperr.ErrUnknownMode)
			}
			if remember {
				cc.Remember(answer)
			}
			mode = answer

		default:
			return "", fmt.Errorf("collect: mode %q: %w", mode, apperr.ErrUnknownMode)
		}
	}
	// Unreachable by construction.
	return "", fmt.Errorf("collect: conflict resolution did not terminate: %w", apperr.ErrUnknownMode)
}
