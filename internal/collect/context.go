// Package collect implements the attachment relocation engine: resolving
// references, naming destinations, resolving shared-attachment conflicts,
// executing moves, and orchestrating batch runs.
package collect

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/starford/raido/internal/apperr"
)

// Mode is a conflict-resolution mode for shared attachments.
type Mode string

const (
	// ModeCancel aborts the entire batch.
	ModeCancel Mode = "cancel"
	// ModeCopy duplicates the attachment; other notes keep the original.
	ModeCopy Mode = "copy"
	// ModeMove relocates the attachment; other notes' references are left
	// dangling (deferred to a separate link-repair pass).
	ModeMove Mode = "move"
	// ModePrompt asks the user interactively for one of the other modes.
	ModePrompt Mode = "prompt"
	// ModeSkip leaves the attachment and its reference untouched.
	ModeSkip Mode = "skip"
)

// ParseMode validates a mode string from config or CLI flags.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeCancel, ModeCopy, ModeMove, ModePrompt, ModeSkip:
		return m, nil
	}
	return "", fmt.Errorf("collect: %q: %w", s, apperr.ErrUnknownMode)
}

// ConflictContext carries batch-scoped conflict state: the abort flag and a
// resolution mode remembered from an earlier prompt. One value spans a
// whole batch run and is discarded afterward.
type ConflictContext struct {
	aborted    atomic.Bool
	remembered Mode
}

// NewConflictContext returns a fresh context for one batch run.
func NewConflictContext() *ConflictContext {
	return &ConflictContext{}
}

// Abort raises the batch-local abort flag. Once set it is observed by every
// in-flight and future per-note operation.
func (c *ConflictContext) Abort() {
	c.aborted.Store(true)
}

// Aborted reports whether the batch has been cancelled.
func (c *ConflictContext) Aborted() bool {
	return c.aborted.Load()
}

// Remember caches a resolution mode chosen at a prompt so later conflicts
// in the same batch reuse it without re-prompting. A prompt answer is never
// ModePrompt, so the cached mode cannot re-enter the prompt path.
func (c *ConflictContext) Remember(m Mode) {
	if m != ModePrompt {
		c.remembered = m
	}
}

// Remembered returns the cached mode, if any.
func (c *ConflictContext) Remembered() (Mode, bool) {
	return c.remembered, c.remembered != ""
}

// Err combines the two abort sources: the process-wide context (host
// shutdown) and the batch-local flag (a Cancel resolution). It is checked
// at loop heads and before every mutating step.
func (c *ConflictContext) Err(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Aborted() {
		return apperr.ErrAborted
	}
	return nil
}
