package collect

import (
	"fmt"
	"log/slog"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/resolve"
)

// Resolver maps references found in a note to concrete attachment paths.
// Unresolvable references fail softly; note-to-note links are excluded.
type Resolver struct {
	lookup resolve.Lookup
	logger *slog.Logger
}

// NewResolver creates a resolver over the given file lookup.
func NewResolver(lookup resolve.Lookup, logger *slog.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: logger}
}

// Attachment resolves one reference from the note at notePath to an
// attachment path. It returns apperr.ErrNotFound when the target cannot be
// mapped to a file, and apperr.ErrNotAttachment when the target is itself a
// note; both are skip conditions for the caller, logged here at warn level.
func (r *Resolver) Attachment(notePath string, ref models.Reference) (string, error) {
	target, ok := resolve.Target(r.lookup, notePath, ref.Target)
	if !ok {
		r.logger.Warn("collect: unresolvable reference",
			slog.String("note", notePath),
			slog.String("target", ref.Target))
		return "", fmt.Errorf("collect: resolve %q: %w", ref.Target, apperr.ErrNotFound)
	}
	if models.IsNote(target) {
		r.logger.Warn("collect: reference is a note, skipping",
			slog.String("note", notePath),
			slog.String("target", target))
		return "", fmt.Errorf("collect: %q: %w", target, apperr.ErrNotAttachment)
	}
	return target, nil
}
