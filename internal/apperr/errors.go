// Package apperr defines sentinel errors shared across Raido packages.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
	// ErrAborted is returned once the batch abort flag has been raised;
	// every in-flight and future per-note operation must surface it.
	ErrAborted = errors.New("batch aborted")
	// ErrUnknownMode indicates a conflict-resolution mode outside the
	// supported set. It is fatal for the current note's processing.
	ErrUnknownMode = errors.New("unknown conflict resolution mode")
	// ErrNotAttachment marks a reference that resolved to a note.
	ErrNotAttachment = errors.New("reference target is a note, not an attachment")
)
