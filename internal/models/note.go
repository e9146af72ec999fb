// Package models defines the domain types for Raido.
package models

import (
	"strings"
	"time"
)

// DocKind classifies a vault file for reference resolution and rewriting.
type DocKind string

const (
	// KindMarkdown is a plain-text Markdown note; references are rewritten
	// by splicing byte spans.
	KindMarkdown DocKind = "markdown"
	// KindCanvas is a JSON canvas note; references are rewritten by applying
	// an old-path to new-path mapping over its file nodes.
	KindCanvas DocKind = "canvas"
	// KindAttachment is any vault file that is not a note.
	KindAttachment DocKind = "attachment"
)

// KindOf returns the document kind for a vault path based on its extension.
func KindOf(path string) DocKind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".md"):
		return KindMarkdown
	case strings.HasSuffix(lower, ".canvas"):
		return KindCanvas
	default:
		return KindAttachment
	}
}

// IsNote reports whether the path names a note rather than an attachment.
func IsNote(path string) bool {
	return KindOf(path) != KindAttachment
}

// Reference is one occurrence of a link to another vault file inside a note.
// For Markdown notes Start/End delimit the raw link in the note's content;
// for canvas notes NodeID identifies the file node carrying the link.
type Reference struct {
	Raw    string // full link text as it appears, e.g. "![[img.png]]"
	Target string // link destination as written, before resolution
	Start  int    // byte offset of Raw in the note content (markdown only)
	End    int    // byte offset just past Raw (markdown only)
	NodeID string // canvas file-node id (canvas only)
	Embed  bool   // true for ![[...]] and ![](...) forms
}

// MoveResult pairs the old and new path of one relocated attachment.
// NewPath stays mutable until the move is finalized.
type MoveResult struct {
	OldPath string
	NewPath string
}

// NoOp reports whether the computed destination equals the source, in which
// case no filesystem or link mutation may occur.
func (m MoveResult) NoOp() bool {
	return m.OldPath == m.NewPath
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents a directed edge from a note to a referenced vault file.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"` // "inline" or "canvas"
}
