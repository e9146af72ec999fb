// Package resolve maps raw link targets to concrete vault paths. The same
// procedure serves references from Markdown text and canvas file nodes.
package resolve

import (
	"path"
	"sort"
	"strings"
)

// Lookup answers path and basename queries against the vault's file set.
// Both the SQLite index and an in-memory snapshot implement it.
type Lookup interface {
	// PathExists reports whether a file exists at the exact vault path.
	PathExists(p string) bool
	// FindByName returns the vault paths of all files whose base name
	// (including extension) equals name.
	FindByName(name string) []string
}

// Target resolves a raw link target relative to the note at notePath.
// Resolution order: note-relative path, vault-root-relative path, then a
// unique basename match. The boolean is false when the target cannot be
// resolved to exactly one existing file.
func Target(l Lookup, notePath, target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	target = path.Clean(strings.TrimPrefix(target, "/"))
	if target == "." || target == ".." {
		return "", false
	}

	// Note-relative.
	rel := path.Clean(path.Join(path.Dir(notePath), target))
	if !strings.HasPrefix(rel, "../") && l.PathExists(rel) {
		return rel, true
	}

	// Vault-root-relative.
	if !strings.HasPrefix(target, "../") && l.PathExists(target) {
		return target, true
	}

	// Unique basename ("shortest path" style links carry no directory).
	base := path.Base(target)
	candidates := l.FindByName(base)
	if len(candidates) == 0 && !strings.Contains(base, ".") {
		// A note link may omit its extension.
		candidates = l.FindByName(base + ".md")
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

// SetLookup is an in-memory Lookup over a snapshot of vault paths, used
// during a full index sync before the database is up to date.
type SetLookup map[string]struct{}

// PathExists implements Lookup.
func (s SetLookup) PathExists(p string) bool {
	_, ok := s[p]
	return ok
}

// FindByName implements Lookup. Results are sorted for determinism.
func (s SetLookup) FindByName(name string) []string {
	var out []string
	for p := range s {
		if path.Base(p) == name {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
