package index

import (
	"log/slog"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/resolve"
	"github.com/starford/raido/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed files are upserted; notes additionally get their outgoing
//     links re-resolved against the current file set
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	// Snapshot of every on-disk path; link targets resolve against this
	// rather than the half-updated database.
	disk := make(resolve.SetLookup, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			continue
		}
		kind := models.KindOf(m.Path)
		if kind == models.KindAttachment {
			if err := db.UpsertFile(m, kind); err != nil {
				logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			}
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexNote(db, disk, m, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexNote parses a note, resolves its references against lookup, and
// upserts the note row plus its resolved outgoing links.
func IndexNote(db *DB, lookup resolve.Lookup, m models.FileMetadata, data []byte) error {
	kind := models.KindOf(m.Path)

	var refs []models.Reference
	var linkType string
	switch kind {
	case models.KindCanvas:
		r, err := parser.ParseCanvas(data)
		if err != nil {
			return err
		}
		refs = r
		linkType = "canvas"
	default:
		res, err := parser.Parse(data)
		if err != nil {
			return err
		}
		refs = res.References
		linkType = "inline"
	}

	seen := make(map[string]struct{}, len(refs))
	var links []models.Link
	for _, ref := range refs {
		target, ok := resolve.Target(lookup, m.Path, ref.Target)
		if !ok {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, models.Link{Source: m.Path, Target: target, Type: linkType})
	}

	return db.UpsertNote(m, kind, links)
}
