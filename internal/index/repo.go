package index

import (
	"fmt"
	"path"

	"github.com/starford/raido/internal/models"
)

// UpsertFile inserts or replaces a file row without touching links.
func (db *DB) UpsertFile(m models.FileMetadata, kind models.DocKind) error {
	_, err := db.conn.Exec(upsertFileSQL,
		m.Path, path.Base(m.Path), string(kind), m.Checksum, m.Size, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}
	return nil
}

const upsertFileSQL = `
	INSERT INTO files (path, name, kind, checksum, size, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET
		name       = excluded.name,
		kind       = excluded.kind,
		checksum   = excluded.checksum,
		size       = excluded.size,
		updated_at = excluded.updated_at
`

// UpsertNote inserts or replaces a note's file row and its outgoing links
// within one transaction. Link targets are resolved vault paths.
func (db *DB) UpsertNote(m models.FileMetadata, kind models.DocKind, links []models.Link) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(upsertFileSQL,
		m.Path, path.Base(m.Path), string(kind), m.Checksum, m.Size, m.UpdatedAt); err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, m.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target, type) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, l := range links {
			if _, err := stmt.Exec(m.Path, l.Target, l.Type); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file row and its outgoing links.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// Backlinks returns the distinct note paths referencing target, sorted
// lexicographically so conflict prompts are deterministic.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT DISTINCT source FROM links WHERE target = ? ORDER BY source`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PathExists implements resolve.Lookup.
func (db *DB) PathExists(p string) bool {
	var one int
	err := db.conn.QueryRow(`SELECT 1 FROM files WHERE path = ?`, p).Scan(&one)
	return err == nil
}

// FindByName implements resolve.Lookup: every file whose base name equals
// name, sorted for deterministic ambiguity handling.
func (db *DB) FindByName(name string) []string {
	rows, err := db.conn.Query(`SELECT path FROM files WHERE name = ? ORDER BY path`, name)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil
		}
		out = append(out, p)
	}
	return out
}

// RecordMove repoints a relocated file's row at its new path. Link rows are
// intentionally left alone: each referencing note's links are retargeted
// only when that note's content is actually rewritten.
func (db *DB) RecordMove(oldPath, newPath string) error {
	_, err := db.conn.Exec(
		`UPDATE files SET path = ?, name = ? WHERE path = ?`,
		newPath, path.Base(newPath), oldPath)
	if err != nil {
		return fmt.Errorf("index: record move: %w", err)
	}
	return nil
}

// RecordCopy inserts a file row for a duplicated attachment.
func (db *DB) RecordCopy(m models.FileMetadata) error {
	return db.UpsertFile(m, models.KindAttachment)
}

// RetargetLink updates one note's link row after its reference was
// rewritten from oldTarget to newTarget.
func (db *DB) RetargetLink(source, oldTarget, newTarget string) error {
	_, err := db.conn.Exec(
		`UPDATE OR IGNORE links SET target = ? WHERE source = ? AND target = ?`,
		newTarget, source, oldTarget)
	if err != nil {
		return fmt.Errorf("index: retarget link: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a file, or empty string if
// the path is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns a path to checksum map for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListAttachments returns every indexed file that is not a note, sorted.
func (db *DB) ListAttachments() ([]models.FileMetadata, error) {
	rows, err := db.conn.Query(
		`SELECT path, checksum, size, updated_at FROM files WHERE kind = ? ORDER BY path`,
		string(models.KindAttachment))
	if err != nil {
		return nil, fmt.Errorf("index: list attachments: %w", err)
	}
	defer rows.Close()

	var out []models.FileMetadata
	for rows.Next() {
		var m models.FileMetadata
		if err := rows.Scan(&m.Path, &m.Checksum, &m.Size, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
