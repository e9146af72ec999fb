package index

import (
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func meta(path, cs string) models.FileMetadata {
	return models.FileMetadata{Path: path, Checksum: cs, Size: 1, UpdatedAt: time.Now()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&count); err != nil {
		t.Fatalf("files table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertNoteAndBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(meta("img.png", "i1"), models.KindAttachment)
	_ = db.UpsertNote(meta("b.md", "2"), models.KindMarkdown,
		[]models.Link{{Source: "b.md", Target: "img.png", Type: "inline"}})
	_ = db.UpsertNote(meta("a.md", "1"), models.KindMarkdown,
		[]models.Link{{Source: "a.md", Target: "img.png", Type: "inline"}})

	bl, err := db.Backlinks("img.png")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
	// Sorted lexicographically for deterministic prompts.
	if bl[0] != "a.md" || bl[1] != "b.md" {
		t.Errorf("backlinks = %v, want [a.md b.md]", bl)
	}
}

func TestUpsertNoteReplacesLinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(meta("n.md", "1"), models.KindMarkdown,
		[]models.Link{{Source: "n.md", Target: "x.png", Type: "inline"}})
	_ = db.UpsertNote(meta("n.md", "2"), models.KindMarkdown,
		[]models.Link{{Source: "n.md", Target: "y.png", Type: "inline"}})

	if bl, _ := db.Backlinks("x.png"); len(bl) != 0 {
		t.Errorf("stale link to x.png survived: %v", bl)
	}
	if bl, _ := db.Backlinks("y.png"); len(bl) != 1 {
		t.Errorf("missing link to y.png")
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(meta("del.md", "x"), models.KindMarkdown,
		[]models.Link{{Source: "del.md", Target: "t.png", Type: "inline"}})

	if err := db.DeleteFile("del.md"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if db.PathExists("del.md") {
		t.Error("deleted file still indexed")
	}
	if bl, _ := db.Backlinks("t.png"); len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestFindByName(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(meta("one/dup.png", "1"), models.KindAttachment)
	_ = db.UpsertFile(meta("two/dup.png", "2"), models.KindAttachment)
	_ = db.UpsertFile(meta("assets/solo.pdf", "3"), models.KindAttachment)

	if got := db.FindByName("solo.pdf"); len(got) != 1 || got[0] != "assets/solo.pdf" {
		t.Errorf("FindByName(solo.pdf) = %v", got)
	}
	got := db.FindByName("dup.png")
	if len(got) != 2 || got[0] != "one/dup.png" || got[1] != "two/dup.png" {
		t.Errorf("FindByName(dup.png) = %v", got)
	}
	if got := db.FindByName("nope.png"); len(got) != 0 {
		t.Errorf("FindByName(nope.png) = %v", got)
	}
}

func TestRecordMoveAndRetargetLink(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(meta("img.png", "i"), models.KindAttachment)
	_ = db.UpsertNote(meta("a.md", "1"), models.KindMarkdown,
		[]models.Link{{Source: "a.md", Target: "img.png", Type: "inline"}})
	_ = db.UpsertNote(meta("b.md", "2"), models.KindMarkdown,
		[]models.Link{{Source: "b.md", Target: "img.png", Type: "inline"}})

	if err := db.RecordMove("img.png", "a/attachments/img.png"); err != nil {
		t.Fatalf("RecordMove: %v", err)
	}
	if db.PathExists("img.png") {
		t.Error("old path still indexed after move")
	}
	if !db.PathExists("a/attachments/img.png") {
		t.Error("new path not indexed after move")
	}

	// Only a.md's link is retargeted; b.md's stays on the old (dangling) path.
	if err := db.RetargetLink("a.md", "img.png", "a/attachments/img.png"); err != nil {
		t.Fatalf("RetargetLink: %v", err)
	}
	bl, _ := db.Backlinks("a/attachments/img.png")
	if len(bl) != 1 || bl[0] != "a.md" {
		t.Errorf("backlinks(new) = %v", bl)
	}
	bl, _ = db.Backlinks("img.png")
	if len(bl) != 1 || bl[0] != "b.md" {
		t.Errorf("backlinks(old) = %v", bl)
	}
}

func TestListAttachments(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile(meta("z.png", "1"), models.KindAttachment)
	_ = db.UpsertFile(meta("a.png", "2"), models.KindAttachment)
	_ = db.UpsertNote(meta("n.md", "3"), models.KindMarkdown, nil)

	atts, err := db.ListAttachments()
	if err != nil {
		t.Fatalf("ListAttachments: %v", err)
	}
	if len(atts) != 2 || atts[0].Path != "a.png" || atts[1].Path != "z.png" {
		t.Errorf("attachments = %+v", atts)
	}
}
