package index

import (
	"log/slog"
	"testing"

	"github.com/starford/raido/internal/storage"
)

func testVault(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestSyncIndexesNotesAndAttachments(t *testing.T) {
	db := testDB(t)
	store := testVault(t)
	logger := slog.Default()

	_ = store.Write("notes/a.md", []byte("Has ![[img.png]] inline.\n"))
	_ = store.Write("notes/img.png", []byte("pixels"))
	_ = store.Write("board.canvas", []byte(`{"nodes":[{"id":"n1","type":"file","file":"notes/img.png"}]}`))

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	for _, p := range []string{"notes/a.md", "notes/img.png", "board.canvas"} {
		if !db.PathExists(p) {
			t.Errorf("%s not indexed", p)
		}
	}

	bl, err := db.Backlinks("notes/img.png")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 || bl[0] != "board.canvas" || bl[1] != "notes/a.md" {
		t.Errorf("backlinks = %v, want [board.canvas notes/a.md]", bl)
	}
}

func TestSyncRemovesStaleEntries(t *testing.T) {
	db := testDB(t)
	store := testVault(t)
	logger := slog.Default()

	_ = store.Write("gone.md", []byte("bye"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !db.PathExists("gone.md") {
		t.Fatal("gone.md not indexed")
	}

	_ = store.Delete("gone.md")
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if db.PathExists("gone.md") {
		t.Error("stale entry survived sync")
	}
}

func TestSyncSkipsUnchanged(t *testing.T) {
	db := testDB(t)
	store := testVault(t)
	logger := slog.Default()

	_ = store.Write("n.md", []byte("See [[pic.png]]\n"))
	_ = store.Write("pic.png", []byte("p"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	// Second sync over an unchanged vault must leave links intact.
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	bl, _ := db.Backlinks("pic.png")
	if len(bl) != 1 {
		t.Errorf("backlinks = %v", bl)
	}
}
