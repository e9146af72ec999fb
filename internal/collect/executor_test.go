package collect

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func attMeta(path string) models.FileMetadata {
	return models.FileMetadata{Path: path, Checksum: "x", Size: 1, UpdatedAt: time.Now()}
}

func TestUniqueDestination(t *testing.T) {
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	_ = store.Write("attachments/img.png", []byte("occupant"))
	_ = store.Write("attachments/img-1.png", []byte("occupant"))
	e := NewExecutor(store, db, discardLogger(), false)

	mv := models.MoveResult{OldPath: "img.png", NewPath: "attachments/img.png"}
	e.UniqueDestination(&mv)
	if mv.NewPath != "attachments/img-2.png" {
		t.Errorf("NewPath = %q, want attachments/img-2.png", mv.NewPath)
	}

	// Free destination is left alone.
	mv = models.MoveResult{OldPath: "img.png", NewPath: "media/img.png"}
	e.UniqueDestination(&mv)
	if mv.NewPath != "media/img.png" {
		t.Errorf("NewPath = %q", mv.NewPath)
	}

	// The attachment's own current path is not a collision.
	mv = models.MoveResult{OldPath: "attachments/img.png", NewPath: "attachments/img.png"}
	e.UniqueDestination(&mv)
	if !mv.NoOp() {
		t.Errorf("NewPath = %q, want unchanged", mv.NewPath)
	}
}

func TestApplyMove(t *testing.T) {
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	_ = store.Write("sub/img.png", []byte("pixels"))
	_ = db.UpsertFile(attMeta("sub/img.png"), models.KindAttachment)
	e := NewExecutor(store, db, discardLogger(), false)

	mv := models.MoveResult{OldPath: "sub/img.png", NewPath: "media/img.png"}
	if err := e.Apply(ModeMove, mv); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if store.Exists("sub/img.png") {
		t.Error("source still present after move")
	}
	got, err := store.Read("media/img.png")
	if err != nil || string(got) != "pixels" {
		t.Errorf("dest content = %q, err %v", got, err)
	}
	if !db.PathExists("media/img.png") || db.PathExists("sub/img.png") {
		t.Error("index not updated after move")
	}
}

func TestApplyCopy(t *testing.T) {
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	_ = store.Write("img.png", []byte("pixels"))
	_ = db.UpsertFile(attMeta("img.png"), models.KindAttachment)
	e := NewExecutor(store, db, discardLogger(), false)

	mv := models.MoveResult{OldPath: "img.png", NewPath: "media/img.png"}
	if err := e.Apply(ModeCopy, mv); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !store.Exists("img.png") || !store.Exists("media/img.png") {
		t.Error("copy must keep both files")
	}
	if !db.PathExists("img.png") || !db.PathExists("media/img.png") {
		t.Error("index must track both files after copy")
	}
}

func TestApplyRejectsNoOp(t *testing.T) {
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	e := NewExecutor(store, db, discardLogger(), false)

	mv := models.MoveResult{OldPath: "img.png", NewPath: "img.png"}
	if err := e.Apply(ModeMove, mv); err == nil {
		t.Error("no-op relocation must error")
	}
}

func TestApplyDryRun(t *testing.T) {
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	_ = store.Write("img.png", []byte("pixels"))
	e := NewExecutor(store, db, discardLogger(), true)

	mv := models.MoveResult{OldPath: "img.png", NewPath: "media/img.png"}
	if err := e.Apply(ModeMove, mv); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !store.Exists("img.png") || store.Exists("media/img.png") {
		t.Error("dry run must not touch the file system")
	}
}
