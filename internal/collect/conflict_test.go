package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

// stubPrompter answers every conflict with a fixed mode and counts calls.
type stubPrompter struct {
	answer   Mode
	remember bool
	confirm  bool
	calls    int
}

func (p *stubPrompter) ResolveConflict(string, []string) (Mode, bool, error) {
	p.calls++
	return p.answer, p.remember, nil
}

func (p *stubPrompter) Confirm(string) (bool, error) {
	return p.confirm, nil
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"cancel", "copy", "move", "prompt", "skip", " Move ", "COPY"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("banana"); !errors.Is(err, apperr.ErrUnknownMode) {
		t.Errorf("ParseMode(banana) = %v, want ErrUnknownMode", err)
	}
}

func TestResolveMode_DirectModes(t *testing.T) {
	for _, m := range []Mode{ModeCancel, ModeCopy, ModeMove, ModeSkip} {
		p := &stubPrompter{}
		got, err := resolveMode(context.Background(), NewConflictContext(), p, m, "img.png", []string{"a.md", "b.md"})
		if err != nil {
			t.Fatalf("resolveMode(%s): %v", m, err)
		}
		if got != m {
			t.Errorf("resolveMode(%s) = %s", m, got)
		}
		if p.calls != 0 {
			t.Errorf("mode %s reached the prompt", m)
		}
	}
}

func TestResolveMode_PromptAnswer(t *testing.T) {
	cc := NewConflictContext()
	p := &stubPrompter{answer: ModeMove}
	got, err := resolveMode(context.Background(), cc, p, ModePrompt, "img.png", []string{"a.md", "b.md"})
	if err != nil {
		t.Fatalf("resolveMode: %v", err)
	}
	if got != ModeMove || p.calls != 1 {
		t.Errorf("got %s, calls %d", got, p.calls)
	}
	if _, ok := cc.Remembered(); ok {
		t.Error("answer cached without remember")
	}
}

func TestResolveMode_RememberedAnswerSkipsPrompt(t *testing.T) {
	cc := NewConflictContext()
	p := &stubPrompter{answer: ModeCopy, remember: true}

	got, err := resolveMode(context.Background(), cc, p, ModePrompt, "one.png", []string{"a.md", "b.md"})
	if err != nil || got != ModeCopy {
		t.Fatalf("first conflict: got %s, err %v", got, err)
	}
	got, err = resolveMode(context.Background(), cc, p, ModePrompt, "two.png", []string{"c.md", "d.md"})
	if err != nil || got != ModeCopy {
		t.Fatalf("second conflict: got %s, err %v", got, err)
	}
	if p.calls != 1 {
		t.Errorf("prompted %d times, want 1", p.calls)
	}
}

func TestResolveMode_PromptAnsweredWithPrompt(t *testing.T) {
	p := &stubPrompter{answer: ModePrompt}
	_, err := resolveMode(context.Background(), NewConflictContext(), p, ModePrompt, "img.png", nil)
	if !errors.Is(err, apperr.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestResolveMode_UnknownMode(t *testing.T) {
	_, err := resolveMode(context.Background(), NewConflictContext(), &stubPrompter{}, Mode("banana"), "img.png", nil)
	if !errors.Is(err, apperr.ErrUnknownMode) {
		t.Errorf("err = %v, want ErrUnknownMode", err)
	}
}

func TestResolveMode_AbortedBatch(t *testing.T) {
	cc := NewConflictContext()
	cc.Abort()
	_, err := resolveMode(context.Background(), cc, &stubPrompter{answer: ModeMove}, ModePrompt, "img.png", nil)
	if !errors.Is(err, apperr.ErrAborted) {
		t.Errorf("err = %v, want ErrAborted", err)
	}
}

func TestResolveMode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := resolveMode(ctx, NewConflictContext(), &stubPrompter{answer: ModeMove}, ModePrompt, "img.png", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDetectConflict(t *testing.T) {
	src := backlinkMap{
		"shared.png": {"a.md", "b.md"},
		"solo.png":   {"a.md"},
	}
	refs, shared, err := DetectConflict(src, "shared.png")
	if err != nil || !shared || len(refs) != 2 {
		t.Errorf("shared.png: refs=%v shared=%v err=%v", refs, shared, err)
	}
	_, shared, _ = DetectConflict(src, "solo.png")
	if shared {
		t.Error("single referrer flagged as shared")
	}
	_, shared, _ = DetectConflict(src, "orphan.png")
	if shared {
		t.Error("orphan flagged as shared")
	}
}

type backlinkMap map[string][]string

func (m backlinkMap) Backlinks(target string) ([]string, error) {
	return m[target], nil
}

func TestConflictContext_RememberRefusesPrompt(t *testing.T) {
	cc := NewConflictContext()
	cc.Remember(ModePrompt)
	if _, ok := cc.Remembered(); ok {
		t.Error("prompt mode must not be cached")
	}
	cc.Remember(ModeSkip)
	if m, ok := cc.Remembered(); !ok || m != ModeSkip {
		t.Errorf("remembered = %q, %v", m, ok)
	}
}

func TestConflictContext_Err(t *testing.T) {
	cc := NewConflictContext()
	if err := cc.Err(context.Background()); err != nil {
		t.Errorf("fresh context: %v", err)
	}

	cc.Abort()
	if err := cc.Err(context.Background()); !errors.Is(err, apperr.ErrAborted) {
		t.Errorf("after Abort: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cc.Err(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled host context: %v", err)
	}
}
