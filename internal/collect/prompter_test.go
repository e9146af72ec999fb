package collect

import (
	"io"
	"strings"
	"testing"
)

func TestTerminalPrompter_ResolveConflict(t *testing.T) {
	cases := []struct {
		input    string
		mode     Mode
		remember bool
	}{
		{"m\n", ModeMove, false},
		{"move\n", ModeMove, false},
		{"c!\n", ModeCopy, true},
		{"s\n", ModeSkip, false},
		{"a\n", ModeCancel, false},
		{"what\nskip!\n", ModeSkip, true},
	}
	for _, c := range cases {
		p := NewTerminalPrompter(strings.NewReader(c.input), io.Discard)
		mode, remember, err := p.ResolveConflict("img.png", []string{"a.md", "b.md"})
		if err != nil {
			t.Fatalf("input %q: %v", c.input, err)
		}
		if mode != c.mode || remember != c.remember {
			t.Errorf("input %q: got %s remember=%v", c.input, mode, remember)
		}
	}
}

func TestTerminalPrompter_Confirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
	}
	for _, c := range cases {
		p := NewTerminalPrompter(strings.NewReader(c.input), io.Discard)
		got, err := p.Confirm("proceed?")
		if err != nil {
			t.Fatalf("input %q: %v", c.input, err)
		}
		if got != c.want {
			t.Errorf("input %q: got %v", c.input, got)
		}
	}
}

func TestFixedPrompter(t *testing.T) {
	mode, remember, err := FixedPrompter{Answer: ModeSkip}.ResolveConflict("img.png", nil)
	if err != nil || mode != ModeSkip || remember {
		t.Errorf("got %s remember=%v err=%v", mode, remember, err)
	}

	if _, _, err := (FixedPrompter{}).ResolveConflict("img.png", nil); err == nil {
		t.Error("empty answer must error")
	}
	if _, _, err := (FixedPrompter{Answer: ModePrompt}).ResolveConflict("img.png", nil); err == nil {
		t.Error("prompt answer must error")
	}

	if ok, _ := (FixedPrompter{Confirmed: true}).Confirm("go?"); !ok {
		t.Error("Confirm should follow Confirmed")
	}
}
