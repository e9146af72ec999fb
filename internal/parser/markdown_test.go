package parser

import (
	"testing"
)

func TestParse_WikilinkAndEmbed(t *testing.T) {
	input := []byte("See [[img.png]] and the embed ![[photos/cat.jpg|a cat]].\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.References) != 2 {
		t.Fatalf("len(References) = %d, want 2", len(r.References))
	}
	if r.References[0].Target != "img.png" || r.References[0].Embed {
		t.Errorf("ref[0] = %+v", r.References[0])
	}
	if r.References[1].Target != "photos/cat.jpg" || !r.References[1].Embed {
		t.Errorf("ref[1] = %+v", r.References[1])
	}
}

func TestParse_SpansMatchContent(t *testing.T) {
	input := []byte("intro ![[a.png]] middle [link](b%20c.pdf) end\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.References) != 2 {
		t.Fatalf("len(References) = %d, want 2", len(r.References))
	}
	for _, ref := range r.References {
		if got := string(input[ref.Start:ref.End]); got != ref.Raw {
			t.Errorf("span %d:%d = %q, want %q", ref.Start, ref.End, got, ref.Raw)
		}
	}
	if r.References[1].Target != "b c.pdf" {
		t.Errorf("markdown target = %q, want decoded %q", r.References[1].Target, "b c.pdf")
	}
}

func TestParse_SkipsCodeAndExternal(t *testing.T) {
	input := []byte("```\n![[fenced.png]]\n```\ninline `![[code.png]]` done\n" +
		"[web](https://example.com/x.png) and [[real.png]]\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.References) != 1 {
		t.Fatalf("References = %+v, want only real.png", r.References)
	}
	if r.References[0].Target != "real.png" {
		t.Errorf("target = %q", r.References[0].Target)
	}
}

func TestParse_FrontmatterNotScanned(t *testing.T) {
	input := []byte("---\ntitle: T\ncover: \"[[fm.png]]\"\nraido-ignore: true\n---\nBody [[body.png]]\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.References) != 1 || r.References[0].Target != "body.png" {
		t.Errorf("References = %+v, want only body.png", r.References)
	}
	if r.Title != "T" {
		t.Errorf("title = %q", r.Title)
	}
	if !IgnoredByFrontmatter(r.Frontmatter, "raido-ignore") {
		t.Error("ignore key not honored")
	}
	if IgnoredByFrontmatter(r.Frontmatter, "other-key") {
		t.Error("unrelated key reported as ignore")
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody [[x.png]]\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Invalid YAML falls back to treating everything as body.
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if len(r.References) != 1 {
		t.Errorf("References = %+v", r.References)
	}
}

func TestRewriteReference_Wikilink(t *testing.T) {
	cases := []struct {
		raw, newTarget, want string
	}{
		{"[[img.png]]", "attachments/img.png", "[[attachments/img.png]]"},
		{"![[img.png|alias]]", "a/img.png", "![[a/img.png|alias]]"},
		{"[[doc.pdf#page=2|p2]]", "a/doc.pdf", "[[a/doc.pdf#page=2|p2]]"},
	}
	for _, c := range cases {
		if got := RewriteReference(c.raw, c.newTarget); got != c.want {
			t.Errorf("RewriteReference(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestRewriteReference_MarkdownLink(t *testing.T) {
	got := RewriteReference("![cat](cat.jpg)", "notes/pics/my cat.jpg")
	want := "![cat](notes/pics/my%20cat.jpg)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = RewriteReference("[doc](doc.pdf#s1)", "files/doc.pdf")
	want = "[doc](files/doc.pdf#s1)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
