// Package parser extracts frontmatter and attachment references from vault
// notes, and rewrites references after a relocation.
package parser

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/raido/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`(!?)\[\[([^\[\]]+)\]\]`)
	mdlinkRe   = regexp.MustCompile(`(!?)\[[^\]]*\]\(([^()\s]+(?:\s+"[^"]*")?)\)`)
	fenceRe    = regexp.MustCompile("(?ms)^```.*?^```[ \t]*$")
	inlineRe   = regexp.MustCompile("`[^`\n]*`")
)

// Result holds the output of parsing a Markdown note.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	References  []models.Reference
	Title       string
}

// Parse extracts frontmatter and attachment references from raw Markdown
// bytes. Reference spans are byte offsets into the original content, so the
// caller can splice rewrites back without re-parsing.
func Parse(data []byte) (*Result, error) {
	fm, bodyStart, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	content := string(data)
	refs := extractReferences(content, bodyStart)

	return &Result{
		Frontmatter: fm,
		Body:        content[bodyStart:],
		References:  refs,
		Title:       deriveTitle(fm, content[bodyStart:]),
	}, nil
}

// splitFrontmatter locates YAML frontmatter (between leading --- delimiters)
// and returns the parsed map plus the byte offset where the body begins.
// If no frontmatter is found the body starts at offset 0.
func splitFrontmatter(data []byte) (map[string]interface{}, int, error) {
	const delim = "---"
	lead := len(data) - len(bytes.TrimLeft(data, "\n\r"))
	trimmed := data[lead:]

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, 0, nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, treat everything as body.
		return nil, 0, nil
	}

	yamlBlock := rest[:idx]
	bodyStart := lead + len(delim) + idx + 1 + len(delim)
	// Skip the newline(s) after the closing delimiter.
	for bodyStart < len(data) && (data[bodyStart] == '\n' || data[bodyStart] == '\r') {
		bodyStart++
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML, treat everything as body.
		return nil, 0, nil
	}
	return fm, bodyStart, nil
}

// extractReferences returns every wikilink and Markdown link in content
// starting at bodyStart, skipping fenced code blocks and inline code spans.
func extractReferences(content string, bodyStart int) []models.Reference {
	masked := maskCode(content)

	var out []models.Reference
	for _, m := range wikilinkRe.FindAllStringSubmatchIndex(masked, -1) {
		if m[0] < bodyStart {
			continue
		}
		raw := content[m[0]:m[1]]
		inner := content[m[4]:m[5]]
		target := wikilinkTarget(inner)
		if target == "" {
			continue
		}
		out = append(out, models.Reference{
			Raw:    raw,
			Target: target,
			Start:  m[0],
			End:    m[1],
			Embed:  m[3] > m[2],
		})
	}
	for _, m := range mdlinkRe.FindAllStringSubmatchIndex(masked, -1) {
		if m[0] < bodyStart {
			continue
		}
		raw := content[m[0]:m[1]]
		target := mdlinkTarget(content[m[4]:m[5]])
		if target == "" || isExternal(target) {
			continue
		}
		out = append(out, models.Reference{
			Raw:    raw,
			Target: target,
			Start:  m[0],
			End:    m[1],
			Embed:  m[3] > m[2],
		})
	}
	return out
}

// maskCode blanks fenced blocks and inline code so link patterns inside
// them never match. Lengths are preserved to keep byte offsets valid.
func maskCode(content string) string {
	mask := func(s string) string {
		b := []byte(s)
		for i := range b {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
		return string(b)
	}
	masked := fenceRe.ReplaceAllStringFunc(content, mask)
	return inlineRe.ReplaceAllStringFunc(masked, mask)
}

// wikilinkTarget strips the alias and subpath from wikilink inner text:
// "dir/img.png#x|alias" → "dir/img.png".
func wikilinkTarget(inner string) string {
	if i := strings.Index(inner, "|"); i >= 0 {
		inner = inner[:i]
	}
	if i := strings.Index(inner, "#"); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner)
}

// mdlinkTarget extracts the URL part of a Markdown link destination,
// dropping any title and decoding percent escapes.
func mdlinkTarget(dest string) string {
	if i := strings.IndexAny(dest, " \t"); i >= 0 {
		dest = dest[:i]
	}
	if i := strings.Index(dest, "#"); i >= 0 {
		dest = dest[:i]
	}
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}
	return strings.TrimSpace(dest)
}

func isExternal(target string) bool {
	for _, scheme := range []string{"http://", "https://", "mailto:", "ftp://", "obsidian://", "file://"} {
		if strings.HasPrefix(target, scheme) {
			return true
		}
	}
	return false
}

// deriveTitle returns the frontmatter "title" if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// IgnoredByFrontmatter reports whether the note opts out of collection via
// a truthy frontmatter key.
func IgnoredByFrontmatter(fm map[string]interface{}, key string) bool {
	if fm == nil || key == "" {
		return false
	}
	v, ok := fm[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true") || strings.EqualFold(t, "yes")
	default:
		return false
	}
}

// RewriteReference rebuilds a raw link with a new target path, preserving
// the link's syntax: embeds stay embeds, wikilink aliases and subpaths are
// kept, Markdown link text is kept and the new path is percent-escaped.
func RewriteReference(raw, newTarget string) string {
	if strings.HasPrefix(raw, "[[") || strings.HasPrefix(raw, "![[") {
		bang := ""
		inner := raw
		if strings.HasPrefix(inner, "!") {
			bang = "!"
			inner = inner[1:]
		}
		inner = strings.TrimPrefix(inner, "[[")
		inner = strings.TrimSuffix(inner, "]]")

		var alias, subpath string
		if i := strings.Index(inner, "|"); i >= 0 {
			alias = inner[i:] // includes |
			inner = inner[:i]
		}
		if i := strings.Index(inner, "#"); i >= 0 {
			subpath = inner[i:] // includes #
		}
		return bang + "[[" + newTarget + subpath + alias + "]]"
	}

	// Markdown link: [text](dest) or ![text](dest).
	open := strings.Index(raw, "](")
	if open < 0 {
		return raw
	}
	textPart := raw[:open+2]
	dest := strings.TrimSuffix(raw[open+2:], ")")

	var title string
	if i := strings.IndexAny(dest, " \t"); i >= 0 {
		title = dest[i:]
		dest = dest[:i]
	}
	var frag string
	if i := strings.Index(dest, "#"); i >= 0 {
		frag = dest[i:]
	}
	escaped := (&url.URL{Path: newTarget}).EscapedPath()
	return textPart + escaped + frag + title + ")"
}
