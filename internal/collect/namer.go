package collect

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/checksum"
)

// Rename policies.
const (
	PolicyTemplate        = "template"
	PolicyReplaceNotename = "replace-notename"
	PolicyKeep            = "keep"
)

var illegalNameRe = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Namer computes the destination path for a relocated attachment from the
// configured folder template and renaming policy.
type Namer struct {
	folderTemplate string // e.g. "${notepath}/attachments"
	policy         string
	nameTemplate   string // tokens: ${notename} ${name} ${ext} ${hash} ${uuid} ${date}
	hashLength     int
}

// NewNamer creates a namer. policy must be one of the Policy constants.
func NewNamer(folderTemplate, policy, nameTemplate string, hashLength int) *Namer {
	return &Namer{
		folderTemplate: folderTemplate,
		policy:         policy,
		nameTemplate:   nameTemplate,
		hashLength:     hashLength,
	}
}

// NeedsContent reports whether the configured policy requires the
// attachment's bytes up front (content-derived tokens).
func (n *Namer) NeedsContent() bool {
	return n.policy == PolicyTemplate && strings.Contains(n.nameTemplate, "${hash}")
}

// NewPath computes the full destination path for attPath when collected
// into the note at notePath. content may be nil unless NeedsContent is
// true. oldNoteName is the note's previous base name for the
// replace-notename policy; pass the current name when the note itself has
// not been renamed.
func (n *Namer) NewPath(attPath string, content []byte, notePath, oldNoteName string) (string, error) {
	name, err := n.newName(attPath, content, notePath, oldNoteName)
	if err != nil {
		return "", err
	}
	folder := n.destFolder(notePath)
	return path.Clean(path.Join(folder, Sanitize(name))), nil
}

func (n *Namer) newName(attPath string, content []byte, notePath, oldNoteName string) (string, error) {
	oldName := path.Base(attPath)
	ext := path.Ext(oldName)
	stem := strings.TrimSuffix(oldName, ext)
	noteName := noteBase(notePath)

	switch n.policy {
	case PolicyKeep:
		return oldName, nil

	case PolicyReplaceNotename:
		if oldNoteName == "" || oldNoteName == noteName {
			return oldName, nil
		}
		return strings.ReplaceAll(oldName, oldNoteName, noteName), nil

	case PolicyTemplate:
		repl := strings.NewReplacer(
			"${notename}", noteName,
			"${name}", stem,
			"${ext}", strings.TrimPrefix(ext, "."),
			"${uuid}", uuid.NewString(),
			"${date}", time.Now().Format("20060102"),
		)
		out := repl.Replace(n.nameTemplate)
		if strings.Contains(out, "${hash}") {
			out = strings.ReplaceAll(out, "${hash}", checksum.Prefix(content, n.hashLength))
		}
		if out == "" {
			return "", fmt.Errorf("collect: name template produced empty name")
		}
		if !strings.HasSuffix(strings.ToLower(out), strings.ToLower(ext)) {
			out += ext
		}
		return out, nil
	}
	return "", fmt.Errorf("collect: unknown rename policy %q", n.policy)
}

// destFolder expands the folder template for the owning note.
func (n *Namer) destFolder(notePath string) string {
	dir := path.Dir(notePath)
	if dir == "." {
		dir = ""
	}
	out := strings.NewReplacer(
		"${notepath}", dir,
		"${notename}", noteBase(notePath),
	).Replace(n.folderTemplate)
	return strings.Trim(path.Clean(out), "/")
}

// Sanitize replaces characters that are illegal in file names.
func Sanitize(name string) string {
	out := illegalNameRe.ReplaceAllString(name, "-")
	out = strings.Trim(out, " .")
	if out == "" {
		out = "unnamed"
	}
	return out
}

// noteBase returns the note's file name without extension.
func noteBase(notePath string) string {
	base := path.Base(notePath)
	return strings.TrimSuffix(base, path.Ext(base))
}
