package collect

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter implements Prompter over an interactive terminal,
// reading answers line by line.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter creates a prompter reading from in and writing
// questions to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

// ResolveConflict lists the referencing notes and asks for a mode. An
// answer suffixed with "!" is remembered for the rest of the batch.
func (p *TerminalPrompter) ResolveConflict(attachment string, referrers []string) (Mode, bool, error) {
	fmt.Fprintf(p.out, "Attachment %q is referenced by %d notes:\n", attachment, len(referrers))
	for _, ref := range referrers {
		fmt.Fprintf(p.out, "  - %s\n", ref)
	}
	for {
		fmt.Fprintf(p.out, "Resolve with [m]ove, [c]opy, [s]kip, or c[a]ncel the batch (append ! to remember): ")
		line, err := p.in.ReadString('\n')
		if err != nil {
			return "", false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		remember := strings.HasSuffix(answer, "!")
		answer = strings.TrimSuffix(answer, "!")

		switch answer {
		case "m", "move":
			return ModeMove, remember, nil
		case "c", "copy":
			return ModeCopy, remember, nil
		case "s", "skip":
			return ModeSkip, remember, nil
		case "a", "cancel":
			return ModeCancel, remember, nil
		}
		fmt.Fprintln(p.out, "Unrecognized answer.")
	}
}

// Confirm asks a yes/no question, defaulting to no.
func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// FixedPrompter implements Prompter without interaction: conflicts always
// resolve to Answer and confirmation follows Confirmed. Used by the MCP
// server, where no terminal is available.
type FixedPrompter struct {
	Answer    Mode
	Confirmed bool
}

// ResolveConflict returns the fixed answer.
func (p FixedPrompter) ResolveConflict(string, []string) (Mode, bool, error) {
	if p.Answer == "" || p.Answer == ModePrompt {
		return "", false, fmt.Errorf("collect: interactive prompt not available")
	}
	return p.Answer, false, nil
}

// Confirm returns the fixed confirmation.
func (p FixedPrompter) Confirm(string) (bool, error) {
	return p.Confirmed, nil
}
