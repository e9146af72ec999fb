package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/storage"
)

// Config holds the collect-scoped settings for a Runner.
type Config struct {
	AttachmentFolder string   // destination folder template
	RenamePolicy     string   // one of the Policy constants
	NameTemplate     string   // used by PolicyTemplate
	HashLength       int      // ${hash} prefix length
	OldNoteName      string   // note's previous base name, used by PolicyReplaceNotename
	ConflictMode     Mode     // default resolution for shared attachments
	Exclude          []string // note path globs to leave alone
	IgnoreKey        string   // frontmatter key opting a note out
	ContinueOnError  bool     // keep going after a per-note fatal error
	DryRun           bool     // log planned operations, mutate nothing
}

// Report summarizes one batch run.
type Report struct {
	Notes   int  // notes processed
	Moved   int  // attachments relocated
	Copied  int  // attachments duplicated
	Skipped int  // references left untouched
	Failed  int  // per-note or per-reference failures
	Aborted bool // batch was cancelled
}

// Runner orchestrates attachment collection over one note, a folder, or
// the whole vault. Notes are processed strictly sequentially; one note
// completes (or fails) before the next begins.
type Runner struct {
	store    storage.Provider
	db       index.VaultIndex
	cfg      Config
	prompter Prompter
	logger   *slog.Logger

	resolver *Resolver
	namer    *Namer
	exec     *Executor
}

// NewRunner wires up a runner and its engine components.
func NewRunner(store storage.Provider, db index.VaultIndex, cfg Config, prompter Prompter, logger *slog.Logger) *Runner {
	return &Runner{
		store:    store,
		db:       db,
		cfg:      cfg,
		prompter: prompter,
		logger:   logger,
		resolver: NewResolver(db, logger),
		namer:    NewNamer(cfg.AttachmentFolder, cfg.RenamePolicy, cfg.NameTemplate, cfg.HashLength),
		exec:     NewExecutor(store, db, logger, cfg.DryRun),
	}
}

// CollectNote collects attachments for a single note.
func (r *Runner) CollectNote(ctx context.Context, notePath string) (*Report, error) {
	cc := NewConflictContext()
	rep := &Report{}
	err := r.ProcessNote(ctx, cc, notePath, rep)
	if errors.Is(err, apperr.ErrAborted) {
		rep.Aborted = true
		return rep, nil
	}
	return rep, err
}

// CollectFolder collects attachments for every eligible note under dir
// (recursively). Destructive and non-undoable, so it asks for confirmation
// first unless yes is set.
func (r *Runner) CollectFolder(ctx context.Context, dir string, yes bool) (*Report, error) {
	scope := dir
	if scope == "" {
		scope = "the entire vault"
	} else {
		scope = fmt.Sprintf("folder %q", dir)
	}
	if !yes && !r.cfg.DryRun {
		ok, err := r.prompter.Confirm(
			fmt.Sprintf("Collect attachments for all notes in %s? This cannot be undone.", scope))
		if err != nil {
			return nil, fmt.Errorf("collect: confirm: %w", err)
		}
		if !ok {
			r.logger.Info("collect: not confirmed, nothing done")
			return &Report{}, nil
		}
	}

	notes, err := r.eligibleNotes(dir)
	if err != nil {
		return nil, err
	}
	return r.runBatch(ctx, notes)
}

// CollectVault collects attachments for every eligible note in the vault.
func (r *Runner) CollectVault(ctx context.Context, yes bool) (*Report, error) {
	return r.CollectFolder(ctx, "", yes)
}

// eligibleNotes lists notes under dir minus configured exclusions, sorted
// lexicographically for deterministic ordering.
func (r *Runner) eligibleNotes(dir string) ([]string, error) {
	metas, err := r.store.List(dir)
	if err != nil {
		return nil, err
	}
	var notes []string
	for _, m := range metas {
		if !models.IsNote(m.Path) {
			continue
		}
		if r.excluded(m.Path) {
			r.logger.Info("collect: excluded by configuration", slog.String("note", m.Path))
			continue
		}
		notes = append(notes, m.Path)
	}
	sort.Strings(notes)
	return notes, nil
}

// excluded matches a note path against the configured exclusion globs.
// An entry ending in "/" excludes the whole subtree.
func (r *Runner) excluded(notePath string) bool {
	for _, pattern := range r.cfg.Exclude {
		if strings.HasSuffix(pattern, "/") {
			if strings.HasPrefix(notePath, pattern) {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pattern, notePath); ok {
			return true
		}
	}
	return false
}

// runBatch processes notes sequentially under one ConflictContext.
func (r *Runner) runBatch(ctx context.Context, notes []string) (*Report, error) {
	cc := NewConflictContext()
	rep := &Report{}

	for i, note := range notes {
		if err := cc.Err(ctx); err != nil {
			rep.Aborted = true
			r.logger.Warn("collect: batch aborted, skipping remaining notes",
				slog.Int("remaining", len(notes)-i))
			break
		}

		r.logger.Info("collect: processing note",
			slog.String("note", note),
			slog.Int("n", i+1),
			slog.Int("total", len(notes)))

		err := r.ProcessNote(ctx, cc, note, rep)
		if err == nil {
			continue
		}
		if errors.Is(err, apperr.ErrAborted) || errors.Is(err, context.Canceled) {
			rep.Aborted = true
			break
		}
		rep.Failed++
		r.logger.Error("collect: note failed",
			slog.String("note", note),
			slog.String("error", err.Error()))
		if !r.cfg.ContinueOnError {
			return rep, err
		}
	}
	return rep, nil
}

// noteState accumulates per-note rewrite work so the note's content is
// written once, after all successful file operations.
type noteState struct {
	notePath string
	kind     models.DocKind
	data     []byte
	edits    []spanEdit          // markdown splices
	mapping  map[string]string   // canvas old → new path
	moved    map[string]string   // finalized relocations this note
	skipped  map[string]struct{} // attachments resolved but left alone
}

type spanEdit struct {
	start, end int
	text       string
}

// ProcessNote runs the full per-note pipeline: parse references, resolve,
// name, detect and resolve conflicts, relocate, and rewrite the note.
// It is the reusable per-note entry point behind all batch scopes.
func (r *Runner) ProcessNote(ctx context.Context, cc *ConflictContext, notePath string, rep *Report) (err error) {
	if err := cc.Err(ctx); err != nil {
		return err
	}
	if r.excluded(notePath) {
		r.logger.Info("collect: excluded by configuration", slog.String("note", notePath))
		return nil
	}

	data, err := r.store.Read(notePath)
	if err != nil {
		return err
	}

	st := &noteState{
		notePath: notePath,
		kind:     models.KindOf(notePath),
		data:     data,
		mapping:  make(map[string]string),
		moved:    make(map[string]string),
		skipped:  make(map[string]struct{}),
	}

	var refs []models.Reference
	switch st.kind {
	case models.KindCanvas:
		refs, err = parser.ParseCanvas(data)
		if err != nil {
			return err
		}
	case models.KindMarkdown:
		res, perr := parser.Parse(data)
		if perr != nil {
			return perr
		}
		if parser.IgnoredByFrontmatter(res.Frontmatter, r.cfg.IgnoreKey) {
			r.logger.Info("collect: note opts out via frontmatter", slog.String("note", notePath))
			return nil
		}
		refs = res.References
	default:
		return fmt.Errorf("collect: %s is not a note", notePath)
	}

	rep.Notes++

	// A move that already happened cannot be rolled back, so rewrites for
	// completed relocations are flushed even when a later reference
	// cancels or fails.
	defer func() {
		if ferr := r.flushNote(st); ferr != nil && err == nil {
			err = ferr
		}
	}()

	for _, ref := range refs {
		if cerr := cc.Err(ctx); cerr != nil {
			return cerr
		}
		if perr := r.processReference(ctx, cc, st, ref, rep); perr != nil {
			return perr
		}
	}
	return nil
}

// processReference handles a single reference through resolution, naming,
// conflict handling, and relocation. Soft failures are logged and counted,
// not returned.
func (r *Runner) processReference(ctx context.Context, cc *ConflictContext, st *noteState, ref models.Reference, rep *Report) error {
	attPath, err := r.resolver.Attachment(st.notePath, ref)
	if err != nil {
		// Unresolvable or note-shaped references are soft skips; the
		// resolver already logged them.
		rep.Skipped++
		return nil
	}

	// Repeat reference to an attachment this note already relocated:
	// rewrite only, no second file operation.
	if newPath, done := st.moved[attPath]; done {
		r.recordRewrite(st, ref, newPath)
		return nil
	}
	if _, skip := st.skipped[attPath]; skip {
		return nil
	}

	var content []byte
	if r.namer.NeedsContent() {
		if content, err = r.store.Read(attPath); err != nil {
			r.logger.Warn("collect: read attachment failed",
				slog.String("attachment", attPath),
				slog.String("error", err.Error()))
			rep.Failed++
			return nil
		}
	}

	newPath, err := r.namer.NewPath(attPath, content, st.notePath, r.cfg.OldNoteName)
	if err != nil {
		return err
	}
	mv := models.MoveResult{OldPath: attPath, NewPath: newPath}
	r.exec.UniqueDestination(&mv)

	if mv.NoOp() {
		r.logger.Debug("collect: already in place", slog.String("attachment", attPath))
		st.skipped[attPath] = struct{}{}
		rep.Skipped++
		return nil
	}

	op := ModeMove
	referrers, shared, err := DetectConflict(r.db, attPath)
	if err != nil {
		return err
	}
	if shared {
		mode, merr := resolveMode(ctx, cc, r.prompter, r.cfg.ConflictMode, attPath, referrers)
		if merr != nil {
			return merr
		}
		switch mode {
		case ModeCancel:
			cc.Abort()
			r.logger.Warn("collect: cancelled at shared attachment, aborting batch",
				slog.String("attachment", attPath))
			return apperr.ErrAborted
		case ModeSkip:
			r.logger.Warn("collect: shared attachment skipped",
				slog.String("attachment", attPath),
				slog.Int("referrers", len(referrers)))
			st.skipped[attPath] = struct{}{}
			rep.Skipped++
			return nil
		case ModeMove:
			r.logger.Warn("collect: moving shared attachment, other references go stale",
				slog.String("attachment", attPath),
				slog.Int("referrers", len(referrers)))
			op = ModeMove
		case ModeCopy:
			op = ModeCopy
		}
	}

	// Last cancellation check before the side-effecting step.
	if err := cc.Err(ctx); err != nil {
		return err
	}

	if err := r.exec.Apply(op, mv); err != nil {
		r.logger.Warn("collect: relocation failed",
			slog.String("attachment", attPath),
			slog.String("error", err.Error()))
		rep.Failed++
		return nil
	}

	st.moved[attPath] = mv.NewPath
	r.recordRewrite(st, ref, mv.NewPath)
	if op == ModeCopy {
		rep.Copied++
	} else {
		rep.Moved++
	}
	return nil
}

// recordRewrite queues the reference rewrite appropriate to the note kind.
func (r *Runner) recordRewrite(st *noteState, ref models.Reference, newPath string) {
	switch st.kind {
	case models.KindCanvas:
		st.mapping[ref.Raw] = newPath
	default:
		st.edits = append(st.edits, spanEdit{
			start: ref.Start,
			end:   ref.End,
			text:  parser.RewriteReference(ref.Raw, newPath),
		})
	}
}

// flushNote writes accumulated rewrites back to the note and updates the
// note's index row and link targets.
func (r *Runner) flushNote(st *noteState) error {
	if len(st.edits) == 0 && len(st.mapping) == 0 {
		return nil
	}
	if r.cfg.DryRun {
		r.logger.Info("collect: dry-run, would rewrite note",
			slog.String("note", st.notePath),
			slog.Int("references", len(st.edits)+len(st.mapping)))
		return nil
	}

	var out []byte
	var err error
	switch st.kind {
	case models.KindCanvas:
		out, err = parser.RewriteCanvas(st.data, st.mapping)
		if err != nil {
			return err
		}
	default:
		out = applyEdits(st.data, st.edits)
	}

	if err := r.store.Write(st.notePath, out); err != nil {
		return err
	}

	// Keep the index consistent for the rest of the batch.
	for old, newPath := range st.moved {
		if err := r.db.RetargetLink(st.notePath, old, newPath); err != nil {
			return err
		}
	}
	return r.db.UpsertFile(models.FileMetadata{
		Path:      st.notePath,
		Checksum:  checksum.Sum(out),
		Size:      int64(len(out)),
		UpdatedAt: time.Now(),
	}, st.kind)
}

// applyEdits splices span edits into content back-to-front so earlier
// offsets stay valid.
func applyEdits(content []byte, edits []spanEdit) []byte {
	sorted := make([]spanEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start > sorted[j].start })

	out := content
	for _, e := range sorted {
		if e.start < 0 || e.end > len(out) || e.start > e.end {
			continue
		}
		next := make([]byte, 0, len(out)-(e.end-e.start)+len(e.text))
		next = append(next, out[:e.start]...)
		next = append(next, e.text...)
		next = append(next, out[e.end:]...)
		out = next
	}
	return out
}
