// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Raido's collection tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/collect"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	db     *index.DB
	cfg    collect.Config
	logger *slog.Logger
}

// New creates a new MCP server with all Raido tools registered. cfg carries
// the engine defaults; per-call arguments override the conflict mode.
func New(store storage.Provider, db *index.DB, cfg collect.Config, logger *slog.Logger) *Server {
	s := &Server{store: store, db: db, cfg: cfg, logger: logger}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("collect_note",
		mcp.WithDescription("Relocate the attachments referenced by one note into its "+
			"configured attachment folder and rewrite the note's links. Shared attachments "+
			"are resolved with the given mode; there is no interactive prompt over MCP."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note (e.g. folder/note.md)")),
		mcp.WithString("mode", mcp.Description("Conflict mode for shared attachments: move, copy, skip, or cancel (default skip)")),
		mcp.WithString("old_note_name", mcp.Description("The note's previous base name, used by the replace-notename policy after a rename")),
	), s.collectNote)

	s.mcp.AddTool(mcp.NewTool("collect_folder",
		mcp.WithDescription("Collect attachments for every note under a folder, recursively. "+
			"Destructive and non-undoable: confirm must be true or nothing happens."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Relative folder path (empty for vault root)")),
		mcp.WithString("mode", mcp.Description("Conflict mode for shared attachments: move, copy, skip, or cancel (default skip)")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Explicit confirmation for the destructive run")),
	), s.collectFolder)

	s.mcp.AddTool(mcp.NewTool("collect_vault",
		mcp.WithDescription("Collect attachments for every note in the vault. "+
			"Destructive and non-undoable: confirm must be true or nothing happens."),
		mcp.WithString("mode", mcp.Description("Conflict mode for shared attachments: move, copy, skip, or cancel (default skip)")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Explicit confirmation for the destructive run")),
	), s.collectVault)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the notes that reference the specified vault file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_attachments",
		mcp.WithDescription("List every indexed attachment (non-note file) in the vault."),
	), s.listAttachments)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// runnerFor builds a non-interactive runner for one tool call.
func (s *Server) runnerFor(req mcp.CallToolRequest, confirmed bool) (*collect.Runner, error) {
	cfg := s.cfg
	cfg.ConflictMode = collect.ModeSkip
	if m, err := req.RequireString("mode"); err == nil && m != "" {
		mode, perr := collect.ParseMode(m)
		if perr != nil {
			return nil, perr
		}
		if mode == collect.ModePrompt {
			return nil, fmt.Errorf("mode %q is not available over MCP", m)
		}
		cfg.ConflictMode = mode
	}
	if v, err := req.RequireString("old_note_name"); err == nil && v != "" {
		cfg.OldNoteName = v
	}
	prompter := collect.FixedPrompter{Confirmed: confirmed}
	return collect.NewRunner(s.store, s.db, cfg, prompter, s.logger), nil
}

func reportText(rep *collect.Report) string {
	out, _ := json.MarshalIndent(rep, "", "  ")
	return string(out)
}

func (s *Server) collectNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	runner, err := s.runnerFor(req, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := runner.CollectNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(reportText(rep)), nil
}

func (s *Server) collectFolder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	confirmed, err := req.RequireBool("confirm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !confirmed {
		return mcp.NewToolResultError("not confirmed: pass confirm=true to run a destructive batch"), nil
	}
	runner, err := s.runnerFor(req, confirmed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := runner.CollectFolder(ctx, folder, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(reportText(rep)), nil
}

func (s *Server) collectVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirmed, err := req.RequireBool("confirm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !confirmed {
		return mcp.NewToolResultError("not confirmed: pass confirm=true to run a destructive batch"), nil
	}
	runner, err := s.runnerFor(req, confirmed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := runner.CollectVault(ctx, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(reportText(rep)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	links, err := s.db.Backlinks(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(links) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no notes reference %s", path)), nil
	}
	return mcp.NewToolResultText(strings.Join(links, "\n")), nil
}

func (s *Server) listAttachments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metas, err := s.db.ListAttachments()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no attachments indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}
