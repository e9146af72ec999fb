package internal

import (
	"io"

	"github.com/starford/raido/internal/collect"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	prompter collect.Prompter
	out      io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPrompter overrides the interactive prompter (tests, MCP).
func WithPrompter(p collect.Prompter) Option {
	return func(a *application) {
		a.prompter = p
	}
}

// WithOutput overrides where human-facing prompt text is written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
