package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/collect"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Collect CollectConfig     `yaml:"collect"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Collect.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// VaultConfig holds the path to the vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// CollectConfig holds the attachment-collection settings.
//
// AttachmentFolder is a destination template with ${notepath} (the note's
// parent folder) and ${notename} tokens. NameTemplate additionally knows
// ${name}, ${ext}, ${hash}, ${uuid}, and ${date}.
type CollectConfig struct {
	AttachmentFolder string   `yaml:"attachment_folder"`
	RenamePolicy     string   `yaml:"rename_policy"`
	NameTemplate     string   `yaml:"name_template"`
	HashLength       int      `yaml:"hash_length"`
	ConflictMode     string   `yaml:"conflict_mode"`
	Exclude          []string `yaml:"exclude"`
	IgnoreKey        string   `yaml:"ignore_key"`
	ContinueOnError  bool     `yaml:"continue_on_error"`
}

// Validate validates the collect configuration.
func (c *CollectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AttachmentFolder, validation.Required),
		validation.Field(&c.RenamePolicy, validation.Required,
			validation.In(collect.PolicyTemplate, collect.PolicyReplaceNotename, collect.PolicyKeep)),
		validation.Field(&c.ConflictMode, validation.Required,
			validation.In(
				string(collect.ModeCancel), string(collect.ModeCopy), string(collect.ModeMove),
				string(collect.ModePrompt), string(collect.ModeSkip))),
		validation.Field(&c.HashLength, validation.Min(0), validation.Max(64)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		Collect: CollectConfig{
			AttachmentFolder: "${notepath}/attachments",
			RenamePolicy:     collect.PolicyKeep,
			NameTemplate:     "${name}",
			HashLength:       8,
			ConflictMode:     string(collect.ModePrompt),
			IgnoreKey:        "raido-ignore",
			ContinueOnError:  true,
		},
	}
}
