package index

import "github.com/starford/raido/internal/models"

// VaultIndex defines the interface for index operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type VaultIndex interface {
	UpsertFile(m models.FileMetadata, kind models.DocKind) error
	UpsertNote(m models.FileMetadata, kind models.DocKind, links []models.Link) error
	DeleteFile(path string) error
	Backlinks(target string) ([]string, error)
	PathExists(p string) bool
	FindByName(name string) []string
	RecordMove(oldPath, newPath string) error
	RecordCopy(m models.FileMetadata) error
	RetargetLink(source, oldTarget, newTarget string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListAttachments() ([]models.FileMetadata, error)
	Close() error
}

// Verify *DB satisfies VaultIndex at compile time.
var _ VaultIndex = (*DB)(nil)
