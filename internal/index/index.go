package index

// SectionIndex defines the interface for section indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type SectionIndex interface {
	UpsertFile(path, checksum string, secs []SectionRow) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListFiles(limit, offset int, group, sort string) ([]FileRow, int, error)
	FileSections(path string) ([]SectionRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Groups() ([]GroupCount, error)
	Close() error
}

// Verify *DB satisfies SectionIndex at compile time.
var _ SectionIndex = (*DB)(nil)
