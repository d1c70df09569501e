// Package sectionservice coordinates storage, scanning, and index access.
package sectionservice

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/checksum"
	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/session"
	"github.com/starford/perthro/internal/storage"
)

// FileDetail is the full representation of one scanned source file.
type FileDetail struct {
	Path      string           `json:"path"`
	Checksum  string           `json:"checksum"`
	Sections  []models.Section `json:"sections"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// FileListItem is a lightweight item in a list response.
type FileListItem struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Sections  int       `json:"sections"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new section service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// OpenSession reads a source file and returns a fresh query/splice session
// over its text. Each session owns its own record store, so destructive
// Pluck calls on one session never affect another.
func (s *Service) OpenSession(_ context.Context, path string) (*session.Session, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return session.New(string(data)), nil
}

// GetFile reads a source file, scans it, and returns all of its sections.
func (s *Service) GetFile(ctx context.Context, path string) (*FileDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	sess := session.New(string(data))
	return &FileDetail{
		Path:      path,
		Checksum:  checksum.Sum(data),
		Sections:  nonNilSlice(sess.Sections()),
		UpdatedAt: time.Now(),
	}, nil
}

// QuerySections reads a source file and applies the query layer:
//   - list and name set: list_item semantics (both must match)
//   - only list set: all sections of the group
//   - only name set: the single item match, when present
//   - neither set: every section in document order
func (s *Service) QuerySections(ctx context.Context, path, list, name string) ([]models.Section, error) {
	sess, err := s.OpenSession(ctx, path)
	if err != nil {
		return nil, err
	}

	switch {
	case list != "" && name != "":
		return nonNilSlice(sess.ListItem(list, name)), nil
	case list != "":
		return nonNilSlice(sess.List(list)), nil
	case name != "":
		if sec, ok := sess.Item(name); ok {
			return []models.Section{sec}, nil
		}
		return []models.Section{}, nil
	default:
		return nonNilSlice(sess.Sections()), nil
	}
}

// Pluck opens a fresh session over the file and splices out the matched
// sections. The removal is scoped to that session: the file on disk and
// the index are untouched, so each call consumes from a full document.
func (s *Service) Pluck(ctx context.Context, path string, kind session.Kind, key string) ([]models.Section, error) {
	sess, err := s.OpenSession(ctx, path)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(sess.Pluck(kind, key)), nil
}

// IndexFile reads a source file and upserts its sections into the index.
func (s *Service) IndexFile(_ context.Context, path string) error {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return index.IndexFile(s.db, path, data)
}

// ListFiles returns paginated indexed files with an optional group filter.
func (s *Service) ListFiles(_ context.Context, limit, offset int, group, sort string) ([]FileListItem, int, error) {
	rows, total, err := s.db.ListFiles(limit, offset, group, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]FileListItem, len(rows))
	for i, r := range rows {
		items[i] = FileListItem{
			Path:      r.Path,
			Checksum:  r.Checksum,
			Sections:  r.Sections,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// IndexedSections returns a file's sections as stored in the index,
// without touching the disk.
func (s *Service) IndexedSections(_ context.Context, path string) ([]models.Section, error) {
	rows, err := s.db.FileSections(path)
	if err != nil {
		return nil, err
	}
	out := make([]models.Section, len(rows))
	for i, r := range rows {
		out[i] = models.Section{
			Index: r.Seq,
			Name:  r.Name,
			List:  r.List,
			Data:  splitBody(r.Body),
		}
	}
	return out, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Groups returns group aggregates across the indexed source tree.
func (s *Service) Groups(_ context.Context) ([]index.GroupCount, error) {
	return s.db.Groups()
}

// splitBody restores the data lines from the joined index representation.
func splitBody(body string) []string {
	if body == "" {
		return []string{}
	}
	return strings.Split(body, "\n")
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
