// Package session holds the record store produced by one parse and exposes
// query and splice operations over it.
package session

import (
	"sync"

	"github.com/starford/perthro/internal/models"
	"github.com/starford/perthro/internal/parser"
)

// Kind selects the matching rule for Pluck.
type Kind string

const (
	// KindList matches every section whose List equals the key.
	KindList Kind = "list"
	// KindItem matches every bare-marker section whose Name equals the key.
	KindItem Kind = "item"
)

// Session owns the mutable record store for one parsed document. The store
// is populated lazily by the first operation, exactly once per session, and
// shrinks monotonically as Pluck removes records; it is never repopulated.
//
// All operations are serialized by an internal mutex: Pluck reads and
// removes in one atomic step, so concurrent callers never observe lost or
// duplicated matches.
type Session struct {
	mu      sync.Mutex
	text    string
	loaded  bool
	records []models.Section
}

// New creates a session over text. The text is not scanned until the first
// query or splice operation.
func New(text string) *Session {
	return &Session{text: text}
}

// load populates the store on first use. Callers must hold s.mu.
func (s *Session) load() {
	if s.loaded {
		return
	}
	s.records = parser.Parse(s.text)
	s.loaded = true
}

// Sections returns a copy of the store's current contents, reflecting any
// prior splicing.
func (s *Session) Sections() []models.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	out := make([]models.Section, len(s.records))
	copy(out, s.records)
	return out
}

// Item returns the first section addressed by name. A bare-marker section
// (List empty, Name == name) wins; when none exists, the first section of
// the group whose List equals name is returned as a fallback.
func (s *Session) Item(name string) (models.Section, bool) {
	if name == "" {
		return models.Section{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	for _, r := range s.records {
		if r.List == "" && r.Name == name {
			return r, true
		}
	}
	for _, r := range s.records {
		if r.List == name {
			return r, true
		}
	}
	return models.Section{}, false
}

// Content returns the data lines of Item(name), or false when no section
// matches.
func (s *Session) Content(name string) ([]string, bool) {
	sec, ok := s.Item(name)
	if !ok {
		return nil, false
	}
	return sec.Data, true
}

// List returns every section addressed by name, in store order: grouped
// sections whose List equals name, plus bare-marker sections whose Name
// equals name. The marker keyword is the lookup key either way, so repeated
// bare markers form a list just like a grouped marker does.
func (s *Session) List(name string) []models.Section {
	if name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	var out []models.Section
	for _, r := range s.records {
		if r.List == name || (r.List == "" && r.Name == name) {
			out = append(out, r)
		}
	}
	return out
}

// Contents returns the data lines of each section in List(name).
func (s *Session) Contents(name string) [][]string {
	secs := s.List(name)
	if secs == nil {
		return nil
	}
	out := make([][]string, len(secs))
	for i, sec := range secs {
		out[i] = sec.Data
	}
	return out
}

// ListItem returns every section with List == list and Name == name.
// Normally zero or one, but duplicates are returned in store order.
func (s *Session) ListItem(list, name string) []models.Section {
	if list == "" || name == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	var out []models.Section
	for _, r := range s.records {
		if r.List == list && r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// Pluck removes every section matched by kind and key from the store and
// returns them. A second identical call returns nothing: the matches no
// longer exist. Removal preserves the relative order of the remaining
// records, and their Index values are not renumbered. An unknown kind or
// empty key matches nothing.
func (s *Session) Pluck(kind Kind, key string) []models.Section {
	if key == "" || (kind != KindList && kind != KindItem) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	var (
		matched []models.Section
		kept    []models.Section
	)
	for _, r := range s.records {
		hit := false
		switch kind {
		case KindList:
			hit = r.List == key
		case KindItem:
			hit = r.List == "" && r.Name == key
		}
		if hit {
			matched = append(matched, r)
		} else {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return matched
}
