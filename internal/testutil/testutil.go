// Package testutil provides shared test helpers for setting up source trees and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/storage"
)

// DefaultExtensions is the extension set used by test source trees.
var DefaultExtensions = []string{".pod", ".pm", ".pl"}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "perthro-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSource creates a temporary source directory with a storage.Provider.
func TestSource(t *testing.T) (string, storage.Provider) {
	t.Helper()
	sourceDir := t.TempDir()
	store, err := storage.NewFS(sourceDir, DefaultExtensions)
	if err != nil {
		t.Fatal(err)
	}
	return sourceDir, store
}

// WriteSource writes a source file under dir, creating parent directories.
func WriteSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
