package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempSource(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, []string{".pod", ".pm"})
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func seed(t *testing.T, dir, rel, content string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	s, dir := tempSource(t)
	seed(t, dir, "doc.pod", "=pod\nhello\n=cut\n")

	got, err := s.Read("doc.pod")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "=pod\nhello\n=cut\n" {
		t.Errorf("content = %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s, _ := tempSource(t)
	_, err := s.Read("nope.pod")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist: %v", err)
	}
}

func TestList_FiltersExtensions(t *testing.T) {
	s, dir := tempSource(t)
	seed(t, dir, "a.pod", "a")
	seed(t, dir, "lib/B.pm", "b")
	seed(t, dir, "readme.txt", "ignored")
	seed(t, dir, "script.PL", "ignored too")

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2: %v", len(items), items)
	}
	for _, it := range items {
		if it.Checksum == "" {
			t.Errorf("missing checksum for %s", it.Path)
		}
	}
}

func TestList_CaseInsensitiveExtension(t *testing.T) {
	s, dir := tempSource(t)
	seed(t, dir, "UPPER.POD", "x")
	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("len = %d, want 1", len(items))
	}
}

func TestList_Subdir(t *testing.T) {
	s, dir := tempSource(t)
	seed(t, dir, "a.pod", "a")
	seed(t, dir, "lib/b.pod", "b")

	items, err := s.List("lib")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != filepath.Join("lib", "b.pod") {
		t.Errorf("items = %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s, _ := tempSource(t)
	for _, p := range []string{"../../etc/passwd", "../outside.pod", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestMatches(t *testing.T) {
	s, _ := tempSource(t)
	cases := map[string]bool{
		"x.pod":     true,
		"lib/y.pm":  true,
		"z.POD":     true,
		"w.txt":     false,
		"noext":     false,
		"pod":       false,
		"x.pod.bak": false,
	}
	for p, want := range cases {
		if got := s.Matches(p); got != want {
			t.Errorf("Matches(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS("/tmp/perthro-does-not-exist-"+t.Name(), []string{".pod"}); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_NoExtensions(t *testing.T) {
	if _, err := NewFS(t.TempDir(), nil); err == nil {
		t.Error("expected error for empty extension list")
	}
}
