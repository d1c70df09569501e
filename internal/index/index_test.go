package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "perthro-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&count); err != nil {
		t.Fatalf("files table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM sections`).Scan(&count); err != nil {
		t.Fatalf("sections table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	secs := []SectionRow{
		{Seq: 1, Name: "pod", Body: "Intro text."},
		{Seq: 2, Name: "example-1", List: "name", Body: "Example #1"},
	}
	if err := db.UpsertFile("lib/Demo.pm", "abc123", secs); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	cs, err := db.GetChecksum("lib/Demo.pm")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestFileSections_DocumentOrder(t *testing.T) {
	db := testDB(t)
	secs := []SectionRow{
		{Seq: 2, Name: "b", Body: "B"},
		{Seq: 1, Name: "a", Body: "A"},
	}
	if err := db.UpsertFile("doc.pod", "cs", secs); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	got, err := db.FileSections("doc.pod")
	if err != nil {
		t.Fatalf("FileSections: %v", err)
	}
	if len(got) != 2 || got[0].Seq != 1 || got[1].Seq != 2 {
		t.Errorf("sections = %+v", got)
	}
}

func TestUpsertReplacesSections(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("doc.pod", "1", []SectionRow{{Seq: 1, Name: "old", Body: "old"}})
	_ = db.UpsertFile("doc.pod", "2", []SectionRow{{Seq: 1, Name: "new", Body: "new"}})

	got, err := db.FileSections("doc.pod")
	if err != nil {
		t.Fatalf("FileSections: %v", err)
	}
	if len(got) != 1 || got[0].Name != "new" {
		t.Errorf("sections = %+v", got)
	}
}

func TestListFiles_GroupFilter(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("a.pod", "1", []SectionRow{{Seq: 1, Name: "x", List: "name", Body: "x"}})
	_ = db.UpsertFile("b.pod", "2", []SectionRow{{Seq: 1, Name: "pod", Body: "y"}})

	files, total, err := db.ListFiles(10, 0, "name", "path")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if total != 1 || len(files) != 1 || files[0].Path != "a.pod" {
		t.Errorf("files = %+v, total = %d", files, total)
	}
	if files[0].Sections != 1 {
		t.Errorf("section count = %d, want 1", files[0].Sections)
	}

	_, total, err = db.ListFiles(10, 0, "", "path")
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
}

func TestGroups(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("a.pod", "1", []SectionRow{
		{Seq: 1, Name: "example-1", List: "name", Body: "1"},
		{Seq: 2, Name: "example-2", List: "name", Body: "2"},
		{Seq: 3, Name: "pod", Body: "bare"},
	})
	_ = db.UpsertFile("b.pod", "2", []SectionRow{
		{Seq: 1, Name: "example-3", List: "name", Body: "3"},
		{Seq: 2, Name: "gpl", List: "license", Body: "GPL"},
	})

	groups, err := db.Groups()
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	// Ordered by list keyword.
	if groups[0].List != "license" || groups[0].Sections != 1 || groups[0].Files != 1 {
		t.Errorf("groups[0] = %+v", groups[0])
	}
	if groups[1].List != "name" || groups[1].Sections != 3 || groups[1].Files != 2 {
		t.Errorf("groups[1] = %+v", groups[1])
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("del.pod", "x", []SectionRow{{Seq: 1, Name: "pod", Body: "bye"}})

	if err := db.DeleteFile("del.pod"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	cs, _ := db.GetChecksum("del.pod")
	if cs != "" {
		t.Error("checksum should be empty after delete")
	}
	secs, _ := db.FileSections("del.pod")
	if len(secs) != 0 {
		t.Errorf("sections remain: %+v", secs)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("a.pod", "1", nil)
	_ = db.UpsertFile("b.pod", "2", nil)

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 2 || all["a.pod"] != "1" || all["b.pod"] != "2" {
		t.Errorf("all = %v", all)
	}
}

func TestSearchFallback(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("a.pod", "1", []SectionRow{
		{Seq: 1, Name: "synopsis", Body: "use Demo; my $d = Demo->new;"},
	})

	results, err := db.Search("Demo", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "a.pod" || results[0].Name != "synopsis" {
		t.Errorf("results = %+v", results)
	}
}

func TestSyncIndexesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		t.Helper()
		abs := filepath.Join(dir, rel)
		_ = os.MkdirAll(filepath.Dir(abs), 0o755)
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("demo.pod", "=pod\nHello\n=cut\n")
	write("lib/Example.pm", "code\n=name sample\nSnippet\n=cut\nmore code\n")

	store := testStore(t, dir)
	db := testDB(t)
	logger := discardLogger()

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	secs, err := db.FileSections("demo.pod")
	if err != nil || len(secs) != 1 || secs[0].Name != "pod" {
		t.Fatalf("demo.pod sections = %+v, err = %v", secs, err)
	}
	secs, _ = db.FileSections(filepath.Join("lib", "Example.pm"))
	if len(secs) != 1 || secs[0].List != "name" || secs[0].Name != "sample" {
		t.Fatalf("Example.pm sections = %+v", secs)
	}

	// Remove a file; a second sync prunes it.
	_ = os.Remove(filepath.Join(dir, "demo.pod"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	cs, _ := db.GetChecksum("demo.pod")
	if cs != "" {
		t.Error("stale entry not pruned")
	}
}
