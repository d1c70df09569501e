//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sections_fts`).Scan(&count); err != nil {
		t.Fatalf("sections_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	secs := []SectionRow{
		{Seq: 1, Name: "synopsis", Body: "Perthro provides powerful section extraction capabilities."},
	}
	if err := db.UpsertFile("fts.pod", "f1", secs); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "fts.pod" || results[0].Name != "synopsis" {
		t.Errorf("result = %+v", results[0])
	}
	// FTS5 snippet should contain bold markers.
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("gone.pod", "g", []SectionRow{{Seq: 1, Name: "pod", Body: "vanishing content"}})
	_ = db.DeleteFile("gone.pod")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.pod" {
			t.Error("deleted file still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("evo.pod", "1", []SectionRow{{Seq: 1, Name: "old", Body: "original text"}})
	_ = db.UpsertFile("evo.pod", "2", []SectionRow{{Seq: 1, Name: "new", Body: "replacement text"}})

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Name != "new" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
