//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS sections_fts USING fts5(
			path UNINDEXED,
			seq UNINDEXED,
			name,
			list,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

// ftsReplace drops a file's FTS rows and inserts one row per section.
func ftsReplace(tx *sql.Tx, path string, secs []SectionRow) error {
	_, _ = tx.Exec(`DELETE FROM sections_fts WHERE path = ?`, path)
	for _, s := range secs {
		_, err := tx.Exec(`INSERT INTO sections_fts (path, seq, name, list, body) VALUES (?, ?, ?, ?, ?)`,
			path, s.Seq, s.Name, s.List, s.Body)
		if err != nil {
			return fmt.Errorf("index: upsert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM sections_fts WHERE path = ?`, path)
}

// Search performs an FTS5 full-text search over section names and bodies
// and returns matching sections with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       name,
		       list,
		       snippet(sections_fts, 4, '<b>', '</b>', '...', 64)
		FROM sections_fts
		WHERE sections_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Name, &r.List, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
