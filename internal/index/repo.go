package index

import (
	"fmt"
	"time"
)

// FileRow represents a row in the files table.
type FileRow struct {
	Path      string
	Checksum  string
	Sections  int
	UpdatedAt time.Time
}

// SectionRow is one extracted section as stored in the index. Seq carries
// the parser-assigned document index; Body is the joined data lines.
type SectionRow struct {
	Seq  int
	Name string
	List string
	Body string
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	Path    string
	Name    string
	List    string
	Snippet string
}

// GroupCount aggregates grouped markers across the whole source tree.
type GroupCount struct {
	List     string
	Sections int
	Files    int
}

// UpsertFile replaces a file's checksum and all of its sections within a
// transaction.
func (db *DB) UpsertFile(path, checksum string, secs []SectionRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// Replace sections: delete old rows then bulk insert.
	_, _ = tx.Exec(`DELETE FROM sections WHERE path = ?`, path)
	if len(secs) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO sections (path, seq, name, list, body) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare section insert: %w", err)
		}
		defer stmt.Close()
		for _, s := range secs {
			if _, err := stmt.Exec(path, s.Seq, s.Name, s.List, s.Body); err != nil {
				return fmt.Errorf("index: insert section: %w", err)
			}
		}
	}

	if err := ftsReplace(tx, path, secs); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteFile removes a file, its sections, and its FTS entries.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM sections WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if
// not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed file keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListFiles returns paginated files with an optional group filter: when
// group is non-empty, only files containing at least one section of that
// group are returned. sort is one of "updated_at" (default, newest first)
// or "path".
func (db *DB) ListFiles(limit, offset int, group, sort string) ([]FileRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if group != "" {
		where = `WHERE EXISTS (SELECT 1 FROM sections s WHERE s.path = f.path AND s.list = ?)`
		args = append(args, group)
	}

	order := "f.updated_at DESC"
	if sort == "path" {
		order = "f.path ASC"
	}

	var total int
	countQ := `SELECT count(*) FROM files f ` + where
	if err := db.conn.QueryRow(countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count files: %w", err)
	}

	q := `
		SELECT f.path, f.checksum, f.updated_at,
		       (SELECT count(*) FROM sections s WHERE s.path = f.path)
		FROM files f ` + where + `
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list files: %w", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var r FileRow
		if err := rows.Scan(&r.Path, &r.Checksum, &r.UpdatedAt, &r.Sections); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// FileSections returns all indexed sections of a file in document order.
func (db *DB) FileSections(path string) ([]SectionRow, error) {
	rows, err := db.conn.Query(`
		SELECT seq, name, list, body FROM sections
		WHERE path = ?
		ORDER BY seq
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: file sections: %w", err)
	}
	defer rows.Close()

	var out []SectionRow
	for rows.Next() {
		var s SectionRow
		if err := rows.Scan(&s.Seq, &s.Name, &s.List, &s.Body); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Groups aggregates grouped markers: one row per distinct list keyword
// with its section and file counts.
func (db *DB) Groups() ([]GroupCount, error) {
	rows, err := db.conn.Query(`
		SELECT list, count(*), count(DISTINCT path)
		FROM sections
		WHERE list != ''
		GROUP BY list
		ORDER BY list
	`)
	if err != nil {
		return nil, fmt.Errorf("index: groups: %w", err)
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.List, &g.Sections, &g.Files); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
