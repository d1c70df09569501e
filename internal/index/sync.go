package index

import (
	"log/slog"
	"strings"

	"github.com/starford/perthro/internal/checksum"
	"github.com/starford/perthro/internal/parser"
	"github.com/starford/perthro/internal/storage"
)

// Sync walks the source tree and brings the index up to date:
//   - new/changed files are scanned and their sections upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteFile(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile scans data for marker sections and upserts them into the DB.
// Files with no sections are still recorded so checksum comparison can
// skip them on the next sync.
func IndexFile(db *DB, path string, data []byte) error {
	secs := parser.Parse(string(data))
	rows := make([]SectionRow, len(secs))
	for i, s := range secs {
		rows[i] = SectionRow{
			Seq:  s.Index,
			Name: s.Name,
			List: s.List,
			Body: strings.Join(s.Data, "\n"),
		}
	}
	return db.UpsertFile(path, checksum.Sum(data), rows)
}
