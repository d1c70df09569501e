package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/perthro/internal/storage"
)

func testStore(t *testing.T, dir string) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(dir, []string{".pod", ".pm"})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// watcherTestEnv sets up a source dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	sourceDir := t.TempDir()
	return sourceDir, testStore(t, sourceDir), testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	sourceDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, sourceDir, logger, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(sourceDir, "new.pod"), []byte("=pod\nNew\n=cut\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.pod")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.pod" {
				return true
			}
		}
		return false
	}, "expected created:new.pod callback")
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	sourceDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, sourceDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(sourceDir, "notes.txt"), []byte("=pod\nX\n=cut\n"), 0o644)
	_ = os.WriteFile(filepath.Join(sourceDir, "yes.pod"), []byte("=pod\nY\n=cut\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("yes.pod")
		return cs != ""
	}, "matching file not indexed")

	cs, _ := db.GetChecksum("notes.txt")
	if cs != "" {
		t.Error("non-matching extension was indexed")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	sourceDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, sourceDir, logger, nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(sourceDir, "lib")
	_ = os.MkdirAll(subDir, 0o755)

	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "Deep.pm"), []byte("=pod\nDeep\n=cut\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum(filepath.Join("lib", "Deep.pm"))
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	sourceDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	_ = os.WriteFile(filepath.Join(sourceDir, "del.pod"), []byte("=pod\nDelete Me\n=cut\n"), 0o644)
	Sync(db, store, logger)

	cs, _ := db.GetChecksum("del.pod")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, sourceDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(sourceDir, "del.pod"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.pod")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	sourceDir, store, db := watcherTestEnv(t)
	logger := discardLogger()

	_ = os.WriteFile(filepath.Join(sourceDir, "old.pod"), []byte("=pod\nRename\n=cut\n"), 0o644)
	Sync(db, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, sourceDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(sourceDir, "old.pod"), filepath.Join(sourceDir, "renamed.pod"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.pod")
		newCS, _ := db.GetChecksum("renamed.pod")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
