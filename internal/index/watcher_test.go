package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/bandhub/internal/library"
	"github.com/starford/bandhub/internal/testutil"
)

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

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(kind, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, kind+":"+path)
}

func (l *eventLog) has(want string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e == want {
			return true
		}
	}
	return false
}

func TestWatcher_NewSetlistIndexed(t *testing.T) {
	root, store := testutil.TestDataRoot(t)
	db := testDB(t)
	layout := library.DefaultLayout()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log eventLog
	go Watch(ctx, db, store, layout, quietLogger(), log.add)

	time.Sleep(100 * time.Millisecond)

	// Venue directory does not exist yet: the watcher must pick it up.
	testutil.WriteFile(t, store, testutil.SetlistPath, testutil.Setlist)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		sums, _ := db.SetlistChecksums()
		return sums[testutil.SetlistPath] != ""
	}, "new setlist not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has(KindSetlistCreated + ":" + testutil.SetlistPath)
	}, "expected setlist.created callback")

	_ = os.RemoveAll(filepath.Join(root, filepath.Dir(filepath.FromSlash(testutil.SetlistPath))))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.has(KindSetlistDeleted + ":" + testutil.SetlistPath)
	}, "expected setlist.deleted callback")
}

func TestWatcher_CatalogEdit(t *testing.T) {
	_, store := testutil.TestDataRoot(t)
	testutil.Seed(t, store)
	db := testDB(t)
	layout := library.DefaultLayout()
	if _, err := Sync(db, store, layout, quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log eventLog
	go Watch(ctx, db, store, layout, quietLogger(), log.add)
	time.Sleep(100 * time.Millisecond)

	testutil.WriteFile(t, store, testutil.CatalogPath, testutil.Catalog+"Bertha - Grateful Dead (150)  \n")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		hits, _ := db.SearchSongs("Bertha", 5)
		return len(hits) == 1
	}, "catalog edit not reindexed")

	if !log.has(KindCatalogUpdated + ":" + layout.CatalogFile) {
		t.Error("expected catalog.updated callback")
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	_, store := testutil.TestDataRoot(t)
	db := testDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, db, store, library.DefaultLayout(), quietLogger(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
