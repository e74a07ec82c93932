// Package testutil provides shared test helpers for slot stores and the
// content store.
package testutil

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/storage"
)

// Clock is a settable time source.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// TestFS creates a file-backed slot store in a temp directory.
func TestFS(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestSQLite creates a temporary SQLite slot store that is automatically
// cleaned up.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "aininjas-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := storage.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a content store over in-memory slots with a fixed
// clock.
func TestStore(t *testing.T) (*content.Store, *storage.Memory, *Clock) {
	t.Helper()
	slots := storage.NewMemory()
	clock := NewClock()
	store, err := content.NewStore(content.NewSlotRepository(slots), content.WithClock(clock.Now))
	if err != nil {
		t.Fatal(err)
	}
	return store, slots, clock
}
