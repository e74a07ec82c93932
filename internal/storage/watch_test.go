package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
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

func TestWatch_ReportsExternalChanges(t *testing.T) {
	s := tempSlots(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var keys []string
	go Watch(ctx, s, logger, func(key string) {
		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	// Own write: must not be reported.
	if err := s.Set(KeyThemeMode, []byte("dark")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	if len(keys) != 0 {
		t.Errorf("own write reported: %v", keys)
	}
	mu.Unlock()

	// Foreign write: must be reported.
	if err := os.WriteFile(filepath.Join(s.Root(), KeyArticles+slotExt), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, k := range keys {
			if k == KeyArticles {
				return true
			}
		}
		return false
	}, "external write was not reported")
}
