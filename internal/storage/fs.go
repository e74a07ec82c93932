package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/checksum"
)

const (
	slotExt   = ".json"
	tmpPrefix = ".slot-tmp-"
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FS implements Slots with one file per key under a root directory.
type FS struct {
	root string // absolute path to the slot directory

	mu      sync.Mutex
	written map[string]string // key -> checksum of our own last write
}

// NewFS creates a new FS store rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, written: make(map[string]string)}, nil
}

// Root returns the absolute slot directory.
func (f *FS) Root() string {
	return f.root
}

// slotPath maps a key to its file. Keys are restricted to a safe
// alphabet so they can never escape the root.
func (f *FS) slotPath(key string) (string, error) {
	if !keyRe.MatchString(key) {
		return "", fmt.Errorf("storage: invalid slot key %q", key)
	}
	return filepath.Join(f.root, key+slotExt), nil
}

// keyFromPath is the inverse of slotPath; ok is false for foreign files.
func keyFromPath(p string) (string, bool) {
	name := filepath.Base(p)
	if strings.HasPrefix(name, tmpPrefix) || !strings.HasSuffix(name, slotExt) {
		return "", false
	}
	key := strings.TrimSuffix(name, slotExt)
	return key, keyRe.MatchString(key)
}

// Get returns the raw bytes of a slot.
func (f *FS) Get(key string) ([]byte, error) {
	p, err := f.slotPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: get %s: %w", key, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return data, nil
}

// Set atomically writes a slot: tmp file → fsync → rename.
func (f *FS) Set(key string, value []byte) error {
	p, err := f.slotPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}

	f.mu.Lock()
	f.written[key] = checksum.Sum(value)
	f.mu.Unlock()

	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a slot file.
func (f *FS) Delete(key string) error {
	p, err := f.slotPath(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.written[key] = ""
	f.mu.Unlock()

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

// Keys lists every slot present on disk.
func (f *FS) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: keys: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := keyFromPath(e.Name()); ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// selfWritten reports whether the current content of key is the one this
// process last wrote (or deleted).
func (f *FS) selfWritten(key string) bool {
	f.mu.Lock()
	want, ok := f.written[key]
	f.mu.Unlock()
	if !ok {
		return false
	}

	data, err := f.Get(key)
	if err != nil {
		return want == "" && errors.Is(err, apperr.ErrNotFound)
	}
	return want == checksum.Sum(data)
}
