package internal

import (
	"fmt"
	"os"

	"github.com/starford/aininjas/internal/storage"
)

// Storage is an opened slot backend. FS is set only for the fs backend.
type Storage struct {
	Slots storage.Slots
	FS    *storage.FS
	close func() error
}

// Close releases the backend.
func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage opens the backend selected by cfg.
func OpenStorage(cfg StorageConfig) (*Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return &Storage{Slots: storage.NewMemory()}, nil

	case BackendSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite slots: %w", err)
		}
		return &Storage{Slots: db, close: db.Close}, nil

	case BackendFS, "":
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		return &Storage{Slots: fs, FS: fs}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
