package storage

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the key of a slot changed by another
// process.
type ChangeCallback func(key string)

// Watch starts an fsnotify watcher on the FS root and reports slot changes
// made outside this process until ctx is cancelled. Writes performed
// through f itself are recognised by checksum and not reported.
func Watch(ctx context.Context, f *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(f.root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", f.root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := keyFromPath(ev.Name)
			if !ok {
				continue
			}
			if f.selfWritten(key) {
				continue
			}
			logger.Debug("watcher: external change", slog.String("key", key), slog.String("op", ev.Op.String()))
			if cb != nil {
				cb(key)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
