package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the settings at path whenever the file is written or
// replaced, and passes every successfully loaded version to onChange. The
// parent directory is watched so editors that save via rename are seen.
// Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, log *zap.Logger, onChange func(*Settings)) error {
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info("Watching config", zap.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			s, err := Load(abs)
			if err != nil {
				// usually a half-written file; the next write event retries
				log.Warn("Config reload failed", zap.String("path", abs), zap.Error(err))
				continue
			}
			log.Info("Config reloaded", zap.String("path", abs), zap.Uint32("seed", s.Planet.Seed))
			onChange(s)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Config watcher error", zap.Error(err))
		}
	}
}
