package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 200 * time.Millisecond

// Watch calls onChange with the reloaded config whenever the file at path is
// written, until ctx is done. The parent directory is watched so that editors
// which replace the file are handled. Invalid files are logged and skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close() //nolint:errcheck
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close() //nolint:errcheck
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDelay)
				} else {
					timer.Reset(reloadDelay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				cfg, err := LoadFrom(path)
				if err != nil {
					slog.Warn("reload config", "path", path, "error", err)
					continue
				}
				slog.Info("config reloaded", "path", path)
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher", "error", err)
			}
		}
	}()
	return nil
}
