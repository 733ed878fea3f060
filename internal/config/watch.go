package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gauthierbraillon/mediamix/internal/logger"
)

// Watch reloads path whenever it changes and passes each valid result to
// onChange. Invalid reloads are logged and skipped. Watch blocks until ctx
// is done.
//
// The parent directory is watched so editors that replace the file by
// renaming are still noticed.
func Watch(ctx context.Context, path string, log logger.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", logger.Error(err))
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(target)
			if err != nil {
				log.Warn("config reload failed", logger.String("path", target), logger.Error(err))
				continue
			}
			if err := cfg.Validate(); err != nil {
				log.Warn("reloaded config is invalid", logger.String("path", target), logger.Error(err))
				continue
			}
			log.Info("config reloaded", logger.String("path", target), logger.String("source", cfg.Source.Kind))
			onChange(cfg)
		}
	}
}
