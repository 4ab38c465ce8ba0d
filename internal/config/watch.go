package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceDelay coalesces bursts of write events from editors that save in
// multiple steps.
const debounceDelay = 250 * time.Millisecond

// Watch reloads the config whenever config.yaml in dir changes and invokes
// onChange with the new value. It blocks until ctx is canceled.
func Watch(ctx context.Context, dir string, logger zerolog.Logger, onChange func(*Config)) error {
	configDir, err := resolveDir(dir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(configDir); err != nil {
		return err
	}

	log := logger.With().Str("component", "config-watch").Logger()
	target := filepath.Join(configDir, "config.yaml")

	var timer *time.Timer
	reload := func() {
		cfg, err := Load(configDir)
		if err != nil {
			log.Warn().Err(err).Msg("Config reload failed, keeping previous")
			return
		}
		log.Info().Msg("Config reloaded")
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Config watcher error")
		}
	}
}
