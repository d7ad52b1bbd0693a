package lod

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// ConfigEvent reports the outcome of a reload triggered by Watch
type ConfigEvent struct {
	// Err is nil when the config was reloaded and the scripts rewritten
	Err error
}

// WatchCleanupFunc stops a watch and waits for it to finish
type WatchCleanupFunc func() error

// Watch reloads the config whenever config.toml is written or replaced. The
// directory is watched rather than the file so editors that save by rename
// are noticed too. Script paths never change across reloads.
func (c *Config) Watch(ctx context.Context) (<-chan ConfigEvent, WatchCleanupFunc, error) {
	dir := filepath.Dir(c.Path)
	name := filepath.Base(c.Path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, &ConfigError{Path: dir, Err: err}
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, &ConfigError{Path: dir, Err: err}
	}

	ch := make(chan ConfigEvent, 10)

	sctx := stopper.WithContext(ctx)

	sctx.Defer(func() {
		_ = watcher.Close()
	})

	cleanup := func() error {
		sctx.Stop(DefaultStopGrace)
		return sctx.Wait()
	}

	send := func(ev ConfigEvent) {
		select {
		case ch <- ev:
		case <-sctx.Stopping():
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		// This goroutine is the only sender on ch
		defer close(ch)

		var (
			timer    *time.Timer
			debounce <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(c.WatchDebounce)
				debounce = timer.C

			case <-debounce:
				debounce = nil
				err := c.Reload()
				if err != nil {
					c.logger.Printf("config reload failed: %v", err)
				} else {
					c.logger.Printf("config reloaded from %s", c.Path)
				}
				send(ConfigEvent{Err: err})

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil {
					send(ConfigEvent{Err: &ConfigError{Path: dir, Err: err}})
				}
			}
		}
	})

	return ch, cleanup, nil
}
