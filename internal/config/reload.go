// SPDX-License-Identifier: LGPL-2.1-or-later

package config

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
)

// Holder holds the live configuration and supports hot reloading when the
// config file changes on disk. Readers get an immutable snapshot pointer;
// the watcher swaps it atomically so no reader ever sees a half-merged
// config.
type Holder struct {
	path     string
	snapshot atomic.Pointer[Config]
	watcher  *fsnotify.Watcher
}

// NewHolder constructs a Holder around an already-loaded configuration.
func NewHolder(initial Config, path string) *Holder {
	h := &Holder{path: path}
	h.snapshot.Store(&initial)
	return h
}

// Current returns the live configuration snapshot.
func (h *Holder) Current() *Config {
	return h.snapshot.Load()
}

// Reload re-runs the full load pipeline and swaps the snapshot on success.
// A failed reload keeps the previous configuration, per the persistence
// error policy: log and keep running.
func (h *Holder) Reload() error {
	cfg, err := Load(h.path)
	if err != nil {
		elog.WithComponent("config").Warn().Err(err).Msg("config reload failed, keeping previous configuration")
		return err
	}
	h.snapshot.Store(&cfg)
	elog.WithComponent("config").Info().Str("path", h.path).Msg("configuration reloaded")
	return nil
}

// Watch watches the config file's directory for changes and reloads on
// write/create of the file itself. Editors replace files rather than
// rewriting them in place, so the directory (not the file) is the watch
// target. Blocks until ctx is done.
func (h *Holder) Watch(ctx context.Context) error {
	if h.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return elogerr.Wrap(elogerr.KindIOError, "creating config watcher", err)
	}
	defer w.Close()
	h.watcher = w

	if err := w.Add(filepath.Dir(h.path)); err != nil {
		return elogerr.Wrap(elogerr.KindIOError, "watching config directory", err)
	}

	log := elog.WithComponent("config")
	log.Debug().Str("path", h.path).Msg("config watcher started")

	// Debounce: editors fire several events per save.
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(h.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			_ = h.Reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("config watcher error")
		}
	}
}
