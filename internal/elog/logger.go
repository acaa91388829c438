// SPDX-License-Identifier: LGPL-2.1-or-later

// Package elog provides the daemon's structured logger: a single
// process-wide zerolog.Logger, configured once at startup, with per-
// component child loggers for each subsystem (registries, inhibitor engine,
// hot-plug dispatcher, ...).
package elog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures logger construction options.
type Config struct {
	Level   string    // "debug", "info", "warn", "error"; defaults to "info"
	Output  io.Writer // defaults to os.Stderr
	Version string
}

var (
	mu          sync.RWMutex
	base        zerolog.Logger
	initialized bool
)

// Configure (re)initializes the global logger. Safe to call once at
// startup; later calls replace the previous configuration.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	base = zerolog.New(out).With().
		Timestamp().
		Str("service", "elogind-core").
		Str("version", cfg.Version).
		Logger()

	initialized = true
}

func ensureInitialized() {
	mu.RLock()
	ok := initialized
	mu.RUnlock()
	if !ok {
		Configure(Config{})
	}
}

// L returns a pointer to a copy of the base logger, matching zerolog's
// conventional access pattern.
func L() *zerolog.Logger {
	ensureInitialized()
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// WithComponent returns a child logger tagged with the given subsystem
// name, e.g. elog.WithComponent("inhibit").
func WithComponent(component string) *zerolog.Logger {
	l := L().With().Str("component", component).Logger()
	return &l
}

// Audit records a governance-relevant event (inhibitor grant/release, power
// gate decision) without a level field, so the configured filter level does
// not suppress it, mirroring the daemon's structured-log convention for decisions that must
// always be traceable.
func Audit(component, event, msg string, fields map[string]any) {
	l := WithComponent(component)
	ev := l.Log().Str("audit", "true").Str("event", event)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
