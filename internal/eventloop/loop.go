// SPDX-License-Identifier: LGPL-2.1-or-later

// Package eventloop drives the daemon: a single goroutine multiplexing
// hot-plug events, bus calls, inhibitor-fifo EOF notifications and the GC
// ticker. Every state operation runs on this one goroutine, which is why
// the registries take no locks. Fifo watchers are the only helper
// goroutines; they touch no shared state and only signal EOF back into
// the loop.
package eventloop

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/manager"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// Loop multiplexes the daemon's event sources.
type Loop struct {
	Mgr           *manager.Manager
	SweepInterval time.Duration

	events  chan seatmodel.DeviceEvent
	calls   chan func()
	fifoEOF chan string

	watchers *errgroup.Group
}

// New constructs a Loop around mgr.
func New(mgr *manager.Manager, sweepInterval time.Duration) *Loop {
	if sweepInterval <= 0 {
		sweepInterval = 10 * time.Second
	}
	return &Loop{
		Mgr:           mgr,
		SweepInterval: sweepInterval,
		events:        make(chan seatmodel.DeviceEvent, 64),
		calls:         make(chan func(), 64),
		fifoEOF:       make(chan string, 16),
	}
}

// SubmitEvent queues a hot-plug event for the loop. Called by the udev
// source adapter.
func (l *Loop) SubmitEvent(ev seatmodel.DeviceEvent) {
	l.events <- ev
}

// Submit queues fn to run on the loop goroutine. Called by the bus glue;
// fn must not block.
func (l *Loop) Submit(fn func()) {
	l.calls <- fn
}

// WatchFifo spawns a watcher on an inhibitor's daemon-side fifo end. The
// watcher signals the loop when the client's end closes; the loop then
// frees the inhibitor. Must be called after Run has started.
func (l *Loop) WatchFifo(ctx context.Context, id string, r io.Reader) {
	l.watchers.Go(func() error {
		buf := make([]byte, 64)
		for {
			// Data on the fifo is ignored; only EOF matters.
			if _, err := r.Read(buf); err != nil {
				break
			}
		}
		select {
		case l.fifoEOF <- id:
		case <-ctx.Done():
		}
		return nil
	})
}

// Run drives the loop until ctx is cancelled. GC sweeps run after every
// handled event and on the ticker, so entities flagged inside a handler
// are destroyed between iterations, never during one.
func (l *Loop) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	l.watchers = g

	log := elog.WithComponent("eventloop")
	log.Info().Dur("sweep_interval", l.SweepInterval).Msg("event loop started")

	ticker := time.NewTicker(l.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := g.Wait()
			log.Info().Msg("event loop stopped")
			if err != nil {
				return err
			}
			return ctx.Err()

		case ev := <-l.events:
			if err := l.Mgr.Hotplug.Dispatch(ev); err != nil {
				log.Warn().Err(err).Str("syspath", ev.SysPath).Msg("hot-plug dispatch failed")
			}
			if l.Mgr.Metrics != nil {
				l.Mgr.Metrics.HotplugEvents.WithLabelValues(ev.Action).Inc()
			}
			l.sweep()

		case fn := <-l.calls:
			fn()
			l.sweep()

		case id := <-l.fifoEOF:
			l.Mgr.ReleaseInhibitor(id)
			l.sweep()

		case now := <-ticker.C:
			l.Mgr.CheckIdleAction(now.UnixNano())
			l.sweep()
		}
	}
}

func (l *Loop) sweep() {
	l.Mgr.Reg.Sweep()
	if m := l.Mgr.Metrics; m != nil {
		m.GCSweeps.Inc()
		m.UpdateRegistrySizes(l.Mgr.Reg.Devices, l.Mgr.Reg.Seats, l.Mgr.Reg.Sessions, l.Mgr.Reg.Users)
		m.InhibitorsActive.Set(float64(l.Mgr.Inhibit.Len()))
	}
}
