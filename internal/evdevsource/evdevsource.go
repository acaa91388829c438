// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

// Package evdevsource reads power-key, lid-switch and dock events from a
// button device's evdev node and turns them into core state updates. It
// is a transport adapter: all state mutation is funneled through the
// event loop's Submit so it lands on the loop goroutine.
package evdevsource

import (
	"context"
	"path/filepath"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// Sink receives decoded button events, already on the loop goroutine.
type Sink interface {
	PowerKeyPressed(sysname string)
	SuspendKeyPressed(sysname string)
	HibernateKeyPressed(sysname string)
	LidStateChanged(sysname string, closed bool)
	DockStateChanged(sysname string, docked bool)
}

// Opener satisfies hotplug.ButtonOpener by opening the sysname's evdev
// node under /dev/input.
type Opener struct {
	// DevDir overrides /dev/input for tests.
	DevDir string
}

func (o *Opener) devDir() string {
	if o.DevDir != "" {
		return o.DevDir
	}
	return "/dev/input"
}

type buttonFd struct {
	dev *evdev.InputDevice
}

func (b *buttonFd) Close() error {
	if b.dev == nil {
		return nil
	}
	err := b.dev.File.Close()
	b.dev = nil
	return err
}

// Open implements hotplug.ButtonOpener.
func (o *Opener) Open(sysname string) (seatmodel.ButtonFd, error) {
	dev, err := evdev.Open(filepath.Join(o.devDir(), sysname))
	if err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "opening evdev node", err)
	}
	return &buttonFd{dev: dev}, nil
}

// Reader pumps one button's evdev events into sink. Submit marshals each
// delivery onto the event-loop goroutine.
type Reader struct {
	Submit func(func())
	Sink   Sink
}

// Run reads events from the button's open device until ctx is done or the
// device goes away (udev remove closes the fd and the read fails).
func (r *Reader) Run(ctx context.Context, sysname string, fd seatmodel.ButtonFd) {
	b, ok := fd.(*buttonFd)
	if !ok || b.dev == nil {
		return
	}
	log := elog.WithComponent("evdev")

	for {
		if ctx.Err() != nil {
			return
		}
		ev, err := b.dev.ReadOne()
		if err != nil {
			log.Debug().Err(err).Str("button", sysname).Msg("evdev read ended")
			return
		}
		r.deliver(sysname, ev)
	}
}

func (r *Reader) deliver(sysname string, ev *evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_KEY:
		if ev.Value != 1 { // key-down only; ignore release and autorepeat
			return
		}
		switch ev.Code {
		case evdev.KEY_POWER:
			r.Submit(func() { r.Sink.PowerKeyPressed(sysname) })
		case evdev.KEY_SLEEP:
			r.Submit(func() { r.Sink.SuspendKeyPressed(sysname) })
		case evdev.KEY_SUSPEND:
			r.Submit(func() { r.Sink.HibernateKeyPressed(sysname) })
		}
	case evdev.EV_SW:
		closed := ev.Value != 0
		switch ev.Code {
		case evdev.SW_LID:
			r.Submit(func() { r.Sink.LidStateChanged(sysname, closed) })
		case evdev.SW_DOCK:
			r.Submit(func() { r.Sink.DockStateChanged(sysname, closed) })
		}
	}
}
