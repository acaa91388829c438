// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

// Package udevsource feeds the hot-plug dispatcher from a netlink uevent
// socket, pure Go and cgo-free. It classifies raw uevents into the
// pre-classified DeviceEvent shape the core consumes: devices tagged
// "seat" become seat-device events, devices tagged "power-switch" become
// button-device events, everything else is dropped here.
package udevsource

import (
	"bytes"
	"context"
	"path"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

const (
	tagSeat        = "seat"
	tagPowerSwitch = "power-switch"
)

// Monitor listens on the kernel uevent broadcast group.
type Monitor struct {
	fd int
}

// NewMonitor opens and binds the netlink socket. The receive buffer is
// enlarged so event bursts during coldplug do not drop messages.
func NewMonitor() (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "creating uevent socket", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUFFORCE, 8*1024*1024)

	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 2} // udev monitor group
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, elogerr.Wrap(elogerr.KindIOError, "binding uevent socket", err)
	}
	return &Monitor{fd: fd}, nil
}

// Close releases the socket. Idempotent.
func (m *Monitor) Close() error {
	if m.fd < 0 {
		return nil
	}
	err := unix.Close(m.fd)
	m.fd = -1
	return err
}

// Run receives uevents and submits the classifiable ones until ctx is
// done. submit is the event loop's SubmitEvent.
func (m *Monitor) Run(ctx context.Context, submit func(seatmodel.DeviceEvent)) error {
	log := elog.WithComponent("udev")
	buf := make([]byte, 8192)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A read timeout keeps the loop responsive to cancellation.
		tv := unix.Timeval{Sec: 1}
		if err := unix.SetsockoptTimeval(m.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return elogerr.Wrap(elogerr.KindIOError, "setting uevent socket timeout", err)
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return elogerr.Wrap(elogerr.KindIOError, "reading uevent socket", err)
		}

		ev, ok := Classify(ParseUEvent(buf[:n]))
		if !ok {
			continue
		}
		log.Debug().Str("action", ev.Action).Str("syspath", ev.SysPath).Msg("uevent classified")
		submit(ev)
	}
}

// RawEvent is a parsed uevent before classification.
type RawEvent struct {
	Action  string
	DevPath string
	Env     map[string]string
}

// ParseUEvent decodes the NUL-separated "action@devpath\0KEY=VALUE..."
// payload.
func ParseUEvent(data []byte) RawEvent {
	raw := RawEvent{Env: make(map[string]string)}

	fields := bytes.Split(data, []byte{0})
	if len(fields) == 0 {
		return raw
	}

	if header := string(fields[0]); strings.Contains(header, "@") {
		parts := strings.SplitN(header, "@", 2)
		raw.Action = parts[0]
		raw.DevPath = parts[1]
		fields = fields[1:]
	}

	for _, f := range fields {
		if len(f) == 0 {
			continue
		}
		k, v, ok := strings.Cut(string(f), "=")
		if !ok {
			continue
		}
		raw.Env[k] = v
		switch k {
		case "ACTION":
			raw.Action = v
		case "DEVPATH":
			raw.DevPath = v
		}
	}
	return raw
}

// Classify turns a raw uevent into the dispatcher's DeviceEvent. Only
// seat-tagged and power-switch-tagged devices are of interest.
func Classify(raw RawEvent) (seatmodel.DeviceEvent, bool) {
	if raw.Action == "" || raw.DevPath == "" {
		return seatmodel.DeviceEvent{}, false
	}

	tags := parseTags(raw.Env["TAGS"])
	_, isSeat := tags[tagSeat]
	_, isButton := tags[tagPowerSwitch]
	if !isSeat && !isButton {
		return seatmodel.DeviceEvent{}, false
	}

	ev := seatmodel.DeviceEvent{
		Action:     raw.Action,
		SysPath:    "/sys" + raw.DevPath,
		SysName:    path.Base(raw.DevPath),
		Properties: map[string]string{},
		Tags:       tags,
	}
	if v := raw.Env["ID_SEAT"]; v != "" {
		ev.Properties[seatmodel.PropertyIDSeat] = v
	}
	if isButton {
		ev.Kind = seatmodel.ButtonDevice
	} else {
		ev.Kind = seatmodel.SeatDevice
	}
	return ev, true
}

// parseTags splits udev's ":tag1:tag2:" encoding into a set.
func parseTags(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Split(s, ":") {
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}
