// SPDX-License-Identifier: LGPL-2.1-or-later

// Package hotplug consumes pre-classified device events and applies the
// seat-device and button-device attachment rules: upserting registry
// entities, wiring the device<->seat relationship, and refusing to
// materialize seats out of non-master devices.
package hotplug

import (
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// SeatStarter is notified when a seat has gained enough hardware to be
// considered started. Starting a seat (spawning a greeter, etc.) is a bus-
// glue/session-management concern outside the core, so it is only a hook.
type SeatStarter interface {
	StartSeat(seatID string)
}

// ButtonOpener opens the evdev descriptor backing a newly seen button
// device. The underlying fd is an external resource owned by the adapter.
type ButtonOpener interface {
	Open(sysname string) (seatmodel.ButtonFd, error)
}

// Dispatcher routes hot-plug events to seat-device or button-device
// handling and applies the rules from the hot-plug dispatcher design.
type Dispatcher struct {
	Reg     *registry.Registries
	Starter SeatStarter
	Opener  ButtonOpener

	buttons map[string]*seatmodel.Button
}

// New constructs a Dispatcher bound to reg. starter and opener may be nil,
// in which case seat-start notification and evdev opening are skipped
// (useful in tests that only care about registry state).
func New(reg *registry.Registries, starter SeatStarter, opener ButtonOpener) *Dispatcher {
	return &Dispatcher{
		Reg:     reg,
		Starter: starter,
		Opener:  opener,
		buttons: make(map[string]*seatmodel.Button),
	}
}

// Dispatch routes ev to the seat-device or button-device handler based on
// its Kind.
func (d *Dispatcher) Dispatch(ev seatmodel.DeviceEvent) error {
	switch ev.Kind {
	case seatmodel.ButtonDevice:
		return d.handleButtonEvent(ev)
	default:
		return d.handleSeatDeviceEvent(ev)
	}
}

func (d *Dispatcher) handleSeatDeviceEvent(ev seatmodel.DeviceEvent) error {
	log := elog.WithComponent("hotplug")

	if ev.Action == seatmodel.ActionRemove {
		dev := d.Reg.Devices.Get(ev.SysPath)
		if dev == nil {
			return nil
		}
		d.Reg.DetachDevice(dev)
		d.Reg.Devices.Free(ev.SysPath)
		return nil
	}

	seatID := ev.SeatID()
	if !seatmodel.IsValidSeatName(seatID) {
		log.Warn().Str("seat", seatID).Str("syspath", ev.SysPath).Msg("dropping event with invalid seat name")
		return nil
	}

	master := ev.HasTag(seatmodel.TagMasterOfSeat)
	existingSeat := d.Reg.Seats.Get(seatID)
	if existingSeat == nil && !master {
		// Refuse to materialize a seat from a non-master device.
		return nil
	}

	preexistingDevice := d.Reg.Devices.Get(ev.SysPath) != nil

	dev, err := d.Reg.Devices.Add(ev.SysPath, master)
	if err != nil {
		return err
	}

	seat, err := d.Reg.Seats.Add(seatID)
	if err != nil {
		if !preexistingDevice {
			d.Reg.Devices.Free(ev.SysPath)
		}
		return err
	}

	d.Reg.AttachDeviceToSeat(dev, seat)
	if d.Starter != nil {
		d.Starter.StartSeat(seat.ID)
	}
	return nil
}

func (d *Dispatcher) handleButtonEvent(ev seatmodel.DeviceEvent) error {
	if ev.Action == seatmodel.ActionRemove {
		if b, ok := d.buttons[ev.SysName]; ok {
			if b.Fd != nil {
				_ = b.Fd.Close()
			}
			delete(d.buttons, ev.SysName)
		}
		return nil
	}

	b, ok := d.buttons[ev.SysName]
	if !ok {
		b = &seatmodel.Button{SysName: ev.SysName}
		d.buttons[ev.SysName] = b
	}
	b.Seat = ev.SeatID()

	if b.Fd == nil && d.Opener != nil {
		fd, err := d.Opener.Open(ev.SysName)
		if err != nil {
			elog.WithComponent("hotplug").Warn().Err(err).Str("button", ev.SysName).Msg("failed to open evdev fd")
		} else {
			b.Fd = fd
		}
	}
	return nil
}

// Button returns the tracked button device by sysname, or nil if unknown.
func (d *Dispatcher) Button(sysname string) *seatmodel.Button {
	return d.buttons[sysname]
}

// Buttons returns every tracked button device.
func (d *Dispatcher) Buttons() []*seatmodel.Button {
	out := make([]*seatmodel.Button, 0, len(d.buttons))
	for _, b := range d.buttons {
		out = append(out, b)
	}
	return out
}

// SetDocked updates a button's docked flag directly, used by the evdev
// source adapter when it observes an SW_DOCK state change.
func (d *Dispatcher) SetDocked(sysname string, docked bool) {
	if b, ok := d.buttons[sysname]; ok {
		b.Docked = docked
	}
}

// SetLidClosed updates a button's lid-closed flag, used by the evdev
// source adapter when it observes an SW_LID state change.
func (d *Dispatcher) SetLidClosed(sysname string, closed bool) {
	if b, ok := d.buttons[sysname]; ok {
		b.LidClosed = closed
	}
}
