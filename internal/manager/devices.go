// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"strings"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// AttachDevice assigns the device at syspath to seatID. Unless override is
// set, a device already attached to a different seat is refused with Busy.
// The seat is created if needed; an explicit attachment counts as a master
// assignment, since the administrator has declared the device seat-defining.
func (m *Manager) AttachDevice(seatID, syspath string, override bool) error {
	if !seatmodel.IsValidSeatName(seatID) {
		return elogerr.New(elogerr.KindInvalidArgument, "invalid seat name")
	}
	if !strings.HasPrefix(syspath, "/sys/") {
		return elogerr.New(elogerr.KindInvalidArgument, "syspath must be under /sys")
	}

	dev := m.Reg.Devices.Get(syspath)
	if dev != nil && dev.Seat != "" && dev.Seat != seatID && !override {
		return elogerr.New(elogerr.KindBusy, "device attached to another seat")
	}

	freshDevice := dev == nil
	dev, err := m.Reg.Devices.Add(syspath, true)
	if err != nil {
		return err
	}
	seat, err := m.Reg.Seats.Add(seatID)
	if err != nil {
		if freshDevice {
			m.Reg.Devices.Free(syspath)
		}
		return err
	}
	m.Reg.AttachDeviceToSeat(dev, seat)
	return nil
}

// FlushDevices drops every explicit device-to-seat assignment outside
// seat0, returning the hardware layout to its udev defaults. Seats left
// empty are enqueued for GC.
func (m *Manager) FlushDevices() {
	for _, dev := range m.Reg.Devices.All() {
		if dev.Seat == "" || dev.Seat == seatmodel.DefaultSeat {
			continue
		}
		m.Reg.DetachDevice(dev)
		dev.GCPending = true
		m.Reg.GC.EnqueueDevice(dev.SysPath)
	}
}
