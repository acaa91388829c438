// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/elogerr"
)

func TestAttachDeviceCreatesSeat(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.AttachDevice("seat1", "/sys/devices/card0", false))

	dev := m.Reg.Devices.Get("/sys/devices/card0")
	require.NotNil(t, dev)
	require.True(t, dev.Master)
	require.Equal(t, "seat1", dev.Seat)
	require.Empty(t, m.Reg.CheckInvariants())
}

func TestAttachDeviceRefusesSteal(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.AttachDevice("seat1", "/sys/devices/card0", false))

	err := m.AttachDevice("seat2", "/sys/devices/card0", false)
	require.ErrorIs(t, err, elogerr.Busy)

	require.NoError(t, m.AttachDevice("seat2", "/sys/devices/card0", true))
	require.Equal(t, "seat2", m.Reg.Devices.Get("/sys/devices/card0").Seat)
	require.NotContains(t, m.Reg.Seats.Get("seat1").Devices, "/sys/devices/card0")
	require.Empty(t, m.Reg.CheckInvariants())
}

func TestAttachDeviceValidation(t *testing.T) {
	m := newManager(t)
	require.ErrorIs(t, m.AttachDevice("0bad", "/sys/devices/card0", false), elogerr.InvalidArgument)
	require.ErrorIs(t, m.AttachDevice("seat1", "relative/path", false), elogerr.InvalidArgument)
}

func TestFlushDevicesResetsNonDefaultSeats(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.AttachDevice("seat1", "/sys/devices/card1", false))
	require.NoError(t, m.AttachDevice("seat0", "/sys/devices/card0", false))

	m.FlushDevices()
	m.Reg.Sweep()

	require.Nil(t, m.Reg.Devices.Get("/sys/devices/card1"))
	require.Nil(t, m.Reg.Seats.Get("seat1"), "emptied seat is collected")
	require.NotNil(t, m.Reg.Devices.Get("/sys/devices/card0"), "seat0 attachments survive a flush")
}
