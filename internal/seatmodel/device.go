// SPDX-License-Identifier: LGPL-2.1-or-later

package seatmodel

// Device is a udev-visible piece of seat hardware, keyed by its sysfs path.
//
// Master is monotonic: once true it is never cleared by a later upsert. Seat
// is a weak reference — the registry that owns the Seat table is the sole
// owner; this field is cleared by the registry on detach, not by callers.
type Device struct {
	SysPath string
	Master  bool
	Seat    string // seat id, empty if unattached
	GCPending bool
}

// Key returns the registry key for d.
func (d *Device) Key() string { return d.SysPath }
