// SPDX-License-Identifier: LGPL-2.1-or-later

// Package registry owns the four entity tables (devices, seats, sessions,
// users) and the cross-entity relationship graph between them. The
// registries are the sole owner of every entity; everything else in the
// daemon holds weak references (ids) resolved back through these tables.
//
// The registries run on a single event-loop goroutine and take no locks
// of their own.
package registry

import (
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// DeviceTable is the devices registry, keyed by sysfs path.
type DeviceTable struct {
	byPath  map[string]*seatmodel.Device
	maxSize int // 0 = unlimited
}

// NewDeviceTable constructs an empty device table. maxSize bounds the
// number of distinct devices the table accepts before Add returns
// OutOfResources; 0 means unlimited.
func NewDeviceTable(maxSize int) *DeviceTable {
	return &DeviceTable{byPath: make(map[string]*seatmodel.Device), maxSize: maxSize}
}

// Add resolves to the existing record if syspath is already known;
// otherwise it allocates one. master is OR-folded into the existing
// record's Master flag on both the create and update path, so it is never
// cleared by a later call with master=false.
func (t *DeviceTable) Add(syspath string, master bool) (*seatmodel.Device, error) {
	if d, ok := t.byPath[syspath]; ok {
		d.Master = d.Master || master
		return d, nil
	}
	if t.maxSize > 0 && len(t.byPath) >= t.maxSize {
		return nil, elogerr.New(elogerr.KindOutOfResources, "device table full")
	}
	d := &seatmodel.Device{SysPath: syspath, Master: master}
	t.byPath[syspath] = d
	return d, nil
}

// Get returns the device at syspath, or nil if absent.
func (t *DeviceTable) Get(syspath string) *seatmodel.Device {
	return t.byPath[syspath]
}

// Free removes the device record unconditionally. Callers are responsible
// for detaching it from its seat first.
func (t *DeviceTable) Free(syspath string) {
	delete(t.byPath, syspath)
}

// All returns every device, for invariant checks and iteration.
func (t *DeviceTable) All() []*seatmodel.Device {
	out := make([]*seatmodel.Device, 0, len(t.byPath))
	for _, d := range t.byPath {
		out = append(out, d)
	}
	return out
}

// Len returns the number of tracked devices.
func (t *DeviceTable) Len() int { return len(t.byPath) }
