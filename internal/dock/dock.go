// SPDX-License-Identifier: LGPL-2.1-or-later

// Package dock derives the docked-or-multiple-displays boolean that
// modulates lid-switch policy: true if any button reports docked, or if
// more than one DRM connector is connected.
package dock

import (
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// Connector is one DRM connector as enumerated from sysfs.
type Connector struct {
	Name   string
	Status string // sysattr "status"; anything but "disconnected" counts as connected
}

// Connected reports whether the connector counts as connected. A
// connector counts unless its status is exactly "disconnected" — unknown
// statuses count as connected.
func (c Connector) Connected() bool {
	return c.Status != "disconnected"
}

// DRMEnumerator lists the host's DRM connectors. The sysfs walk lives in
// the sysfsdrm sub-package so this heuristic stays testable without a
// kernel.
type DRMEnumerator interface {
	ListConnectors() ([]Connector, error)
}

// ButtonLister supplies the currently tracked button devices.
type ButtonLister interface {
	Buttons() []*seatmodel.Button
}

// IsDockedOrMultipleDisplays reports whether the machine is docked or
// driving more than one display. Enumeration failure is logged and treated
// as "not multiple displays"; the docked answer from buttons is unaffected.
func IsDockedOrMultipleDisplays(buttons ButtonLister, drm DRMEnumerator) bool {
	if buttons != nil {
		for _, b := range buttons.Buttons() {
			if b.Docked {
				return true
			}
		}
	}

	if drm == nil {
		return false
	}
	connectors, err := drm.ListConnectors()
	if err != nil {
		elog.WithComponent("dock").Warn().Err(err).Msg("DRM connector enumeration failed, assuming single display")
		return false
	}

	connected := 0
	for _, c := range connectors {
		if c.Connected() {
			connected++
		}
	}
	return connected > 1
}
