// SPDX-License-Identifier: LGPL-2.1-or-later

package seatmodel

import "strings"

var whatNames = []struct {
	bit  InhibitWhat
	name string
}{
	{InhibitShutdown, "shutdown"},
	{InhibitSleep, "sleep"},
	{InhibitIdle, "idle"},
	{InhibitHandlePowerKey, "handle-power-key"},
	{InhibitHandleSuspendKey, "handle-suspend-key"},
	{InhibitHandleHibernateKey, "handle-hibernate-key"},
	{InhibitHandleLidSwitch, "handle-lid-switch"},
}

// String renders the bitset as colon-joined category names, the encoding
// used on the bus surface and in state files.
func (w InhibitWhat) String() string {
	var parts []string
	for _, e := range whatNames {
		if w&e.bit != 0 {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, ":")
}

// ParseInhibitWhat parses a colon-joined category list. Unknown names make
// the whole string invalid.
func ParseInhibitWhat(s string) (InhibitWhat, bool) {
	if s == "" {
		return 0, false
	}
	var w InhibitWhat
	for _, part := range strings.Split(s, ":") {
		matched := false
		for _, e := range whatNames {
			if e.name == part {
				w |= e.bit
				matched = true
				break
			}
		}
		if !matched {
			return 0, false
		}
	}
	return w, true
}
