// SPDX-License-Identifier: LGPL-2.1-or-later

package registry

import "fmt"

// CheckInvariants validates the quantified invariants from the testable
// properties section: every device's seat reference is live and mutual,
// every session's user reference is live and mutual, and seat/session
// membership agree in both directions. It returns all violations found
// rather than stopping at the first one, so tests get a complete picture.
func (r *Registries) CheckInvariants() []error {
	var errs []error

	for _, d := range r.Devices.All() {
		if d.Seat == "" {
			continue
		}
		seat := r.Seats.Get(d.Seat)
		if seat == nil {
			errs = append(errs, fmt.Errorf("device %s references missing seat %s", d.SysPath, d.Seat))
			continue
		}
		if !containsString(seat.Devices, d.SysPath) {
			errs = append(errs, fmt.Errorf("device %s not present in seat %s device list", d.SysPath, d.Seat))
		}
	}

	for _, s := range r.Sessions.All() {
		user := r.Users.Get(s.UID)
		if user == nil {
			errs = append(errs, fmt.Errorf("session %s references missing user %d", s.ID, s.UID))
		} else if !containsString(user.Sessions, s.ID) {
			errs = append(errs, fmt.Errorf("session %s not present in user %d session list", s.ID, s.UID))
		}

		if s.Seat == "" {
			continue
		}
		seat := r.Seats.Get(s.Seat)
		if seat == nil {
			errs = append(errs, fmt.Errorf("session %s references missing seat %s", s.ID, s.Seat))
			continue
		}
		if !containsString(seat.Sessions, s.ID) {
			errs = append(errs, fmt.Errorf("session %s not present in seat %s session list", s.ID, s.Seat))
		}
	}

	for _, s := range r.Seats.All() {
		if s.Active == "" {
			continue
		}
		if !containsString(s.Sessions, s.Active) {
			errs = append(errs, fmt.Errorf("seat %s active session %s not in its session list", s.ID, s.Active))
		}
	}

	return errs
}

func containsString(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
