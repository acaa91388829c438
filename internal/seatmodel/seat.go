// SPDX-License-Identifier: LGPL-2.1-or-later

package seatmodel

// Seat is a collection of hardware (devices) and the sessions logged in on
// it. At most one session is Active at a time.
type Seat struct {
	ID       string
	Devices  []string // sysfs paths, ordered by attach time
	Sessions []string // session ids, ordered by creation time
	Active   string   // session id, empty if no active session

	GCPending bool
}

// Key returns the registry key for s.
func (s *Seat) Key() string { return s.ID }

// Empty reports whether the seat has no devices and no sessions, the
// condition under which it becomes GC-eligible.
func (s *Seat) Empty() bool {
	return len(s.Devices) == 0 && len(s.Sessions) == 0
}

func removeString(list []string, v string) []string {
	out := list[:0:0]
	for _, e := range list {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

// AttachDevice appends syspath to the seat's device list if not already
// present.
func (s *Seat) AttachDevice(syspath string) {
	for _, d := range s.Devices {
		if d == syspath {
			return
		}
	}
	s.Devices = append(s.Devices, syspath)
}

// DetachDevice removes syspath from the seat's device list.
func (s *Seat) DetachDevice(syspath string) {
	s.Devices = removeString(s.Devices, syspath)
}

// AttachSession appends sessionID to the seat's session list if not already
// present.
func (s *Seat) AttachSession(sessionID string) {
	for _, sid := range s.Sessions {
		if sid == sessionID {
			return
		}
	}
	s.Sessions = append(s.Sessions, sessionID)
}

// DetachSession removes sessionID from the seat's session list and clears
// Active if it pointed there.
func (s *Seat) DetachSession(sessionID string) {
	s.Sessions = removeString(s.Sessions, sessionID)
	if s.Active == sessionID {
		s.Active = ""
	}
}
