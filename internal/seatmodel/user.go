// SPDX-License-Identifier: LGPL-2.1-or-later

package seatmodel

// User groups sessions under a uid. It is GC-eligible once its session set
// is empty and no runtime state (e.g. linger) keeps it alive.
type User struct {
	UID      uint32
	GID      uint32
	Name     string
	Sessions []string // session ids

	RuntimeDirReady bool
	Linger          bool

	GCPending bool
}

// Key returns the registry key for u.
func (u *User) Key() uint32 { return u.UID }

// Empty reports whether the user has no sessions and isn't lingering.
func (u *User) Empty() bool {
	return len(u.Sessions) == 0 && !u.Linger
}

// AddSession appends sessionID to the user's session list if not already
// present.
func (u *User) AddSession(sessionID string) {
	for _, sid := range u.Sessions {
		if sid == sessionID {
			return
		}
	}
	u.Sessions = append(u.Sessions, sessionID)
}

// RemoveSession removes sessionID from the user's session list.
func (u *User) RemoveSession(sessionID string) {
	u.Sessions = removeString(u.Sessions, sessionID)
}
