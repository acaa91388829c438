// SPDX-License-Identifier: LGPL-2.1-or-later

package seatmodel

// SessionState is the login-occurrence lifecycle: opening -> active <-> online
// -> closing -> closed.
type SessionState string

const (
	SessionOpening SessionState = "opening"
	SessionActive  SessionState = "active"
	SessionOnline  SessionState = "online"
	SessionClosing SessionState = "closing"
	SessionClosed  SessionState = "closed"
)

// IsTerminal reports whether s is the final state of the session lifecycle.
func (s SessionState) IsTerminal() bool { return s == SessionClosed }

// SessionClass distinguishes interactive logins from service/greeter/lock
// sessions. It is recorded and persisted; the kill policy and the idle
// aggregation do not consult it.
type SessionClass string

const (
	ClassUser       SessionClass = "user"
	ClassGreeter    SessionClass = "greeter"
	ClassLockScreen SessionClass = "lock-screen"
	ClassManager    SessionClass = "manager"
)

// SessionType describes the kind of login surface.
type SessionType string

const (
	TypeGraphical   SessionType = "graphical"
	TypeTTY         SessionType = "tty"
	TypeUnspecified SessionType = "unspecified"
)

// Session is one login occurrence. User and, when present, Seat are weak
// references resolved through the owning registry.
type Session struct {
	ID      string
	UID     uint32
	Seat    string // seat id, empty if not seat-bound
	State   SessionState
	Class   SessionClass
	Type    SessionType

	Controller string // bus-peer name controlling seat devices, optional
	VT         int    // TTY/VT number, 0 if none

	IdleHint bool
	IdleTS   int64 // monotonic

	LockedHint bool

	GCPending bool
}

// Key returns the registry key for s.
func (s *Session) Key() string { return s.ID }
