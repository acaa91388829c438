// SPDX-License-Identifier: LGPL-2.1-or-later

// Package lifecycle implements the session state machine:
// opening -> active <-> online -> closing -> closed. Transitions are a
// flat table of allowed (from, event) -> to edges, looked up rather than
// branched on.
package lifecycle

import "github.com/markhindley/elogind/internal/seatmodel"

// Event is an externally-driven session lifecycle event (controller
// message, activity report, logout).
type Event int

const (
	EvActivate Event = iota // become the foreground session on its seat
	EvOnline                // move to background but still logged in
	EvClose                 // logout/controller-disconnect requested
	EvClosed                // closing finished, no device handles remain
)

// Transition is a single allowed edge in the session state machine.
type Transition struct {
	From  seatmodel.SessionState
	To    seatmodel.SessionState
	Event Event
}

var table = []Transition{
	{From: seatmodel.SessionOpening, To: seatmodel.SessionActive, Event: EvActivate},
	{From: seatmodel.SessionOpening, To: seatmodel.SessionOnline, Event: EvOnline},
	{From: seatmodel.SessionActive, To: seatmodel.SessionOnline, Event: EvOnline},
	{From: seatmodel.SessionOnline, To: seatmodel.SessionActive, Event: EvActivate},

	{From: seatmodel.SessionOpening, To: seatmodel.SessionClosing, Event: EvClose},
	{From: seatmodel.SessionActive, To: seatmodel.SessionClosing, Event: EvClose},
	{From: seatmodel.SessionOnline, To: seatmodel.SessionClosing, Event: EvClose},

	{From: seatmodel.SessionClosing, To: seatmodel.SessionClosed, Event: EvClosed},
}

// TransitionFor returns the allowed transition for state+event, if any.
func TransitionFor(from seatmodel.SessionState, ev Event) (Transition, bool) {
	for _, tr := range table {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}
