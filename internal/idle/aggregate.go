// SPDX-License-Identifier: LGPL-2.1-or-later

// Package idle folds per-session idle reports together with the inhibitor
// engine's idle-inhibit query into one daemon-wide idle hint.
package idle

import "github.com/markhindley/elogind/internal/seatmodel"

// Report is one session's idle state, as self-reported by the session
// (activity tracking itself is out of scope; this package only folds the
// reports together).
type Report struct {
	Idle bool
	TS   int64
}

// InhibitChecker is the subset of the inhibit engine this package needs.
type InhibitChecker interface {
	IsInhibited(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, forUID *uint32, ignoreInactive bool) (bool, int64)
}

// Aggregate folds reports against the idle-inhibit query into the
// daemon-wide (idle, timestamp) hint, per the four-way rule in the
// idle-hint aggregator design: once idle, the latest session to go idle
// sets the timestamp; the first session to become busy flips the hint and
// adopts its own timestamp; while busy, the earliest still-active session
// sets the timestamp.
func Aggregate(inhibitors InhibitChecker, reports []Report) (bool, int64) {
	blocked, _ := inhibitors.IsInhibited(seatmodel.InhibitIdle, seatmodel.ModeBlock, nil, false)
	idle := !blocked
	var ts int64

	for _, r := range reports {
		switch {
		case idle && r.Idle:
			if r.TS > ts {
				ts = r.TS
			}
		case idle && !r.Idle:
			idle = false
			ts = r.TS
		case !idle && !r.Idle:
			if ts == 0 || r.TS < ts {
				ts = r.TS
			}
		default: // !idle && r.Idle: keep idle=false, ignore this report
		}
	}

	return idle, ts
}
