// SPDX-License-Identifier: LGPL-2.1-or-later

// Package powerops gates power-state transitions: the block/delay
// inhibitor check plus the holdoff grace period after a previous action.
// Executing the transition itself (sysfs writes, the privileged helper)
// stays outside the core.
package powerops

import (
	"time"

	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// InhibitChecker is the slice of the inhibit engine the gate consults.
type InhibitChecker interface {
	IsInhibited(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, forUID *uint32, ignoreInactive bool) (bool, int64)
}

// Config is the gate's tunable subset of the daemon configuration.
type Config struct {
	InhibitDelayMax time.Duration
	HoldoffTimeout  time.Duration
}

// Gate arbitrates power operations.
type Gate struct {
	Inhibit InhibitChecker
	Cfg     Config

	now        func() time.Time
	lastAction time.Time
}

// New constructs a Gate.
func New(inhibit InhibitChecker, cfg Config) *Gate {
	return &Gate{Inhibit: inhibit, Cfg: cfg, now: time.Now}
}

// Decision is the gate's verdict on a power operation.
type Decision struct {
	// Delay is how long the caller must wait for delay inhibitors before
	// proceeding anyway; zero means proceed immediately.
	Delay time.Duration
}

// Check decides whether the operation described by what may proceed.
// Block inhibitors refuse it with Busy; the holdoff window refuses it the
// same way; delay inhibitors grant it with a bounded wait.
func (g *Gate) Check(what seatmodel.InhibitWhat) (Decision, error) {
	if !g.lastAction.IsZero() && g.Cfg.HoldoffTimeout > 0 {
		if elapsed := g.now().Sub(g.lastAction); elapsed < g.Cfg.HoldoffTimeout {
			return Decision{}, elogerr.New(elogerr.KindBusy, "within holdoff window of previous action")
		}
	}

	if blocked, since := g.Inhibit.IsInhibited(what, seatmodel.ModeBlock, nil, false); blocked {
		elog.Audit("powerops", "gate.refused", "power operation blocked by inhibitor", map[string]any{
			"what":  what.String(),
			"since": since,
		})
		return Decision{}, elogerr.New(elogerr.KindBusy, "operation blocked by inhibitor")
	}

	var d Decision
	if delayed, _ := g.Inhibit.IsInhibited(what, seatmodel.ModeDelay, nil, false); delayed {
		d.Delay = g.Cfg.InhibitDelayMax
	}

	elog.Audit("powerops", "gate.granted", "power operation permitted", map[string]any{
		"what":  what.String(),
		"delay": d.Delay.String(),
	})
	return d, nil
}

// NoteAction records that a power/lid/suspend action just ran, starting
// the holdoff window.
func (g *Gate) NoteAction() {
	g.lastAction = g.now()
}

// InHoldoff reports whether the gate is currently inside the grace period.
func (g *Gate) InHoldoff() bool {
	if g.lastAction.IsZero() || g.Cfg.HoldoffTimeout <= 0 {
		return false
	}
	return g.now().Sub(g.lastAction) < g.Cfg.HoldoffTimeout
}
