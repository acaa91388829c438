// SPDX-License-Identifier: LGPL-2.1-or-later

// Package inhibit implements the inhibitor arbitration engine: it stores
// inhibitor records and answers "given a what/mode/uid filter, is any
// inhibitor currently active; if so, since when?" Queries never fail once
// the engine is constructed, per the error handling design.
package inhibit

import (
	"time"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// SessionStateResolver resolves the session (by state) a pid belongs to,
// used only by the ignore_inactive filter. Looking pid up to a session is
// the process-to-session resolver's job; this package only consumes
// the result.
type SessionStateResolver interface {
	SessionStateForPID(pid int) (seatmodel.SessionState, bool)
}

// Engine stores inhibitor records keyed by id.
type Engine struct {
	byID     map[string]*seatmodel.Inhibitor
	resolver SessionStateResolver
	now      func() time.Time
}

// New constructs an empty engine. resolver may be nil if ignore_inactive
// queries are never issued.
func New(resolver SessionStateResolver) *Engine {
	return &Engine{
		byID:     make(map[string]*seatmodel.Inhibitor),
		resolver: resolver,
		now:      time.Now,
	}
}

// Create allocates a new inhibitor. id must be unique; callers (the bus
// surface) are responsible for generating it. since is stamped from the
// engine's clock and is always > 0, per the testable-properties invariant.
func (e *Engine) Create(id string, what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, who, why string, uid uint32, pid int, fifo seatmodel.InhibitorFifo) (*seatmodel.Inhibitor, error) {
	if id == "" {
		return nil, elogerr.New(elogerr.KindInvalidArgument, "inhibitor id must not be empty")
	}
	if _, exists := e.byID[id]; exists {
		return nil, elogerr.New(elogerr.KindInvalidArgument, "inhibitor id already in use")
	}
	inh := &seatmodel.Inhibitor{
		ID:    id,
		What:  what,
		Mode:  mode,
		Who:   who,
		Why:   why,
		UID:   uid,
		PID:   pid,
		Since: e.now().UnixNano(),
		Fifo:  fifo,
	}
	e.byID[id] = inh
	return inh, nil
}

// Free releases the inhibitor, closing its fifo if still open. Freeing an
// unknown id is a no-op, matching the fd-EOF-driven release path where the
// event loop may observe EOF after some other path already freed it.
func (e *Engine) Free(id string) {
	inh, ok := e.byID[id]
	if !ok {
		return
	}
	if inh.Fifo != nil {
		_ = inh.Fifo.Close()
	}
	delete(e.byID, id)
}

// Get returns the inhibitor by id, or nil if absent/already freed.
func (e *Engine) Get(id string) *seatmodel.Inhibitor {
	return e.byID[id]
}

// IsInhibited answers whether any inhibitor matches what/mode (and,
// optionally, uid and session-activity), returning the earliest Since
// among matches. forUID is a pointer so "no uid filter" is distinguishable
// from uid 0 (root).
func (e *Engine) IsInhibited(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, forUID *uint32, ignoreInactive bool) (bool, int64) {
	found := false
	var earliest int64

	for _, inh := range e.byID {
		if !inh.What.Has(what) {
			continue
		}
		if inh.Mode != mode {
			continue
		}
		if forUID != nil && inh.UID != *forUID {
			continue
		}
		if ignoreInactive && !e.sessionIsActiveOrOnline(inh.PID) {
			continue
		}
		if !found || inh.Since < earliest {
			earliest = inh.Since
			found = true
		}
	}

	if !found {
		return false, 0
	}
	return true, earliest
}

func (e *Engine) sessionIsActiveOrOnline(pid int) bool {
	if e.resolver == nil {
		return false
	}
	state, ok := e.resolver.SessionStateForPID(pid)
	if !ok {
		return false
	}
	return state == seatmodel.SessionActive || state == seatmodel.SessionOnline
}

// All returns every live inhibitor, for iteration by the orchestration
// surface.
func (e *Engine) All() []*seatmodel.Inhibitor {
	out := make([]*seatmodel.Inhibitor, 0, len(e.byID))
	for _, inh := range e.byID {
		out = append(out, inh)
	}
	return out
}

// Len returns the number of live inhibitors.
func (e *Engine) Len() int { return len(e.byID) }
