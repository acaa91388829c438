// SPDX-License-Identifier: LGPL-2.1-or-later

package lifecycle

import (
	"github.com/markhindley/elogind/internal/busnames"
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// Machine drives session transitions and owns the side effects attached to
// reaching the closed state: registry cleanup, seat active-pointer
// clearing and user GC (delegated to registry.CloseSession), and releasing
// the session's bus-name watch if no other session still claims it.
type Machine struct {
	Reg      *registry.Registries
	BusNames *busnames.Set
}

// New constructs a Machine bound to reg and busNames.
func New(reg *registry.Registries, busNames *busnames.Set) *Machine {
	return &Machine{Reg: reg, BusNames: busNames}
}

// Fire applies ev to session, enforcing the transition table. A session
// already in a terminal state rejects every event with InvalidArgument:
// closed is final.
func (m *Machine) Fire(session *seatmodel.Session, ev Event) error {
	if session.State.IsTerminal() {
		return elogerr.New(elogerr.KindInvalidArgument, "session is already closed")
	}

	tr, ok := TransitionFor(session.State, ev)
	if !ok {
		return elogerr.New(elogerr.KindInvalidArgument, "illegal session transition")
	}

	session.State = tr.To

	if tr.To == seatmodel.SessionClosed {
		m.Reg.CloseSession(session)
		if m.BusNames != nil && session.Controller != "" {
			m.BusNames.Drop(session.Controller, m.Reg)
		}
		elog.WithComponent("lifecycle").Info().Str("session", session.ID).Msg("session reached closed state")
	}

	return nil
}
