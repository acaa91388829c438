// SPDX-License-Identifier: LGPL-2.1-or-later

package registry

import (
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// SessionTable is the sessions registry, keyed by opaque session id.
type SessionTable struct {
	byID    map[string]*seatmodel.Session
	maxSize int
}

// NewSessionTable constructs an empty session table.
func NewSessionTable(maxSize int) *SessionTable {
	return &SessionTable{byID: make(map[string]*seatmodel.Session), maxSize: maxSize}
}

// NewSessionParams carries the construction-only attributes of a session;
// they are applied solely when a new record is allocated. Re-adding an
// existing id ignores them, per the shared idempotent-upsert contract.
type NewSessionParams struct {
	UID   uint32
	Seat  string
	Class seatmodel.SessionClass
	Type  seatmodel.SessionType
}

// Add resolves to the existing session if id is known; otherwise allocates
// one in the opening state using params.
func (t *SessionTable) Add(id string, params NewSessionParams) (*seatmodel.Session, error) {
	if s, ok := t.byID[id]; ok {
		return s, nil
	}
	if t.maxSize > 0 && len(t.byID) >= t.maxSize {
		return nil, elogerr.New(elogerr.KindOutOfResources, "session table full")
	}
	s := &seatmodel.Session{
		ID:    id,
		UID:   params.UID,
		Seat:  params.Seat,
		Class: params.Class,
		Type:  params.Type,
		State: seatmodel.SessionOpening,
	}
	t.byID[id] = s
	return s, nil
}

// Get returns the session with id, or nil if absent.
func (t *SessionTable) Get(id string) *seatmodel.Session {
	return t.byID[id]
}

// Free removes the session record unconditionally.
func (t *SessionTable) Free(id string) {
	delete(t.byID, id)
}

// All returns every session.
func (t *SessionTable) All() []*seatmodel.Session {
	out := make([]*seatmodel.Session, 0, len(t.byID))
	for _, s := range t.byID {
		out = append(out, s)
	}
	return out
}

// Len returns the number of tracked sessions.
func (t *SessionTable) Len() int { return len(t.byID) }
