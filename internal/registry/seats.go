// SPDX-License-Identifier: LGPL-2.1-or-later

package registry

import (
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// SeatTable is the seats registry, keyed by seat id.
type SeatTable struct {
	byID    map[string]*seatmodel.Seat
	maxSize int
}

// NewSeatTable constructs an empty seat table.
func NewSeatTable(maxSize int) *SeatTable {
	return &SeatTable{byID: make(map[string]*seatmodel.Seat), maxSize: maxSize}
}

// Add resolves to the existing seat if id is known; otherwise allocates a
// new, empty seat. Construction parameters (there are none beyond id)
// apply only on creation, per the idempotent-upsert contract shared by all
// four tables.
func (t *SeatTable) Add(id string) (*seatmodel.Seat, error) {
	if s, ok := t.byID[id]; ok {
		return s, nil
	}
	if t.maxSize > 0 && len(t.byID) >= t.maxSize {
		return nil, elogerr.New(elogerr.KindOutOfResources, "seat table full")
	}
	s := &seatmodel.Seat{ID: id}
	t.byID[id] = s
	return s, nil
}

// Get returns the seat with id, or nil if absent.
func (t *SeatTable) Get(id string) *seatmodel.Seat {
	return t.byID[id]
}

// Free removes the seat record unconditionally.
func (t *SeatTable) Free(id string) {
	delete(t.byID, id)
}

// All returns every seat.
func (t *SeatTable) All() []*seatmodel.Seat {
	out := make([]*seatmodel.Seat, 0, len(t.byID))
	for _, s := range t.byID {
		out = append(out, s)
	}
	return out
}

// Len returns the number of tracked seats.
func (t *SeatTable) Len() int { return len(t.byID) }
