// SPDX-License-Identifier: LGPL-2.1-or-later

// Package busnames tracks which bus peers the daemon is watching for
// disconnect, so a controller's departure can release the sessions it
// controlled. A watch is dropped only when no session still claims the
// peer as its controller, since one peer may control several sessions.
package busnames

import "github.com/markhindley/elogind/internal/seatmodel"

// SessionLister is the slice of registry.Registries this package needs: a
// way to enumerate live sessions without importing the registry package
// directly (it would otherwise be the only cross-dependency in this
// direction, and registry has no need to know about bus names).
type SessionLister interface {
	AllSessions() []*seatmodel.Session
}

// Set is an idempotent membership set of watched bus-peer names.
type Set struct {
	names map[string]struct{}
}

// New constructs an empty watch set.
func New() *Set {
	return &Set{names: make(map[string]struct{})}
}

// Watch inserts name into the set. Idempotent.
func (s *Set) Watch(name string) {
	s.names[name] = struct{}{}
}

// Watching reports whether name is currently watched.
func (s *Set) Watching(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Drop removes name from the set unless some live session still lists it
// as its controller, in which case the watch is retained. Closed sessions
// still awaiting GC do not count.
func (s *Set) Drop(name string, sessions SessionLister) {
	for _, sess := range sessions.AllSessions() {
		if sess.State.IsTerminal() {
			continue
		}
		if sess.Controller == name {
			return
		}
	}
	delete(s.names, name)
}

// Len returns the number of watched peers.
func (s *Set) Len() int { return len(s.names) }
