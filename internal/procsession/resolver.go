// SPDX-License-Identifier: LGPL-2.1-or-later

// Package procsession maps a process id to its owning session (and thereby
// user). Classification itself is delegated to an external control-group
// classifier; this package only composes classifier output with the
// session registry.
package procsession

import (
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// CGroupClassifier resolves a pid to the session-id string embedded in its
// control-group path. An empty id with nil error means "no session".
type CGroupClassifier interface {
	SessionIDForPID(pid int) (string, error)
}

// Resolver composes a classifier with the registries.
type Resolver struct {
	Classifier CGroupClassifier
	Reg        *registry.Registries
}

// SessionOf resolves pid to its session. Returns (session, true, nil) on
// success and (nil, false, nil) when the pid has no session — classifier
// failure included, which is deliberately not an error to the caller.
// pid < 1 is the only error case.
func (r *Resolver) SessionOf(pid int) (*seatmodel.Session, bool, error) {
	if pid < 1 {
		return nil, false, elogerr.New(elogerr.KindInvalidArgument, "pid must be >= 1")
	}
	id, err := r.Classifier.SessionIDForPID(pid)
	if err != nil || id == "" {
		return nil, false, nil
	}
	sess := r.Reg.Sessions.Get(id)
	if sess == nil {
		return nil, false, nil
	}
	return sess, true, nil
}

// UserOf resolves pid to the user owning its session.
func (r *Resolver) UserOf(pid int) (*seatmodel.User, bool, error) {
	sess, ok, err := r.SessionOf(pid)
	if err != nil || !ok {
		return nil, false, err
	}
	user := r.Reg.Users.Get(sess.UID)
	if user == nil {
		return nil, false, nil
	}
	return user, true, nil
}

// SessionStateForPID satisfies the inhibit engine's SessionStateResolver:
// the ignore_inactive filter needs only the state of the inhibitor
// holder's session.
func (r *Resolver) SessionStateForPID(pid int) (seatmodel.SessionState, bool) {
	sess, ok, err := r.SessionOf(pid)
	if err != nil || !ok {
		return "", false
	}
	return sess.State, true
}
