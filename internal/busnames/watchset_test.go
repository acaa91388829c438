// SPDX-License-Identifier: LGPL-2.1-or-later

package busnames

import (
	"testing"

	"github.com/markhindley/elogind/internal/seatmodel"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	sessions []*seatmodel.Session
}

func (f *fakeSessions) AllSessions() []*seatmodel.Session { return f.sessions }

// A bus-name drop with an outstanding controller is retained
// until the last session claiming it is released.
func TestDropRetainedWhileSessionClaimsPeer(t *testing.T) {
	s1 := &seatmodel.Session{ID: "c1", Controller: ":1.42"}
	sessions := &fakeSessions{sessions: []*seatmodel.Session{s1}}

	set := New()
	set.Watch(":1.42")

	set.Drop(":1.42", sessions)
	require.True(t, set.Watching(":1.42"), "watch retained while s1 still claims the peer")

	sessions.sessions = nil // s1 released
	set.Drop(":1.42", sessions)
	require.False(t, set.Watching(":1.42"))
}

func TestWatchIsIdempotent(t *testing.T) {
	set := New()
	set.Watch(":1.1")
	set.Watch(":1.1")
	require.Equal(t, 1, set.Len())
}
