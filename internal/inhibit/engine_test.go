// SPDX-License-Identifier: LGPL-2.1-or-later

package inhibit

import (
	"testing"

	"github.com/markhindley/elogind/internal/seatmodel"
	"github.com/stretchr/testify/require"
)

type closeTracker struct{ closed bool }

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

// Inhibitor arbitration from creation through fd closure.
func TestInhibitorArbitrationLifecycle(t *testing.T) {
	e := New(nil)
	fifo := &closeTracker{}

	_, err := e.Create("i1", seatmodel.InhibitShutdown|seatmodel.InhibitSleep, seatmodel.ModeBlock, "app", "reason", 1000, 42, fifo)
	require.NoError(t, err)

	ok, since := e.IsInhibited(seatmodel.InhibitShutdown, seatmodel.ModeBlock, nil, false)
	require.True(t, ok)
	require.Greater(t, since, int64(0))

	e.Free("i1")
	require.True(t, fifo.closed)

	ok, since = e.IsInhibited(seatmodel.InhibitShutdown, seatmodel.ModeBlock, nil, false)
	require.False(t, ok)
	require.Equal(t, int64(0), since)
}

func TestModeIsExactMatch(t *testing.T) {
	e := New(nil)
	_, err := e.Create("i1", seatmodel.InhibitSleep, seatmodel.ModeDelay, "app", "reason", 1000, 1, nil)
	require.NoError(t, err)

	ok, _ := e.IsInhibited(seatmodel.InhibitSleep, seatmodel.ModeBlock, nil, false)
	require.False(t, ok, "a delay inhibitor must not satisfy a block query")

	ok, _ = e.IsInhibited(seatmodel.InhibitSleep, seatmodel.ModeDelay, nil, false)
	require.True(t, ok)
}

func TestUIDFilter(t *testing.T) {
	e := New(nil)
	_, err := e.Create("i1", seatmodel.InhibitIdle, seatmodel.ModeBlock, "app", "reason", 1000, 1, nil)
	require.NoError(t, err)

	other := uint32(2000)
	ok, _ := e.IsInhibited(seatmodel.InhibitIdle, seatmodel.ModeBlock, &other, false)
	require.False(t, ok)

	mine := uint32(1000)
	ok, _ = e.IsInhibited(seatmodel.InhibitIdle, seatmodel.ModeBlock, &mine, false)
	require.True(t, ok)
}

type fakeResolver struct {
	states map[int]seatmodel.SessionState
}

func (f *fakeResolver) SessionStateForPID(pid int) (seatmodel.SessionState, bool) {
	s, ok := f.states[pid]
	return s, ok
}

func TestIgnoreInactiveFiltersBySessionState(t *testing.T) {
	resolver := &fakeResolver{states: map[int]seatmodel.SessionState{
		1: seatmodel.SessionActive,
		2: seatmodel.SessionClosing,
	}}
	e := New(resolver)
	_, _ = e.Create("active", seatmodel.InhibitIdle, seatmodel.ModeBlock, "a", "r", 1, 1, nil)
	_, _ = e.Create("inactive", seatmodel.InhibitIdle, seatmodel.ModeBlock, "a", "r", 1, 2, nil)

	ok, _ := e.IsInhibited(seatmodel.InhibitIdle, seatmodel.ModeBlock, nil, true)
	require.True(t, ok)

	e.Free("active")
	ok, _ = e.IsInhibited(seatmodel.InhibitIdle, seatmodel.ModeBlock, nil, true)
	require.False(t, ok, "closing session's inhibitor must not count under ignore_inactive")
}

func TestEarliestSinceAmongMatches(t *testing.T) {
	e := New(nil)
	first, err := e.Create("first", seatmodel.InhibitSleep, seatmodel.ModeBlock, "a", "r", 1, 1, nil)
	require.NoError(t, err)
	second, err := e.Create("second", seatmodel.InhibitSleep, seatmodel.ModeBlock, "a", "r", 1, 1, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, first.Since, second.Since)

	_, since := e.IsInhibited(seatmodel.InhibitSleep, seatmodel.ModeBlock, nil, false)
	require.Equal(t, first.Since, since)
}

func TestFreeUnknownIDIsNoop(t *testing.T) {
	e := New(nil)
	e.Free("nope")
	require.Equal(t, 0, e.Len())
}
