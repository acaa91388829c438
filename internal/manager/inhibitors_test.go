// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/persist"
	"github.com/markhindley/elogind/internal/seatmodel"
)

func TestCreateAndReleaseInhibitor(t *testing.T) {
	m := newManager(t)

	inh, rec, err := m.CreateInhibitor(
		seatmodel.InhibitShutdown|seatmodel.InhibitSleep,
		seatmodel.ModeBlock, "updater", "applying updates", 1000, 4321)
	require.NoError(t, err)
	require.NotEmpty(t, inh.ID)
	require.Equal(t, inh.ID, rec.ID)
	require.Positive(t, inh.Since)

	blocked, since := m.IsInhibited(seatmodel.InhibitShutdown, seatmodel.ModeBlock, nil, false)
	require.True(t, blocked)
	require.Equal(t, inh.Since, since)

	m.ReleaseInhibitor(inh.ID)
	blocked, since = m.IsInhibited(seatmodel.InhibitShutdown, seatmodel.ModeBlock, nil, false)
	require.False(t, blocked)
	require.Zero(t, since)

	// Releasing again (EOF after an explicit release) is a no-op.
	m.ReleaseInhibitor(inh.ID)
}

func TestCreateInhibitorValidation(t *testing.T) {
	m := newManager(t)
	_, _, err := m.CreateInhibitor(0, seatmodel.ModeBlock, "x", "y", 0, 1)
	require.ErrorIs(t, err, elogerr.InvalidArgument)
	_, _, err = m.CreateInhibitor(seatmodel.InhibitSleep, "sideways", "x", "y", 0, 1)
	require.ErrorIs(t, err, elogerr.InvalidArgument)
}

func TestInhibitorPersistsAcrossRestart(t *testing.T) {
	m := newManager(t)
	inh, _, err := m.CreateInhibitor(seatmodel.InhibitSleep, seatmodel.ModeDelay, "player", "playback", 500, 77)
	require.NoError(t, err)

	// Second manager over the same store simulates the restarted daemon.
	m2 := newManager(t)
	m2.Store = m.Store
	m2.RestoreState(func(rec persist.InhibitorRecord) (seatmodel.InhibitorFifo, error) {
		return &nopFifo{}, nil
	})

	restored := m2.Inhibit.Get(inh.ID)
	require.NotNil(t, restored)
	require.Equal(t, seatmodel.InhibitSleep, restored.What)
	require.Equal(t, seatmodel.ModeDelay, restored.Mode)
	require.Equal(t, uint32(500), restored.UID)
}

func TestRestoreStateRebuildsSessionsAndUsers(t *testing.T) {
	m := newManager(t)
	_, err := m.AddSession(AddSessionParams{ID: "c1", UID: 1000, Username: "alice", Seat: "seat0", VT: 2})
	require.NoError(t, err)

	m2 := newManager(t)
	m2.Store = m.Store
	m2.RestoreState(nil)

	sess := m2.Reg.Sessions.Get("c1")
	require.NotNil(t, sess)
	require.Equal(t, "seat0", sess.Seat)
	require.Equal(t, 2, sess.VT)
	require.NotNil(t, m2.Reg.Users.Get(1000))
	require.Empty(t, m2.Reg.CheckInvariants())
}
