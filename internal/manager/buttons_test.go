// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/config"
	"github.com/markhindley/elogind/internal/dock"
	"github.com/markhindley/elogind/internal/powerops"
	"github.com/markhindley/elogind/internal/seatmodel"
)

type recordingRunner struct{ ran []config.HandleAction }

func (r *recordingRunner) Run(a config.HandleAction) error {
	r.ran = append(r.ran, a)
	return nil
}

type fixedDRM struct{ connectors []dock.Connector }

func (f fixedDRM) ListConnectors() ([]dock.Connector, error) { return f.connectors, nil }

func newButtonManager(t *testing.T) (*Manager, *recordingRunner) {
	t.Helper()
	m := newManager(t)
	runner := &recordingRunner{}
	m.Actions = runner
	m.Gate = powerops.New(m.Inhibit, powerops.Config{InhibitDelayMax: 5 * time.Second})
	m.DRM = fixedDRM{}

	// Materialize the lid button the events refer to.
	require.NoError(t, m.Hotplug.Dispatch(seatmodel.DeviceEvent{
		Action:  seatmodel.ActionAdd,
		Kind:    seatmodel.ButtonDevice,
		SysName: "event3",
	}))
	return m, runner
}

func TestPowerKeyRunsConfiguredAction(t *testing.T) {
	m, runner := newButtonManager(t)
	m.PowerKeyPressed("event3")
	require.Equal(t, []config.HandleAction{config.ActionPoweroff}, runner.ran)
}

func TestPowerKeyHonorsHandleInhibitor(t *testing.T) {
	m, runner := newButtonManager(t)
	_, _, err := m.CreateInhibitor(seatmodel.InhibitHandlePowerKey, seatmodel.ModeBlock, "de", "handles keys", 0, 1)
	require.NoError(t, err)

	m.PowerKeyPressed("event3")
	require.Empty(t, runner.ran)
}

func TestLidCloseSuspendsWhenUndocked(t *testing.T) {
	m, runner := newButtonManager(t)
	m.LidStateChanged("event3", true)
	require.Equal(t, []config.HandleAction{config.ActionSuspend}, runner.ran)
	require.True(t, m.Hotplug.Button("event3").LidClosed)
}

func TestLidCloseIgnoredWhenDocked(t *testing.T) {
	m, runner := newButtonManager(t)
	m.DockStateChanged("event3", true)
	m.LidStateChanged("event3", true)
	require.Empty(t, runner.ran, "docked lid action defaults to ignore")
}

func TestLidCloseIgnoredWithMultipleDisplays(t *testing.T) {
	m, runner := newButtonManager(t)
	m.DRM = fixedDRM{connectors: []dock.Connector{
		{Name: "card0-eDP-1", Status: "connected"},
		{Name: "card0-DP-1", Status: "connected"},
	}}
	m.LidStateChanged("event3", true)
	require.Empty(t, runner.ran)
}

func TestLidOpenTriggersNothing(t *testing.T) {
	m, runner := newButtonManager(t)
	m.LidStateChanged("event3", false)
	require.Empty(t, runner.ran)
	require.False(t, m.Hotplug.Button("event3").LidClosed)
}

func TestHoldoffSuppressesSecondAction(t *testing.T) {
	m, runner := newButtonManager(t)
	m.Gate = powerops.New(m.Inhibit, powerops.Config{HoldoffTimeout: 30 * time.Second})

	m.PowerKeyPressed("event3")
	m.PowerKeyPressed("event3")
	require.Len(t, runner.ran, 1, "second press lands inside the holdoff window")
}

func TestLockActionLocksActiveSessions(t *testing.T) {
	m, runner := newButtonManager(t)
	cfg := *m.Cfg.Current()
	cfg.HandleLidSwitch = config.ActionLock
	m.Cfg = config.NewHolder(cfg, "")

	_, err := m.AddSession(AddSessionParams{ID: "c1", UID: 1, Seat: "seat0"})
	require.NoError(t, err)
	require.NoError(t, m.ActivateSession("c1"))

	m.LidStateChanged("event3", true)
	require.Empty(t, runner.ran)
	require.True(t, m.Reg.Sessions.Get("c1").LockedHint)
}
