// SPDX-License-Identifier: LGPL-2.1-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elogind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.Equal(t, ActionSuspend, cfg.HandleLidSwitch)
	require.Equal(t, 5, cfg.InhibitDelayMaxSec)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
killUserProcesses: true
killExcludeUsers: [root]
killOnlyUsers: [alice]
inhibitDelayMaxSec: 8
handleLidSwitch: ignore
holdoffTimeoutSec: 10
suspendState: freeze
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.KillUserProcesses)
	require.Equal(t, []string{"root"}, cfg.KillExcludeUsers)
	require.Equal(t, []string{"alice"}, cfg.KillOnlyUsers)
	require.Equal(t, 8, cfg.InhibitDelayMaxSec)
	require.Equal(t, ActionIgnore, cfg.HandleLidSwitch)
	require.Equal(t, 10, cfg.HoldoffTimeoutSec)
	require.Equal(t, "freeze", cfg.SuspendState)

	// Untouched fields keep their defaults.
	require.Equal(t, ActionPoweroff, cfg.HandlePowerKey)
	require.Equal(t, "disk", cfg.HibernateState)
}

func TestLoadRejectsUnknownAction(t *testing.T) {
	path := writeConfig(t, "handlePowerKey: explode\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "killUserProcesses: [not a bool\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	cfg := Defaults()
	env := map[string]string{
		"ELOGIND_KILL_USER_PROCESSES":   "true",
		"ELOGIND_KILL_ONLY_USERS":       "alice, bob",
		"ELOGIND_INHIBIT_DELAY_MAX_SEC": "2",
		"ELOGIND_HANDLE_LID_SWITCH":     "lock",
	}
	mergeEnv(&cfg, func(k string) string { return env[k] })

	require.True(t, cfg.KillUserProcesses)
	require.Equal(t, []string{"alice", "bob"}, cfg.KillOnlyUsers)
	require.Equal(t, 2, cfg.InhibitDelayMaxSec)
	require.Equal(t, ActionLock, cfg.HandleLidSwitch)
}

func TestValidateRejectsNegativeDurations(t *testing.T) {
	cfg := Defaults()
	cfg.InhibitDelayMaxSec = -1
	require.Error(t, cfg.Validate())
}

func TestHolderReload(t *testing.T) {
	path := writeConfig(t, "holdoffTimeoutSec: 10\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	h := NewHolder(cfg, path)
	require.Equal(t, 10, h.Current().HoldoffTimeoutSec)

	require.NoError(t, os.WriteFile(path, []byte("holdoffTimeoutSec: 20\n"), 0o644))
	require.NoError(t, h.Reload())
	require.Equal(t, 20, h.Current().HoldoffTimeoutSec)
}

func TestHolderReloadKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, "holdoffTimeoutSec: 10\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	h := NewHolder(cfg, path)
	require.NoError(t, os.WriteFile(path, []byte("handlePowerKey: explode\n"), 0o644))
	require.Error(t, h.Reload())
	require.Equal(t, 10, h.Current().HoldoffTimeoutSec)
}
