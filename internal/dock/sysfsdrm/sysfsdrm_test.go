// SPDX-License-Identifier: LGPL-2.1-or-later

package sysfsdrm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTree lays out a fake /sys/class/drm with one card and its
// connectors. Subsystem membership is modeled with symlinks the same way
// the kernel does.
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	drmSub := filepath.Join(root, "bus", "drm")
	pciSub := filepath.Join(root, "bus", "pci")
	require.NoError(t, os.MkdirAll(drmSub, 0o755))
	require.NoError(t, os.MkdirAll(pciSub, 0o755))

	addEntry := func(name, subsystem, status string) {
		dir := filepath.Join(root, name, "device")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.Symlink(filepath.Join(root, "bus", subsystem), filepath.Join(dir, "subsystem")))
		if status != "" {
			require.NoError(t, os.WriteFile(filepath.Join(root, name, "status"), []byte(status+"\n"), 0o644))
		}
	}

	addEntry("card0", "pci", "")
	addEntry("card0-eDP-1", "drm", "connected")
	addEntry("card0-HDMI-A-1", "drm", "disconnected")
	addEntry("card0-DP-1", "drm", "connected")

	return root
}

func TestListConnectorsSkipsCards(t *testing.T) {
	e := &Enumerator{Root: buildTree(t)}
	connectors, err := e.ListConnectors()
	require.NoError(t, err)
	require.Len(t, connectors, 3)

	connected := 0
	for _, c := range connectors {
		require.NotEqual(t, "card0", c.Name, "the card itself must not be enumerated")
		if c.Connected() {
			connected++
		}
	}
	require.Equal(t, 2, connected)
}

func TestListConnectorsMissingRoot(t *testing.T) {
	e := &Enumerator{Root: filepath.Join(t.TempDir(), "nope")}
	_, err := e.ListConnectors()
	require.Error(t, err)
}
