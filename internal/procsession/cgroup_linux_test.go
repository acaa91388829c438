// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

package procsession

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcCGroupClassifierParsesSessionScope(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "42"), 0o755))
	content := "0::/user.slice/user-1000.slice/session-c3.scope\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "42", "cgroup"), []byte(content), 0o644))

	c := &ProcCGroupClassifier{ProcRoot: root}
	id, err := c.SessionIDForPID(42)
	require.NoError(t, err)
	require.Equal(t, "c3", id)
}

func TestProcCGroupClassifierNoSessionScope(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "7"), 0o755))
	content := "0::/system.slice/cron.service\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "7", "cgroup"), []byte(content), 0o644))

	c := &ProcCGroupClassifier{ProcRoot: root}
	id, err := c.SessionIDForPID(7)
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestSessionFromCGroupPath(t *testing.T) {
	require.Equal(t, "12", sessionFromCGroupPath("/user.slice/user-0.slice/session-12.scope"))
	require.Empty(t, sessionFromCGroupPath("/user.slice/user-0.slice"))
}
