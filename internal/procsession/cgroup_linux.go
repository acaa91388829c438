// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

package procsession

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ProcCGroupClassifier is the default classifier: it parses
// /proc/<pid>/cgroup and extracts the session id from a
// "session-<id>.scope" path component, the layout the cgroup agent
// maintains for login sessions.
type ProcCGroupClassifier struct {
	// ProcRoot overrides /proc for tests.
	ProcRoot string
}

func (c *ProcCGroupClassifier) procRoot() string {
	if c.ProcRoot != "" {
		return c.ProcRoot
	}
	return "/proc"
}

// SessionIDForPID reads the pid's cgroup file and returns the embedded
// session id, or "" when the process is not in a session scope.
func (c *ProcCGroupClassifier) SessionIDForPID(pid int) (string, error) {
	f, err := os.Open(fmt.Sprintf("%s/%d/cgroup", c.procRoot(), pid))
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		// Format: hierarchy-ID:controller-list:cgroup-path
		parts := strings.SplitN(sc.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}
		if id := sessionFromCGroupPath(parts[2]); id != "" {
			return id, nil
		}
	}
	return "", sc.Err()
}

func sessionFromCGroupPath(path string) string {
	for _, comp := range strings.Split(path, "/") {
		if strings.HasPrefix(comp, "session-") && strings.HasSuffix(comp, ".scope") {
			return strings.TrimSuffix(strings.TrimPrefix(comp, "session-"), ".scope")
		}
	}
	return ""
}
