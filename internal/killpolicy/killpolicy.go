// SPDX-License-Identifier: LGPL-2.1-or-later

// Package killpolicy decides whether a user's remaining processes are
// killed at logout. Pure predicate over the configuration, no state.
package killpolicy

// Policy captures the three configuration knobs the predicate consults.
type Policy struct {
	KillUserProcesses bool
	KillOnlyUsers     []string
	KillExcludeUsers  []string
}

// ShallKill applies the rules top to bottom: the master switch, then the
// exclude list, then the only-list (empty only-list means everyone).
func (p Policy) ShallKill(username string) bool {
	if !p.KillUserProcesses {
		return false
	}
	if contains(p.KillExcludeUsers, username) {
		return false
	}
	if len(p.KillOnlyUsers) == 0 {
		return true
	}
	return contains(p.KillOnlyUsers, username)
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
