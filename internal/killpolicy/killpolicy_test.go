// SPDX-License-Identifier: LGPL-2.1-or-later

package killpolicy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShallKillMatrix(t *testing.T) {
	p := Policy{
		KillUserProcesses: true,
		KillExcludeUsers:  []string{"root"},
		KillOnlyUsers:     []string{"alice"},
	}

	assert.False(t, p.ShallKill("root"), "excluded user is never killed")
	assert.True(t, p.ShallKill("alice"), "only-listed user is killed")
	assert.False(t, p.ShallKill("bob"), "non-listed user is exempt when only-list is non-empty")
}

func TestShallKillMasterSwitchOff(t *testing.T) {
	p := Policy{KillUserProcesses: false, KillOnlyUsers: []string{"alice"}}
	assert.False(t, p.ShallKill("alice"))
}

func TestShallKillEmptyOnlyListKillsEveryone(t *testing.T) {
	p := Policy{KillUserProcesses: true, KillExcludeUsers: []string{"root"}}
	assert.True(t, p.ShallKill("alice"))
	assert.True(t, p.ShallKill("bob"))
	assert.False(t, p.ShallKill("root"))
}

func TestExcludeBeatsOnly(t *testing.T) {
	p := Policy{
		KillUserProcesses: true,
		KillOnlyUsers:     []string{"carol"},
		KillExcludeUsers:  []string{"carol"},
	}
	assert.False(t, p.ShallKill("carol"))
}
