// SPDX-License-Identifier: LGPL-2.1-or-later

package idle

import (
	"testing"

	"github.com/markhindley/elogind/internal/seatmodel"
	"github.com/stretchr/testify/require"
)

type fakeInhibitChecker struct{ blocked bool }

func (f fakeInhibitChecker) IsInhibited(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, forUID *uint32, ignoreInactive bool) (bool, int64) {
	if f.blocked {
		return true, 1
	}
	return false, 0
}

// Idle aggregation across several session reports.
func TestAggregateAllIdlePicksLatest(t *testing.T) {
	idleHint, ts := Aggregate(fakeInhibitChecker{}, []Report{
		{Idle: true, TS: 10},
		{Idle: true, TS: 20},
	})
	require.True(t, idleHint)
	require.Equal(t, int64(20), ts)
}

func TestAggregateOneBusyFlipsAndAdoptsTimestamp(t *testing.T) {
	idleHint, ts := Aggregate(fakeInhibitChecker{}, []Report{
		{Idle: true, TS: 10},
		{Idle: true, TS: 20},
		{Idle: false, TS: 15},
	})
	require.False(t, idleHint)
	require.Equal(t, int64(15), ts)
}

func TestAggregateIdleInhibitedForcesNotIdle(t *testing.T) {
	idleHint, _ := Aggregate(fakeInhibitChecker{blocked: true}, nil)
	require.False(t, idleHint)
}

func TestAggregateBusyPicksEarliest(t *testing.T) {
	idleHint, ts := Aggregate(fakeInhibitChecker{blocked: true}, []Report{
		{Idle: false, TS: 30},
		{Idle: false, TS: 5},
		{Idle: true, TS: 999}, // ignored: busy stays busy
	})
	require.False(t, idleHint)
	require.Equal(t, int64(5), ts)
}

func TestAggregateNoSessionsWhileBlocked(t *testing.T) {
	idleHint, ts := Aggregate(fakeInhibitChecker{blocked: true}, nil)
	require.False(t, idleHint)
	require.Equal(t, int64(0), ts)
}
