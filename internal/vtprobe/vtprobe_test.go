// SPDX-License-Identifier: LGPL-2.1-or-later

package vtprobe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markhindley/elogind/internal/elogerr"
)

type fakeQuerier struct {
	st  VTState
	err error
}

func (f fakeQuerier) QueryState() (VTState, error) { return f.st, f.err }

func TestIsBusyReadsInUseMask(t *testing.T) {
	// VT 2 and VT 3 open, VT 1 free.
	p := &Prober{Querier: fakeQuerier{st: VTState{State: 0b0000_1100}}}

	busy, err := p.IsBusy(3)
	require.NoError(t, err)
	require.True(t, busy)

	busy, err = p.IsBusy(2)
	require.NoError(t, err)
	require.True(t, busy)

	busy, err = p.IsBusy(1)
	require.NoError(t, err)
	require.False(t, busy)
}

func TestIsBusyRejectsInvalidVT(t *testing.T) {
	p := &Prober{Querier: fakeQuerier{}}
	_, err := p.IsBusy(0)
	require.ErrorIs(t, err, elogerr.InvalidArgument)
	_, err = p.IsBusy(16)
	require.ErrorIs(t, err, elogerr.Unsupported)
}

func TestIsBusyPropagatesIoctlError(t *testing.T) {
	p := &Prober{Querier: fakeQuerier{err: errors.New("EPERM")}}
	_, err := p.IsBusy(1)
	require.Error(t, err)
}

func TestFirstFree(t *testing.T) {
	p := &Prober{Querier: fakeQuerier{st: VTState{State: 0b0000_0110}}}
	n, err := p.FirstFree(1)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestFirstFreeAllBusy(t *testing.T) {
	p := &Prober{Querier: fakeQuerier{st: VTState{State: 0xFFFF}}}
	_, err := p.FirstFree(1)
	require.ErrorIs(t, err, elogerr.Busy)
}
