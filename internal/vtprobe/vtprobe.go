// SPDX-License-Identifier: LGPL-2.1-or-later

// Package vtprobe answers whether a virtual terminal is in use, used to
// pick a free VT when allocating one for a new graphical session.
package vtprobe

import (
	"github.com/markhindley/elogind/internal/elogerr"
)

// VTState is the kernel's VT usage snapshot: the foreground VT and the
// in-use bitmask (bit n set means VT n is open somewhere).
type VTState struct {
	Active uint16
	State  uint16
}

// StateQuerier issues the VT state ioctl. The concrete Linux
// implementation opens /dev/tty1 — not tty0, which aliases the foreground
// VT — and runs VT_GETSTATE on it.
type StateQuerier interface {
	QueryState() (VTState, error)
}

// Prober answers VT-busy queries through a StateQuerier.
type Prober struct {
	Querier StateQuerier
}

// IsBusy reports whether VT n is in use. n must be >= 1.
func (p *Prober) IsBusy(n int) (bool, error) {
	if n < 1 {
		return false, elogerr.New(elogerr.KindInvalidArgument, "vt number must be >= 1")
	}
	if n > 15 {
		// v_state is 16 bits; higher VTs cannot be answered by this probe.
		return false, elogerr.New(elogerr.KindUnsupported, "vt number out of probe range")
	}
	st, err := p.Querier.QueryState()
	if err != nil {
		return false, err
	}
	return st.State&(1<<uint(n)) != 0, nil
}

// FirstFree returns the lowest VT >= from that is not busy, or 0 with a
// Busy error when every probeable VT is taken.
func (p *Prober) FirstFree(from int) (int, error) {
	if from < 1 {
		from = 1
	}
	for n := from; n <= 15; n++ {
		busy, err := p.IsBusy(n)
		if err != nil {
			return 0, err
		}
		if !busy {
			return n, nil
		}
	}
	return 0, elogerr.New(elogerr.KindBusy, "no free vt")
}
