// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

package vtprobe

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/markhindley/elogind/internal/elogerr"
)

const vtGetState = 0x5603 // VT_GETSTATE

// vtStat mirrors the kernel's struct vt_stat.
type vtStat struct {
	VActive uint16
	VSignal uint16
	VState  uint16
}

// TTYQuerier is the Linux StateQuerier: it opens the first VT device with
// O_RDWR|O_NOCTTY|O_CLOEXEC and issues VT_GETSTATE. /dev/tty0 is avoided
// because it aliases whatever VT is currently in the foreground.
type TTYQuerier struct {
	// Path overrides /dev/tty1 for tests.
	Path string
}

func (q *TTYQuerier) path() string {
	if q.Path != "" {
		return q.Path
	}
	return "/dev/tty1"
}

// QueryState implements StateQuerier.
func (q *TTYQuerier) QueryState() (VTState, error) {
	fd, err := unix.Open(q.path(), unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return VTState{}, elogerr.Wrap(elogerr.KindIOError, "opening vt device", err)
	}
	defer unix.Close(fd)

	var st vtStat
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), vtGetState, uintptr(unsafe.Pointer(&st))); errno != 0 {
		return VTState{}, elogerr.Wrap(elogerr.KindIOError, "VT_GETSTATE", errno)
	}
	return VTState{Active: st.VActive, State: st.VState}, nil
}
