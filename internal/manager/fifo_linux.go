// SPDX-License-Identifier: LGPL-2.1-or-later

//go:build linux

package manager

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/persist"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// FifoMaker creates inhibitor fifos under <Dir>/inhibit. The daemon keeps
// the read end; the write end is handed to the client, whose retention of
// it is the inhibitor's lifetime signal.
type FifoMaker struct {
	Dir string
}

// fifoEnd wraps the daemon-side read end. Close is idempotent.
type fifoEnd struct {
	f      *os.File
	closed bool
}

func (e *fifoEnd) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.f.Close()
}

// Read exposes the underlying descriptor so the event loop can watch for
// EOF.
func (e *fifoEnd) Read(p []byte) (int, error) { return e.f.Read(p) }

// Make implements PipeMaker.
func (fm *FifoMaker) Make(id string) (persist.InhibitorRecord, seatmodel.InhibitorFifo, error) {
	dir := filepath.Join(fm.Dir, "inhibit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persist.InhibitorRecord{}, nil, elogerr.Wrap(elogerr.KindIOError, "creating inhibit directory", err)
	}

	path := filepath.Join(dir, id+".ref")
	if err := unix.Mkfifo(path, 0o600); err != nil && err != unix.EEXIST {
		return persist.InhibitorRecord{}, nil, elogerr.Wrap(elogerr.KindIOError, "creating inhibitor fifo", err)
	}

	// O_NONBLOCK so the open does not wait for the client's end; EOF shows
	// up on the read side once every writer is gone.
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		os.Remove(path)
		return persist.InhibitorRecord{}, nil, elogerr.Wrap(elogerr.KindIOError, "opening inhibitor fifo", err)
	}

	rec := persist.InhibitorRecord{ID: id, FifoPath: path}
	return rec, &fifoEnd{f: os.NewFile(uintptr(fd), path)}, nil
}

// Reopen reattaches the daemon's read end after a restart, using the path
// recorded in the inhibitor's state file.
func (fm *FifoMaker) Reopen(rec persist.InhibitorRecord) (seatmodel.InhibitorFifo, error) {
	fd, err := unix.Open(rec.FifoPath, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, elogerr.Wrap(elogerr.KindIOError, "reopening inhibitor fifo", err)
	}
	return &fifoEnd{f: os.NewFile(uintptr(fd), rec.FifoPath)}, nil
}
