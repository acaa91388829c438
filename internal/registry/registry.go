// SPDX-License-Identifier: LGPL-2.1-or-later

package registry

import (
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// Limits bounds each table's size before Add* returns OutOfResources.
// Zero means unlimited.
type Limits struct {
	MaxDevices  int
	MaxSeats    int
	MaxSessions int
	MaxUsers    int
}

// Registries is the sole owner of every tracked entity. All cross-entity
// edits (attach/detach, seat/user membership, active-session pointer) go
// through it so back-pointers are never left dangling.
type Registries struct {
	Devices  *DeviceTable
	Seats    *SeatTable
	Sessions *SessionTable
	Users    *UserTable
	GC       *GCQueue
}

// New constructs an empty set of registries.
func New(limits Limits) *Registries {
	return &Registries{
		Devices:  NewDeviceTable(limits.MaxDevices),
		Seats:    NewSeatTable(limits.MaxSeats),
		Sessions: NewSessionTable(limits.MaxSessions),
		Users:    NewUserTable(limits.MaxUsers),
		GC:       NewGCQueue(),
	}
}

// AllSessions returns every tracked session. It satisfies the
// busnames.SessionLister interface so the bus-name watch set can scan live
// sessions without this package importing busnames.
func (r *Registries) AllSessions() []*seatmodel.Session {
	return r.Sessions.All()
}

// AttachDeviceToSeat links an existing device and seat: the seat gains the
// device in its ordered list, and the device's weak Seat reference is set.
// If the device was already attached elsewhere, it is detached first.
func (r *Registries) AttachDeviceToSeat(device *seatmodel.Device, seat *seatmodel.Seat) {
	if device.Seat != "" && device.Seat != seat.ID {
		r.DetachDevice(device)
	}
	device.Seat = seat.ID
	seat.AttachDevice(device.SysPath)
	seat.GCPending = false
	r.GC.DequeueSeat(seat.ID)
}

// DetachDevice removes device from whatever seat it is attached to and
// clears its weak reference. The seat is enqueued for GC if it becomes
// empty, per the seat lifecycle invariant.
func (r *Registries) DetachDevice(device *seatmodel.Device) {
	if device.Seat == "" {
		return
	}
	if seat := r.Seats.Get(device.Seat); seat != nil {
		seat.DetachDevice(device.SysPath)
		if seat.Empty() {
			seat.GCPending = true
			r.GC.EnqueueSeat(seat.ID)
		}
	}
	device.Seat = ""
}

// BindSessionToSeat records that session is attached to seat: the session
// appears in seat's Sessions list, per the session invariant in the data
// model (if Seat is set, the session appears in that seat's session list).
func (r *Registries) BindSessionToSeat(session *seatmodel.Session, seat *seatmodel.Seat) {
	session.Seat = seat.ID
	seat.AttachSession(session.ID)
	seat.GCPending = false
	r.GC.DequeueSeat(seat.ID)
}

// BindSessionToUser records that session belongs to user.
func (r *Registries) BindSessionToUser(session *seatmodel.Session, user *seatmodel.User) {
	session.UID = user.UID
	user.AddSession(session.ID)
	user.GCPending = false
	r.GC.DequeueUser(user.UID)
}

// SetActiveSession marks sessionID as the active session on seatID,
// maintaining the "at most one active session per seat" invariant by
// construction (there is exactly one Active field to set).
func (r *Registries) SetActiveSession(seatID, sessionID string) {
	if seat := r.Seats.Get(seatID); seat != nil {
		seat.Active = sessionID
	}
}

// CloseSession performs the registry-owned half of session termination:
// removal from the owning user and seat, clearing the seat's
// active pointer if it pointed here, GC-enqueueing the user and seat if
// they become empty, and flagging and enqueueing the session itself for GC.
// It does not touch bus-name watches or the session's state; callers (the
// lifecycle package) handle those.
func (r *Registries) CloseSession(session *seatmodel.Session) {
	log := elog.WithComponent("registry")

	if session.Seat != "" {
		if seat := r.Seats.Get(session.Seat); seat != nil {
			seat.DetachSession(session.ID)
			if seat.Empty() {
				seat.GCPending = true
				r.GC.EnqueueSeat(seat.ID)
			}
		}
	}

	if user := r.Users.Get(session.UID); user != nil {
		user.RemoveSession(session.ID)
		if user.Empty() {
			user.GCPending = true
			r.GC.EnqueueUser(user.UID)
		}
	}

	session.GCPending = true
	r.GC.EnqueueSession(session.ID)

	log.Debug().Str("session", session.ID).Msg("session closed")
}

// Sweep performs one GC pass over every pending entity, in dependency
// order (devices, then seats, then sessions, then users — the ordering is
// not strictly specified by the design, so this iterates to a fixed point
// rather than assuming one pass suffices). An entity is freed only if it
// is still eligible at sweep time; anything re-referenced since being
// enqueued is left alone and its pending flag cleared.
func (r *Registries) Sweep() {
	for {
		progressed := false
		progressed = r.sweepDevices() || progressed
		progressed = r.sweepSeats() || progressed
		progressed = r.sweepSessions() || progressed
		progressed = r.sweepUsers() || progressed
		if !progressed {
			return
		}
	}
}

func (r *Registries) sweepDevices() bool {
	changed := false
	for _, syspath := range r.GC.PendingDevices() {
		d := r.Devices.Get(syspath)
		if d == nil {
			r.GC.DequeueDevice(syspath)
			continue
		}
		if d.Seat == "" {
			r.Devices.Free(syspath)
		}
		r.GC.DequeueDevice(syspath)
		changed = true
	}
	return changed
}

func (r *Registries) sweepSeats() bool {
	changed := false
	for _, id := range r.GC.PendingSeats() {
		s := r.Seats.Get(id)
		if s == nil {
			r.GC.DequeueSeat(id)
			continue
		}
		if s.Empty() {
			r.Seats.Free(id)
			elog.WithComponent("registry").Info().Str("seat", id).Msg("seat garbage collected")
		} else {
			s.GCPending = false
		}
		r.GC.DequeueSeat(id)
		changed = true
	}
	return changed
}

func (r *Registries) sweepSessions() bool {
	changed := false
	for _, id := range r.GC.PendingSessions() {
		s := r.Sessions.Get(id)
		if s == nil {
			r.GC.DequeueSession(id)
			continue
		}
		if s.State.IsTerminal() {
			r.Sessions.Free(id)
		} else {
			s.GCPending = false
		}
		r.GC.DequeueSession(id)
		changed = true
	}
	return changed
}

func (r *Registries) sweepUsers() bool {
	changed := false
	for _, uid := range r.GC.PendingUsers() {
		u := r.Users.Get(uid)
		if u == nil {
			r.GC.DequeueUser(uid)
			continue
		}
		if u.Empty() {
			r.Users.Free(uid)
			elog.WithComponent("registry").Info().Uint32("uid", uid).Msg("user garbage collected")
		} else {
			u.GCPending = false
		}
		r.GC.DequeueUser(uid)
		changed = true
	}
	return changed
}
