// SPDX-License-Identifier: LGPL-2.1-or-later

// Package manager is the orchestration surface the bus glue calls into:
// session registration and lifecycle, inhibitor creation, device
// attachment, and the lookup/iteration operations. It composes the
// registries, the inhibitor engine, the bus-name watch set and the
// persistence store; the bus transport itself stays outside.
package manager

import (
	"github.com/google/uuid"

	"github.com/markhindley/elogind/internal/busnames"
	"github.com/markhindley/elogind/internal/config"
	"github.com/markhindley/elogind/internal/dock"
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/hotplug"
	"github.com/markhindley/elogind/internal/inhibit"
	"github.com/markhindley/elogind/internal/killpolicy"
	"github.com/markhindley/elogind/internal/lifecycle"
	"github.com/markhindley/elogind/internal/metrics"
	"github.com/markhindley/elogind/internal/persist"
	"github.com/markhindley/elogind/internal/powerops"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
	"github.com/markhindley/elogind/internal/vtprobe"
)

// PipeMaker creates the fifo backing an inhibitor. Make returns the
// inhibitor's record, whose FifoPath names the fifo the client opens, and
// the daemon's end of that fifo, which the daemon watches for EOF.
type PipeMaker interface {
	Make(id string) (persist.InhibitorRecord, seatmodel.InhibitorFifo, error)
}

// Manager wires the core components together.
type Manager struct {
	Cfg      *config.Holder
	Reg      *registry.Registries
	Inhibit  *inhibit.Engine
	BusNames *busnames.Set
	Machine  *lifecycle.Machine
	Hotplug  *hotplug.Dispatcher
	Store    *persist.Store
	Metrics  *metrics.Metrics
	Pipes    PipeMaker

	// Optional collaborators, wired by the embedding binary.
	Gate    *powerops.Gate     // power-op arbitration; nil disables power actions (the lock action still runs)
	DRM     dock.DRMEnumerator // display enumeration for the lid heuristic
	Actions ActionRunner       // executes the chosen power action
	VT      *vtprobe.Prober    // free-VT allocation for graphical sessions

	// NewID generates inhibitor ids; defaults to uuid.NewString.
	NewID func() string
}

// ActionRunner executes a power action. The sleep/poweroff mechanics are
// external collaborators; the core only decides which action runs.
type ActionRunner interface {
	Run(action config.HandleAction) error
}

// New assembles a Manager. store, m and pipes may be nil for callers that
// do not persist, meter, or grant inhibitors (tests, mostly).
func New(cfg *config.Holder, reg *registry.Registries, eng *inhibit.Engine, names *busnames.Set, disp *hotplug.Dispatcher, store *persist.Store, m *metrics.Metrics, pipes PipeMaker) *Manager {
	return &Manager{
		Cfg:      cfg,
		Reg:      reg,
		Inhibit:  eng,
		BusNames: names,
		Machine:  lifecycle.New(reg, names),
		Hotplug:  disp,
		Store:    store,
		Metrics:  m,
		Pipes:    pipes,
		NewID:    uuid.NewString,
	}
}

// AddSessionParams carries everything the external authenticator hands
// over when registering a login.
type AddSessionParams struct {
	ID       string
	UID      uint32
	GID      uint32
	Username string
	Seat     string
	VT       int
	Leader   int
	Class    seatmodel.SessionClass
	Type     seatmodel.SessionType
}

// AddSession registers a session, creating its user and binding it to its
// seat as needed. Idempotent on re-registration of a known id: the
// existing session is returned untouched.
func (m *Manager) AddSession(p AddSessionParams) (*seatmodel.Session, error) {
	if p.ID == "" {
		return nil, elogerr.New(elogerr.KindInvalidArgument, "session id must not be empty")
	}
	if p.Seat != "" && !seatmodel.IsValidSeatName(p.Seat) {
		return nil, elogerr.New(elogerr.KindInvalidArgument, "invalid seat name")
	}

	if existing := m.Reg.Sessions.Get(p.ID); existing != nil {
		return existing, nil
	}

	user, err := m.Reg.Users.Add(p.UID, registry.NewUserParams{GID: p.GID, Name: p.Username})
	if err != nil {
		return nil, err
	}

	sess, err := m.Reg.Sessions.Add(p.ID, registry.NewSessionParams{
		UID:   p.UID,
		Class: p.Class,
		Type:  p.Type,
	})
	if err != nil {
		if user.Empty() {
			m.Reg.Users.Free(p.UID)
		}
		return nil, err
	}
	sess.VT = p.VT
	if sess.VT == 0 && p.Type == seatmodel.TypeGraphical && m.VT != nil {
		if n, err := m.VT.FirstFree(1); err == nil {
			sess.VT = n
		} else {
			elog.WithComponent("manager").Warn().Err(err).Str("session", p.ID).Msg("no free vt for graphical session")
		}
	}
	m.Reg.BindSessionToUser(sess, user)

	if p.Seat != "" {
		seat, err := m.Reg.Seats.Add(p.Seat)
		if err != nil {
			m.Reg.CloseSession(sess)
			m.Reg.Sessions.Free(p.ID)
			return nil, err
		}
		m.Reg.BindSessionToSeat(sess, seat)
	}

	m.saveSession(sess, p.Leader)
	m.saveUser(user)

	elog.WithComponent("manager").Info().
		Str("session", sess.ID).
		Uint32("uid", p.UID).
		Str("seat", p.Seat).
		Msg("session registered")
	return sess, nil
}

// ReleaseSession closes the session and schedules it for GC. Releasing an
// unknown id returns NotFound.
func (m *Manager) ReleaseSession(id string) error {
	sess := m.Reg.Sessions.Get(id)
	if sess == nil {
		return elogerr.New(elogerr.KindNotFound, "no such session")
	}
	if !sess.State.IsTerminal() {
		if sess.State != seatmodel.SessionClosing {
			if err := m.Machine.Fire(sess, lifecycle.EvClose); err != nil {
				return err
			}
		}
		if err := m.Machine.Fire(sess, lifecycle.EvClosed); err != nil {
			return err
		}
	}
	if m.Store != nil {
		m.Store.DropSession(id)
	}
	return nil
}

// ActivateSession makes the session the active one on its seat.
func (m *Manager) ActivateSession(id string) error {
	sess := m.Reg.Sessions.Get(id)
	if sess == nil {
		return elogerr.New(elogerr.KindNotFound, "no such session")
	}
	if sess.Seat == "" {
		return elogerr.New(elogerr.KindInvalidArgument, "session has no seat")
	}
	if sess.State != seatmodel.SessionActive {
		if err := m.Machine.Fire(sess, lifecycle.EvActivate); err != nil {
			return err
		}
	}

	// Demote the previously active session on this seat.
	if seat := m.Reg.Seats.Get(sess.Seat); seat != nil {
		if seat.Active != "" && seat.Active != id {
			if prev := m.Reg.Sessions.Get(seat.Active); prev != nil && prev.State == seatmodel.SessionActive {
				_ = m.Machine.Fire(prev, lifecycle.EvOnline)
			}
		}
	}
	m.Reg.SetActiveSession(sess.Seat, id)
	return nil
}

// LockSession asks the session's controller to lock its screen. The core
// only records the hint; delivering the signal is bus-glue work.
func (m *Manager) LockSession(id string) error {
	return m.setLocked(id, true)
}

// UnlockSession clears the locked hint.
func (m *Manager) UnlockSession(id string) error {
	return m.setLocked(id, false)
}

func (m *Manager) setLocked(id string, locked bool) error {
	sess := m.Reg.Sessions.Get(id)
	if sess == nil {
		return elogerr.New(elogerr.KindNotFound, "no such session")
	}
	sess.LockedHint = locked
	elog.Audit("manager", "session.lock", "session lock hint changed", map[string]any{
		"session": id,
		"locked":  locked,
	})
	return nil
}

// TakeControl records name as the session's controller bus peer and
// watches the peer for disconnect.
func (m *Manager) TakeControl(id, name string) error {
	sess := m.Reg.Sessions.Get(id)
	if sess == nil {
		return elogerr.New(elogerr.KindNotFound, "no such session")
	}
	if sess.Controller != "" && sess.Controller != name {
		return elogerr.New(elogerr.KindBusy, "session already controlled")
	}
	sess.Controller = name
	m.BusNames.Watch(name)
	return nil
}

// ControllerVanished handles a bus-peer disconnect: every session the
// peer controlled is released, then the watch is dropped.
func (m *Manager) ControllerVanished(name string) {
	for _, sess := range m.Reg.Sessions.All() {
		if sess.Controller == name {
			sess.Controller = ""
			_ = m.ReleaseSession(sess.ID)
		}
	}
	m.BusNames.Drop(name, m.Reg)
}

// SetIdleHint records a session's self-reported idle state.
func (m *Manager) SetIdleHint(id string, idle bool, ts int64) error {
	sess := m.Reg.Sessions.Get(id)
	if sess == nil {
		return elogerr.New(elogerr.KindNotFound, "no such session")
	}
	sess.IdleHint = idle
	sess.IdleTS = ts
	return nil
}

// SetUserLinger toggles lingering: a lingering user survives its last
// logout instead of being garbage collected.
func (m *Manager) SetUserLinger(uid uint32, enable bool) error {
	user := m.Reg.Users.Get(uid)
	if user == nil {
		return elogerr.New(elogerr.KindNotFound, "no such user")
	}
	user.Linger = enable
	if user.Empty() {
		user.GCPending = true
		m.Reg.GC.EnqueueUser(uid)
	} else {
		m.Reg.GC.DequeueUser(uid)
		user.GCPending = false
	}
	m.saveUser(user)
	return nil
}

// ShallKill applies the kill policy to username.
func (m *Manager) ShallKill(username string) bool {
	cfg := m.Cfg.Current()
	return killpolicy.Policy{
		KillUserProcesses: cfg.KillUserProcesses,
		KillOnlyUsers:     cfg.KillOnlyUsers,
		KillExcludeUsers:  cfg.KillExcludeUsers,
	}.ShallKill(username)
}

func (m *Manager) saveSession(sess *seatmodel.Session, leader int) {
	if m.Store == nil {
		return
	}
	err := m.Store.SaveSession(persist.SessionRecord{
		ID:         sess.ID,
		UID:        sess.UID,
		Seat:       sess.Seat,
		Controller: sess.Controller,
		Leader:     leader,
		TTY:        sess.VT,
		Class:      sess.Class,
		Type:       sess.Type,
	})
	if err != nil {
		elog.WithComponent("manager").Warn().Err(err).Str("session", sess.ID).Msg("failed to persist session")
	}
}

func (m *Manager) saveUser(user *seatmodel.User) {
	if m.Store == nil {
		return
	}
	err := m.Store.SaveUser(persist.UserRecord{
		UID:    user.UID,
		GID:    user.GID,
		Name:   user.Name,
		Linger: user.Linger,
	})
	if err != nil {
		elog.WithComponent("manager").Warn().Err(err).Uint32("uid", user.UID).Msg("failed to persist user")
	}
}
