// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/elogerr"
	"github.com/markhindley/elogind/internal/persist"
	"github.com/markhindley/elogind/internal/registry"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// CreateInhibitor grants an inhibitor: allocates an id, creates the fifo
// pair, records the inhibitor in the engine and persists it. The returned
// record carries the fifo path the bus glue sends to the client.
func (m *Manager) CreateInhibitor(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, who, why string, uid uint32, pid int) (*seatmodel.Inhibitor, persist.InhibitorRecord, error) {
	if what == 0 {
		return nil, persist.InhibitorRecord{}, elogerr.New(elogerr.KindInvalidArgument, "empty inhibit mask")
	}
	if mode != seatmodel.ModeBlock && mode != seatmodel.ModeDelay {
		return nil, persist.InhibitorRecord{}, elogerr.New(elogerr.KindInvalidArgument, "unknown inhibit mode")
	}
	if m.Pipes == nil {
		return nil, persist.InhibitorRecord{}, elogerr.New(elogerr.KindUnsupported, "no fifo transport configured")
	}

	id := m.NewID()
	rec, daemonEnd, err := m.Pipes.Make(id)
	if err != nil {
		return nil, persist.InhibitorRecord{}, err
	}

	inh, err := m.Inhibit.Create(id, what, mode, who, why, uid, pid, daemonEnd)
	if err != nil {
		_ = daemonEnd.Close()
		return nil, persist.InhibitorRecord{}, err
	}

	rec.What = what
	rec.Mode = mode
	rec.Who = who
	rec.Why = why
	rec.UID = uid
	rec.PID = pid
	if m.Store != nil {
		if err := m.Store.SaveInhibitor(rec); err != nil {
			elog.WithComponent("manager").Warn().Err(err).Str("inhibitor", id).Msg("failed to persist inhibitor")
		}
	}
	if m.Metrics != nil {
		m.Metrics.InhibitorGrants.WithLabelValues(string(mode)).Inc()
		m.Metrics.InhibitorsActive.Set(float64(m.Inhibit.Len()))
	}

	elog.Audit("manager", "inhibit.grant", "inhibitor granted", map[string]any{
		"id":   id,
		"what": what.String(),
		"mode": string(mode),
		"who":  who,
		"why":  why,
		"uid":  uid,
		"pid":  pid,
	})
	return inh, rec, nil
}

// ReleaseInhibitor frees the inhibitor, typically after the event loop
// observed EOF on its fifo. Unknown ids are a no-op, matching the engine.
func (m *Manager) ReleaseInhibitor(id string) {
	if m.Inhibit.Get(id) == nil {
		return
	}
	m.Inhibit.Free(id)
	if m.Store != nil {
		m.Store.DropInhibitor(id)
	}
	if m.Metrics != nil {
		m.Metrics.InhibitorReleases.Inc()
		m.Metrics.InhibitorsActive.Set(float64(m.Inhibit.Len()))
	}
	elog.Audit("manager", "inhibit.release", "inhibitor released", map[string]any{"id": id})
}

// IsInhibited forwards the multi-axis query to the engine.
func (m *Manager) IsInhibited(what seatmodel.InhibitWhat, mode seatmodel.InhibitMode, forUID *uint32, ignoreInactive bool) (bool, int64) {
	return m.Inhibit.IsInhibited(what, mode, forUID, ignoreInactive)
}

// RestoreState reloads persisted users, sessions and inhibitors after a
// daemon restart. Each inhibitor's fifo is reopened by calling reopen with
// its record (when reopen is non-nil) and attached to the rebuilt engine
// record; a record whose fifo cannot be reopened is skipped.
func (m *Manager) RestoreState(reopen func(persist.InhibitorRecord) (seatmodel.InhibitorFifo, error)) {
	if m.Store == nil {
		return
	}
	log := elog.WithComponent("manager")

	m.Store.LoadUsers(func(rec persist.UserRecord) error {
		user, err := m.Reg.Users.Add(rec.UID, registry.NewUserParams{GID: rec.GID, Name: rec.Name})
		if err != nil {
			return err
		}
		user.Linger = rec.Linger
		return nil
	})

	m.Store.LoadSessions(func(rec persist.SessionRecord) error {
		sess, err := m.AddSession(AddSessionParams{
			ID:       rec.ID,
			UID:      rec.UID,
			Seat:     rec.Seat,
			VT:       rec.TTY,
			Leader:   rec.Leader,
			Class:    rec.Class,
			Type:     rec.Type,
		})
		if err != nil {
			return err
		}
		if rec.Controller != "" {
			sess.Controller = rec.Controller
			m.BusNames.Watch(rec.Controller)
			m.saveSession(sess, rec.Leader)
		}
		return nil
	})

	m.Store.LoadInhibitors(func(rec persist.InhibitorRecord) error {
		var fifo seatmodel.InhibitorFifo
		if reopen != nil {
			f, err := reopen(rec)
			if err != nil {
				return err
			}
			fifo = f
		}
		_, err := m.Inhibit.Create(rec.ID, rec.What, rec.Mode, rec.Who, rec.Why, rec.UID, rec.PID, fifo)
		return err
	})

	log.Info().
		Int("users", m.Reg.Users.Len()).
		Int("sessions", m.Reg.Sessions.Len()).
		Int("inhibitors", m.Inhibit.Len()).
		Msg("state restored")
}
