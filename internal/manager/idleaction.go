// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"time"

	"github.com/markhindley/elogind/internal/config"
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/idle"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// IdleHint folds every session's idle report with the idle-inhibit query
// into the daemon-wide hint.
func (m *Manager) IdleHint() (bool, int64) {
	sessions := m.Reg.Sessions.All()
	reports := make([]idle.Report, 0, len(sessions))
	for _, s := range sessions {
		if s.State.IsTerminal() {
			continue
		}
		reports = append(reports, idle.Report{Idle: s.IdleHint, TS: s.IdleTS})
	}
	hint, ts := idle.Aggregate(m.Inhibit, reports)
	if m.Metrics != nil {
		m.Metrics.SetIdleHint(hint)
	}
	return hint, ts
}

// CheckIdleAction runs the configured idle action once the idle hint has
// been stable for the configured duration. Called periodically from the
// event loop; nowMono is the caller's monotonic clock in the same unit as
// session idle timestamps.
func (m *Manager) CheckIdleAction(nowMono int64) {
	cfg := m.Cfg.Current()
	if cfg.IdleAction == "" || cfg.IdleAction == config.ActionIgnore || cfg.IdleActionSec <= 0 {
		return
	}
	hint, since := m.IdleHint()
	if !hint || since == 0 {
		return
	}
	if time.Duration(nowMono-since) < cfg.IdleActionDelay() {
		return
	}

	if cfg.IdleAction == config.ActionLock {
		for _, sess := range m.Reg.Sessions.All() {
			if sess.State == seatmodel.SessionActive {
				_ = m.LockSession(sess.ID)
			}
		}
		return
	}

	if m.Gate == nil || m.Actions == nil {
		return
	}
	if m.Gate.InHoldoff() {
		return
	}

	log := elog.WithComponent("manager")
	if _, err := m.Gate.Check(gatedWhat(cfg.IdleAction)); err != nil {
		log.Debug().Err(err).Msg("idle action refused by gate")
		return
	}
	if err := m.Actions.Run(cfg.IdleAction); err != nil {
		log.Warn().Err(err).Str("action", string(cfg.IdleAction)).Msg("idle action failed")
		return
	}
	m.Gate.NoteAction()
}
