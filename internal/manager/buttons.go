// SPDX-License-Identifier: LGPL-2.1-or-later

package manager

import (
	"github.com/markhindley/elogind/internal/config"
	"github.com/markhindley/elogind/internal/dock"
	"github.com/markhindley/elogind/internal/elog"
	"github.com/markhindley/elogind/internal/seatmodel"
)

// The methods below form the evdev source's sink: decoded button events,
// already marshaled onto the event-loop goroutine.

// PowerKeyPressed runs the configured power-key action.
func (m *Manager) PowerKeyPressed(sysname string) {
	m.handleKey(sysname, m.Cfg.Current().HandlePowerKey, seatmodel.InhibitHandlePowerKey)
}

// SuspendKeyPressed runs the configured suspend-key action.
func (m *Manager) SuspendKeyPressed(sysname string) {
	m.handleKey(sysname, m.Cfg.Current().HandleSuspendKey, seatmodel.InhibitHandleSuspendKey)
}

// HibernateKeyPressed runs the configured hibernate-key action.
func (m *Manager) HibernateKeyPressed(sysname string) {
	m.handleKey(sysname, m.Cfg.Current().HandleHibernateKey, seatmodel.InhibitHandleHibernateKey)
}

// LidStateChanged tracks the lid switch. Closing the lid runs the lid
// action, modulated by the docked/multi-display heuristic; opening it
// only updates state.
func (m *Manager) LidStateChanged(sysname string, closed bool) {
	m.Hotplug.SetLidClosed(sysname, closed)
	if !closed {
		return
	}

	cfg := m.Cfg.Current()
	action := cfg.HandleLidSwitch
	if dock.IsDockedOrMultipleDisplays(m.Hotplug, m.DRM) {
		action = cfg.HandleLidSwitchDocked
	}
	m.handleKey(sysname, action, seatmodel.InhibitHandleLidSwitch)
}

// DockStateChanged tracks the dock switch; it influences future lid
// events but triggers no action of its own.
func (m *Manager) DockStateChanged(sysname string, docked bool) {
	m.Hotplug.SetDocked(sysname, docked)
}

func (m *Manager) handleKey(sysname string, action config.HandleAction, handleBit seatmodel.InhibitWhat) {
	log := elog.WithComponent("manager")

	if action == "" || action == config.ActionIgnore {
		return
	}

	// A handle-* inhibitor means some client (a desktop environment,
	// usually) wants the key event for itself.
	if taken, _ := m.Inhibit.IsInhibited(handleBit, seatmodel.ModeBlock, nil, false); taken {
		log.Debug().Str("button", sysname).Msg("key handling inhibited by client")
		return
	}

	if action == config.ActionLock {
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
	if _, err := m.Gate.Check(gatedWhat(action)); err != nil {
		log.Info().Err(err).Str("action", string(action)).Msg("power action refused")
		return
	}
	if err := m.Actions.Run(action); err != nil {
		log.Warn().Err(err).Str("action", string(action)).Msg("power action failed")
		return
	}
	m.Gate.NoteAction()
}

// gatedWhat maps an action to the inhibit category that arbitrates it.
func gatedWhat(action config.HandleAction) seatmodel.InhibitWhat {
	switch action {
	case config.ActionPoweroff, config.ActionReboot, config.ActionHalt:
		return seatmodel.InhibitShutdown
	default:
		return seatmodel.InhibitSleep
	}
}
