// SPDX-License-Identifier: LGPL-2.1-or-later

// Package sdnotify tells the service manager about daemon readiness and
// feeds its watchdog. A no-op when not running under a service manager.
package sdnotify

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/markhindley/elogind/internal/elog"
)

// Ready signals READY=1 once the registries are initialized and restored.
func Ready() {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		elog.WithComponent("sdnotify").Warn().Err(err).Msg("sd_notify failed")
		return
	}
	if sent {
		elog.WithComponent("sdnotify").Debug().Msg("readiness notified")
	}
}

// Stopping signals STOPPING=1 during shutdown.
func Stopping() {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}

// Watchdog pings WATCHDOG=1 at half the configured interval until ctx is
// done. Returns immediately when no watchdog is configured.
func Watchdog(ctx context.Context) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
