// SPDX-License-Identifier: LGPL-2.1-or-later

// Package metrics exposes the daemon's Prometheus instrumentation:
// registry sizes, inhibitor churn, and the aggregate idle hint. The core
// only fills the collectors; serving them is the embedding binary's job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the daemon maintains.
type Metrics struct {
	Devices  prometheus.Gauge
	Seats    prometheus.Gauge
	Sessions prometheus.Gauge
	Users    prometheus.Gauge

	InhibitorsActive  prometheus.Gauge
	InhibitorGrants   *prometheus.CounterVec
	InhibitorReleases prometheus.Counter

	IdleHint prometheus.Gauge

	HotplugEvents *prometheus.CounterVec
	GCSweeps      prometheus.Counter
}

// New constructs the collector set. Nothing is registered yet; call
// Register with the binary's registry.
func New() *Metrics {
	return &Metrics{
		Devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_devices",
			Help: "Current number of tracked seat devices.",
		}),
		Seats: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_seats",
			Help: "Current number of seats.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_sessions",
			Help: "Current number of sessions.",
		}),
		Users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_users",
			Help: "Current number of tracked users.",
		}),
		InhibitorsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_inhibitors_active",
			Help: "Current number of live inhibitors.",
		}),
		InhibitorGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elogind_inhibitor_grants_total",
			Help: "Total inhibitors granted, by mode.",
		}, []string{"mode"}),
		InhibitorReleases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elogind_inhibitor_releases_total",
			Help: "Total inhibitors released.",
		}),
		IdleHint: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "elogind_idle_hint",
			Help: "Daemon-wide idle hint (1 = idle).",
		}),
		HotplugEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "elogind_hotplug_events_total",
			Help: "Total hot-plug events dispatched, by action.",
		}, []string{"action"}),
		GCSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "elogind_gc_sweeps_total",
			Help: "Total garbage-collection sweeps.",
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Devices, m.Seats, m.Sessions, m.Users,
		m.InhibitorsActive, m.InhibitorGrants, m.InhibitorReleases,
		m.IdleHint, m.HotplugEvents, m.GCSweeps,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Sizer is anything that can report table sizes; both the registries and
// the inhibitor engine satisfy slices of it.
type Sizer interface {
	Len() int
}

// UpdateRegistrySizes refreshes the four table gauges.
func (m *Metrics) UpdateRegistrySizes(devices, seats, sessions, users Sizer) {
	m.Devices.Set(float64(devices.Len()))
	m.Seats.Set(float64(seats.Len()))
	m.Sessions.Set(float64(sessions.Len()))
	m.Users.Set(float64(users.Len()))
}

// SetIdleHint records the aggregate idle hint.
func (m *Metrics) SetIdleHint(idle bool) {
	if idle {
		m.IdleHint.Set(1)
	} else {
		m.IdleHint.Set(0)
	}
}
