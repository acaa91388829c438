// SPDX-License-Identifier: LGPL-2.1-or-later

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

type fixedSize int

func (s fixedSize) Len() int { return int(s) }

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestRegisterIsCleanOnFreshRegistry(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	// Double registration must fail, proving everything actually landed.
	require.Error(t, m.Register(reg))
}

func TestUpdateRegistrySizes(t *testing.T) {
	m := New()
	m.UpdateRegistrySizes(fixedSize(3), fixedSize(1), fixedSize(2), fixedSize(1))

	require.Equal(t, 3.0, gaugeValue(t, m.Devices))
	require.Equal(t, 1.0, gaugeValue(t, m.Seats))
	require.Equal(t, 2.0, gaugeValue(t, m.Sessions))
	require.Equal(t, 1.0, gaugeValue(t, m.Users))
}

func TestSetIdleHint(t *testing.T) {
	m := New()
	m.SetIdleHint(true)
	require.Equal(t, 1.0, gaugeValue(t, m.IdleHint))
	m.SetIdleHint(false)
	require.Equal(t, 0.0, gaugeValue(t, m.IdleHint))
}
