// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

const namespace = "attendance"

// Metrics holds the dashboard's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	dials          prometheus.Counter
	linkState      prometheus.Gauge
	commands       *prometheus.CounterVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		framesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_received_total",
			Help:      "Decoded push frames by type.",
		}, []string{"type"}),
		framesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Push frames dropped because they could not be decoded.",
		}, []string{"reason"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_transitions_total",
			Help:      "Connection state transitions.",
		}, []string{"from", "to"}),
		dials: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_dials_total",
			Help:      "Connection attempts, the first one included.",
		}),
		linkState: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_state",
			Help:      "Current connection state (0 connecting, 1 online, 2 offline).",
		}),
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Finished device commands by operation and result.",
		}, []string{"op", "result"}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// FrameReceived counts a decoded frame.
func (m *Metrics) FrameReceived(t protocol.Type) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(string(t)).Inc()
}

// FrameDropped counts a frame that failed to decode.
func (m *Metrics) FrameDropped(err error) {
	if m == nil {
		return
	}
	reason := "other"
	var de *protocol.DecodeError
	if errors.As(err, &de) {
		reason = de.Kind.String()
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

// StateChanged implements link.Observer.
func (m *Metrics) StateChanged(from, to link.State) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
	m.linkState.Set(float64(to))
}

// DialStarted implements link.Observer.
func (m *Metrics) DialStarted() {
	if m == nil {
		return
	}
	m.dials.Inc()
}

// CommandFinished implements command.Observer.
func (m *Metrics) CommandFinished(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = command.KindOf(err).String()
	}
	m.commands.WithLabelValues(op, result).Inc()
}

var (
	_ link.Observer    = (*Metrics)(nil)
	_ command.Observer = (*Metrics)(nil)
)
