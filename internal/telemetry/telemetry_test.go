// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FrameReceived(protocol.TypeUsers)
		m.FrameDropped(assert.AnError)
		m.StateChanged(link.Connecting, link.Online)
		m.DialStarted()
		m.CommandFinished(command.OpRename, nil)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Counts(t *testing.T) {
	m := NewMetrics()

	m.FrameReceived(protocol.TypeAttend)
	m.FrameReceived(protocol.TypeAttend)
	_, err := protocol.Decode([]byte(`{"type":"reboot"}`))
	require.Error(t, err)
	m.FrameDropped(err)
	m.DialStarted()
	m.StateChanged(link.Connecting, link.Online)
	m.CommandFinished(command.OpDelete, nil)
	m.CommandFinished(command.OpDelete, &command.Error{Kind: command.KindRejected, Op: command.OpDelete})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesReceived.WithLabelValues("attend")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDropped.WithLabelValues("unknown_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dials))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("CONNECTING", "ONLINE")))
	assert.Equal(t, float64(link.Online), testutil.ToFloat64(m.linkState))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("delete", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("delete", "rejected")))
}

func TestRouter(t *testing.T) {
	m := NewMetrics()
	m.DialStarted()
	srv := httptest.NewServer(Router(m))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "attendance_link_dials_total 1")

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
