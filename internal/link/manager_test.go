// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeConn struct {
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once

	mu      sync.Mutex
	written []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, string(data))
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Written() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

// fakeDialer hands out scripted results in order. Once the script runs out
// every dial fails.
type fakeDialer struct {
	mu      sync.Mutex
	results []dialOutcome
	dials   int
}

type dialOutcome struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.results) == 0 {
		return nil, errors.New("unreachable")
	}
	r := d.results[0]
	d.results = d.results[1:]
	if r.err != nil {
		return nil, r.err
	}
	return r.conn, nil
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type countingObserver struct {
	mu          sync.Mutex
	transitions []string
	dials       int
}

func (o *countingObserver) StateChanged(from, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, from.String()+">"+to.String())
}

func (o *countingObserver) DialStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dials++
}

func nextEvent(t *testing.T, m *Manager) Event {
	t.Helper()
	select {
	case ev, ok := <-m.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for link event")
		return Event{}
	}
}

func nextState(t *testing.T, m *Manager) State {
	t.Helper()
	ev := nextEvent(t, m)
	require.Equal(t, EventState, ev.Kind, "expected a state event, got frame %q", ev.Frame)
	return ev.State
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Connecting, Online, true},
		{Connecting, Offline, true},
		{Online, Offline, true},
		{Offline, Connecting, true},
		{Offline, Online, false},
		{Online, Connecting, false},
		{Connecting, Connecting, false},
		{Online, Online, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"_"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "CONNECTING", Connecting.String())
	assert.Equal(t, "ONLINE", Online.String())
	assert.Equal(t, "OFFLINE", Offline.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

// =============================================================================
// MANAGER
// =============================================================================

func TestManager_SendsInitOnOpen(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{conn: conn}}}
	m := NewManager(Config{URL: "ws://device/", Dialer: d, ReconnectDelay: time.Hour})
	defer m.Close()

	assert.Equal(t, Connecting, m.State())
	m.Start()

	assert.Equal(t, Online, nextState(t, m))
	assert.Equal(t, Online, m.State())
	assert.Equal(t, []string{`{"cmd":"init"}`}, conn.Written())
}

func TestManager_FramesArriveInOrder(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{conn: conn}}}
	m := NewManager(Config{Dialer: d, ReconnectDelay: time.Hour})
	defer m.Close()
	m.Start()
	require.Equal(t, Online, nextState(t, m))

	for _, f := range []string{"a", "b", "c"} {
		conn.inbound <- []byte(f)
	}
	for _, want := range []string{"a", "b", "c"} {
		ev := nextEvent(t, m)
		require.Equal(t, EventFrame, ev.Kind)
		assert.Equal(t, want, string(ev.Frame))
	}
}

func TestManager_ReconnectsAfterCloseWithFreshInit(t *testing.T) {
	first, second := newFakeConn(), newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{conn: first}, {conn: second}}}
	obs := &countingObserver{}
	m := NewManager(Config{Dialer: d, ReconnectDelay: 20 * time.Millisecond, Observer: obs})
	defer m.Close()
	m.Start()

	require.Equal(t, Online, nextState(t, m))
	first.Close()

	ev := nextEvent(t, m)
	require.Equal(t, EventState, ev.Kind)
	assert.Equal(t, Offline, ev.State)
	assert.Error(t, ev.Err)

	assert.Equal(t, Connecting, nextState(t, m))
	assert.Equal(t, Online, nextState(t, m))
	assert.Equal(t, []string{`{"cmd":"init"}`}, second.Written())
	assert.Equal(t, 2, d.Dials())

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"CONNECTING>ONLINE", "ONLINE>OFFLINE", "OFFLINE>CONNECTING", "CONNECTING>ONLINE"}, obs.transitions)
	assert.Equal(t, 2, obs.dials)
}

func TestManager_DialFailureGoesOfflineAndRetriesIndefinitely(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(Config{Dialer: d, ReconnectDelay: 5 * time.Millisecond})
	defer m.Close()
	m.Start()

	for i := 0; i < 4; i++ {
		require.Equal(t, Offline, nextState(t, m))
		require.Equal(t, Connecting, nextState(t, m))
	}
	assert.GreaterOrEqual(t, d.Dials(), 5)
}

func TestManager_ManualReconnectReplacesTimer(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{err: errors.New("refused")}, {conn: conn}}}
	m := NewManager(Config{Dialer: d, ReconnectDelay: time.Hour})
	defer m.Close()
	m.Start()

	require.Equal(t, Offline, nextState(t, m))
	require.True(t, m.Reconnect())
	assert.Equal(t, Connecting, nextState(t, m))
	assert.Equal(t, Online, nextState(t, m))

	// Only valid from Offline.
	assert.False(t, m.Reconnect())
	assert.Equal(t, 2, d.Dials())
}

func TestManager_SendRequiresOnline(t *testing.T) {
	d := &fakeDialer{}
	m := NewManager(Config{Dialer: d, ReconnectDelay: time.Hour})
	defer m.Close()
	m.Start()
	require.Equal(t, Offline, nextState(t, m))

	err := m.Send(context.Background(), protocol.CmdGetUsers)
	assert.ErrorIs(t, err, ErrNotOnline)
}

func TestManager_SendWritesWhenOnline(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{conn: conn}}}
	m := NewManager(Config{Dialer: d, ReconnectDelay: time.Hour})
	defer m.Close()
	m.Start()
	require.Equal(t, Online, nextState(t, m))

	require.NoError(t, m.Send(context.Background(), protocol.CmdGetUsers))
	assert.Equal(t, []string{`{"cmd":"init"}`, `{"cmd":"getUsers"}`}, conn.Written())

	err := m.Send(context.Background(), protocol.Command{Cmd: "reboot"})
	assert.ErrorIs(t, err, protocol.ErrUnknownCommand)
}

func TestManager_CloseStopsEverything(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{results: []dialOutcome{{conn: conn}}}
	m := NewManager(Config{Dialer: d, ReconnectDelay: 5 * time.Millisecond})
	m.Start()
	require.Equal(t, Online, nextState(t, m))

	require.NoError(t, m.Close())

	for range m.Events() {
	}
	select {
	case <-conn.closed:
	default:
		t.Fatal("connection left open after Close")
	}
	assert.ErrorIs(t, m.Send(context.Background(), protocol.CmdInit), ErrClosed)
	assert.False(t, m.Reconnect())
}

func TestManager_CloseBeforeStart(t *testing.T) {
	m := NewManager(Config{Dialer: &fakeDialer{}})
	require.NoError(t, m.Close())
	_, ok := <-m.Events()
	assert.False(t, ok)
}

// =============================================================================
// WEBSOCKET TRANSPORT
// =============================================================================

func TestManager_WebSocketRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	got := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		got <- string(data)
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"type":"status","uptime":"00:00:05","users":0}`))
		_, _, _ = c.ReadMessage()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"
	m := NewManager(Config{URL: url, Dialer: WebSocketDialer{HandshakeTimeout: time.Second}, ReconnectDelay: time.Hour})
	defer m.Close()
	m.Start()

	require.Equal(t, Online, nextState(t, m))
	select {
	case cmd := <-got:
		assert.Equal(t, `{"cmd":"init"}`, cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received init")
	}

	ev := nextEvent(t, m)
	require.Equal(t, EventFrame, ev.Kind)
	msg, err := protocol.Decode(ev.Frame)
	require.NoError(t, err)
	assert.Equal(t, protocol.TypeStatus, msg.Type())
}
