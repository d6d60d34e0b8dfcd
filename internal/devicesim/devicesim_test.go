// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devicesim

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/model"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newTestDevice(t *testing.T) (*Device, *httptest.Server) {
	t.Helper()
	d := New(Options{
		Users: []model.User{{UID: "A1", Name: "Alice"}, {UID: "B2", Name: "Bob"}},
		Now:   fixedClock(),
	})
	srv := httptest.NewServer(d.Handler())
	t.Cleanup(func() {
		d.Close()
		srv.Close()
	})
	return d, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readFrame(t *testing.T, c *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func frameType(m map[string]json.RawMessage) string {
	var s string
	_ = json.Unmarshal(m["type"], &s)
	return s
}

func TestDevice_InitSendsSnapshots(t *testing.T) {
	_, srv := newTestDevice(t)
	c := dial(t, srv)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"init"}`)))
	assert.Equal(t, "users", frameType(readFrame(t, c)))
	assert.Equal(t, "logs", frameType(readFrame(t, c)))
	status := readFrame(t, c)
	assert.Equal(t, "status", frameType(status))
	assert.JSONEq(t, `"00:00:00"`, string(status["uptime"]))
	assert.JSONEq(t, `2`, string(status["users"]))
}

func TestDevice_TapBroadcastsAttend(t *testing.T) {
	d, srv := newTestDevice(t)
	c := dial(t, srv)
	require.Eventually(t, func() bool { return d.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	ev, err := d.Tap("A1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", ev.Name)
	assert.Equal(t, "2026-03-02 08:00:00", ev.Time)

	f := readFrame(t, c)
	assert.Equal(t, "attend", frameType(f))
	assert.JSONEq(t, `"A1"`, string(f["uid"]))

	_, err = d.Tap("ZZ")
	assert.ErrorIs(t, err, ErrNoSuchUser)
	assert.Len(t, d.Logs(), 1)
}

func TestDevice_RenameAndDeleteOverHTTP(t *testing.T) {
	d, srv := newTestDevice(t)

	post := func(path string, form url.Values) bool {
		resp, err := http.PostForm(srv.URL+path, form)
		require.NoError(t, err)
		defer resp.Body.Close()
		var ack struct{ OK bool }
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
		return ack.OK
	}

	// uid wins over a stale index
	assert.True(t, post("/api/rename", url.Values{"idx": {"0"}, "uid": {"B2"}, "name": {"Robert"}}))
	assert.Equal(t, "Robert", d.Users()[1].Name)

	assert.False(t, post("/api/rename", url.Values{"idx": {"0"}, "name": {""}}))
	assert.False(t, post("/api/delete", url.Values{"idx": {"0"}, "uid": {"nope"}}))

	// index only, as the original page sends it
	assert.True(t, post("/api/delete", url.Values{"idx": {"0"}}))
	assert.Equal(t, []model.User{{UID: "B2", Name: "Robert"}}, d.Users())
}

func TestDevice_MutationsBroadcastUserChange(t *testing.T) {
	d, srv := newTestDevice(t)
	c := dial(t, srv)
	require.Eventually(t, func() bool { return d.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, d.Delete(-1, "A1"))
	f := readFrame(t, c)
	assert.Equal(t, "userchange", frameType(f))
	assert.JSONEq(t, `[{"uid":"B2","name":"Bob"}]`, string(f["users"]))
	assert.JSONEq(t, `"User Alice deleted"`, string(f["msg"]))
}

func TestDevice_Export(t *testing.T) {
	d, srv := newTestDevice(t)
	_, err := d.Tap("B2")
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/logs/csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no,name,uid,time\n1,Bob,B2,2026-03-02 08:00:00\n", string(body))
}

func TestDevice_EnrollRespectsCapacity(t *testing.T) {
	d := New(Options{Capacity: 1})
	require.NoError(t, d.Enroll("A", "a"))
	assert.ErrorIs(t, d.Enroll("B", "b"), ErrFull)
	assert.Error(t, New(Options{Users: []model.User{{UID: "A"}}}).Enroll("A", "x"))
}
