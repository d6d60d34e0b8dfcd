// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

func alice() model.User { return model.User{UID: "A1", Name: "Alice"} }
func bob() model.User   { return model.User{UID: "B2", Name: "Bob"} }

func attend(uid, name, at string) protocol.Attend {
	return protocol.Attend{Event: model.AttendanceEvent{UID: uid, Name: name, Time: at}}
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestApplyUsers_ReplacesInPushedOrder(t *testing.T) {
	s := New()
	snapshots := [][]model.User{
		{alice(), bob()},
		{bob()},
		{},
		{bob(), alice()},
	}
	for _, snap := range snapshots {
		s.ApplyUsers(protocol.Users{Users: snap})
		assert.Equal(t, snap, s.View().Users)
	}
}

func TestApplyUsers_Idempotent(t *testing.T) {
	s := New()
	snap := protocol.Users{Users: []model.User{alice(), bob()}}

	s.ApplyUsers(snap)
	first := s.View()
	s.ApplyUsers(snap)

	assert.Equal(t, first, s.View())
}

func TestApplyUsers_DoesNotAliasInput(t *testing.T) {
	s := New()
	pushed := []model.User{alice()}
	s.ApplyUsers(protocol.Users{Users: pushed})
	pushed[0].Name = "Mallory"

	u, ok := s.UserAt(0)
	require.True(t, ok)
	assert.Equal(t, "Alice", u.Name)
}

func TestApplyUserChange_ReplacesUsers(t *testing.T) {
	s := New()
	s.ApplyUsers(protocol.Users{Users: []model.User{alice(), bob()}})
	s.ApplyUserChange(protocol.UserChange{Users: []model.User{bob()}, Msg: "Alice deleted"})

	assert.Equal(t, []model.User{bob()}, s.View().Users)
	assert.Equal(t, 1, s.View().UserCountStat)
}

func TestApplyStatus_UpdatesStatOnly(t *testing.T) {
	s := New()
	s.ApplyUsers(protocol.Users{Users: []model.User{alice()}})
	s.ApplyStatus(protocol.Status{Uptime: "00:10:00", Users: 7, HasUsers: true})

	v := s.View()
	assert.Equal(t, "00:10:00", v.Uptime)
	assert.Equal(t, 7, v.UserCountStat)
	assert.Equal(t, []model.User{alice()}, v.Users)

	s.ApplyUsers(protocol.Users{Users: []model.User{alice(), bob()}})
	assert.Equal(t, 2, s.View().UserCountStat)
}

func TestApplyStatus_MissingCountKeepsStat(t *testing.T) {
	s := New()
	s.ApplyUsers(protocol.Users{Users: []model.User{alice(), bob()}})
	s.ApplyStatus(protocol.Status{Uptime: "00:20:00"})

	v := s.View()
	assert.Equal(t, "00:20:00", v.Uptime)
	assert.Equal(t, 2, v.UserCountStat)
}

func TestSynced(t *testing.T) {
	s := New()
	s.ApplyStatus(protocol.Status{Uptime: "00:00:01"})
	assert.False(t, s.View().Synced)

	s.ApplyLogs(protocol.Logs{Logs: nil})
	assert.True(t, s.View().Synced)
}

// =============================================================================
// LOG TESTS
// =============================================================================

func TestApplyAttend_AppendsExactlyOne(t *testing.T) {
	s := New()
	s.ApplyLogs(protocol.Logs{Logs: []model.AttendanceEvent{{UID: "B2", Name: "Bob", Time: "07:00:00"}}})

	for i, at := range []string{"08:00:00", "08:01:00", "08:02:00"} {
		before := s.LogCount()
		s.ApplyAttend(attend("A1", "Alice", at))

		v := s.View()
		require.Len(t, v.Logs, before+1)
		assert.Equal(t, at, v.Logs[len(v.Logs)-1].Time, "push %d", i)
		assert.Equal(t, len(v.Logs)-1, v.FlashIndex)
	}
}

func TestApplyLogs_ClearsFlash(t *testing.T) {
	s := New()
	s.ApplyAttend(attend("A1", "Alice", "08:00:00"))
	require.Equal(t, 0, s.View().FlashIndex)

	s.ApplyLogs(protocol.Logs{Logs: []model.AttendanceEvent{{UID: "A1", Name: "Alice", Time: "08:00:00"}}})
	assert.Equal(t, NoFlash, s.View().FlashIndex)
}

func TestClearLogView_HidesWithoutDeleting(t *testing.T) {
	s := New()
	s.ApplyAttend(attend("A1", "Alice", "08:00:00"))
	s.ApplyAttend(attend("B2", "Bob", "08:05:00"))

	s.ClearLogView()

	assert.Equal(t, 2, s.LogCount())
	assert.Equal(t, 2, s.LogViewOffset())
	assert.Equal(t, NoFlash, s.View().FlashIndex)
}

func TestApplyLogs_ClampsCursor(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.ApplyAttend(attend("A1", "Alice", "08:00:00"))
	}
	s.ClearLogView()
	require.Equal(t, 5, s.LogViewOffset())

	s.ApplyLogs(protocol.Logs{Logs: []model.AttendanceEvent{{UID: "A1"}, {UID: "B2"}}})
	assert.Equal(t, 2, s.LogViewOffset())
	assert.LessOrEqual(t, s.LogViewOffset(), s.LogCount())

	s.ApplyLogs(protocol.Logs{Logs: make([]model.AttendanceEvent, 10)})
	assert.Equal(t, 2, s.LogViewOffset(), "a longer snapshot keeps the cursor")
}

func TestClearFlash(t *testing.T) {
	s := New()
	s.ApplyAttend(attend("A1", "Alice", "08:00:00"))
	s.ClearFlash()
	assert.Equal(t, NoFlash, s.View().FlashIndex)
}

// =============================================================================
// QUERY TESTS
// =============================================================================

func TestIndexOf(t *testing.T) {
	s := New()
	s.ApplyUsers(protocol.Users{Users: []model.User{alice(), bob()}})

	assert.Equal(t, 0, s.IndexOf("A1"))
	assert.Equal(t, 1, s.IndexOf("B2"))
	assert.Equal(t, -1, s.IndexOf("Z9"))

	s.ApplyUsers(protocol.Users{Users: []model.User{bob()}})
	assert.Equal(t, 0, s.IndexOf("B2"), "index follows the latest snapshot")
}

func TestUserAt_OutOfRange(t *testing.T) {
	s := New()
	_, ok := s.UserAt(0)
	assert.False(t, ok)
	_, ok = s.UserAt(-1)
	assert.False(t, ok)
}

func TestApply_Dispatch(t *testing.T) {
	s := New()
	s.Apply(protocol.Users{Users: []model.User{alice()}})
	s.Apply(attend("A1", "Alice", "08:00:00"))
	s.Apply(protocol.Status{Uptime: "00:00:05", Users: 1, HasUsers: true})

	v := s.View()
	assert.Len(t, v.Users, 1)
	assert.Len(t, v.Logs, 1)
	assert.Equal(t, "00:00:05", v.Uptime)
}
