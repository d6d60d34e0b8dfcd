// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/model"
)

// =============================================================================
// DECODE TESTS
// =============================================================================

func TestDecode_MessageVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Message
	}{
		{
			name: "status",
			raw:  `{"type":"status","uptime":"01:02:03","users":4}`,
			want: Status{Uptime: "01:02:03", Users: 4, HasUsers: true},
		},
		{
			name: "status with numeric uptime",
			raw:  `{"type":"status","uptime":3725,"users":0}`,
			want: Status{Uptime: "01:02:05", Users: 0, HasUsers: true},
		},
		{
			name: "status without count",
			raw:  `{"type":"status","uptime":"00:00:09"}`,
			want: Status{Uptime: "00:00:09"},
		},
		{
			name: "users",
			raw:  `{"type":"users","users":[{"uid":"A1","name":"Alice"},{"uid":"B2","name":"Bob"}]}`,
			want: Users{Users: []model.User{{UID: "A1", Name: "Alice"}, {UID: "B2", Name: "Bob"}}},
		},
		{
			name: "users null is empty",
			raw:  `{"type":"users","users":null}`,
			want: Users{Users: []model.User{}},
		},
		{
			name: "logs",
			raw:  `{"type":"logs","logs":[{"uid":"A1","name":"Alice","time":"08:00:00"}]}`,
			want: Logs{Logs: []model.AttendanceEvent{{UID: "A1", Name: "Alice", Time: "08:00:00"}}},
		},
		{
			name: "logs missing is empty",
			raw:  `{"type":"logs"}`,
			want: Logs{Logs: []model.AttendanceEvent{}},
		},
		{
			name: "attend",
			raw:  `{"type":"attend","name":"Alice","uid":"A1","time":"08:00:00"}`,
			want: Attend{Event: model.AttendanceEvent{UID: "A1", Name: "Alice", Time: "08:00:00"}},
		},
		{
			name: "userchange with message",
			raw:  `{"type":"userchange","users":[{"uid":"B2","name":"Bob"}],"msg":"Alice deleted"}`,
			want: UserChange{Users: []model.User{{UID: "B2", Name: "Bob"}}, Msg: "Alice deleted"},
		},
		{
			name: "userchange without message",
			raw:  `{"type":"userchange","users":[]}`,
			want: UserChange{Users: []model.User{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type(), got.Type())
		})
	}
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind DecodeErrorKind
	}{
		{"not json", `hello`, KindMalformed},
		{"truncated", `{"type":"users","users":[`, KindMalformed},
		{"array frame", `[1,2,3]`, KindMalformed},
		{"no type", `{"users":[]}`, KindMissingType},
		{"empty type", `{"type":""}`, KindMissingType},
		{"null frame", `null`, KindMissingType},
		{"unknown type", `{"type":"reboot"}`, KindUnknownType},
		{"users not a list", `{"type":"users","users":5}`, KindBadPayload},
		{"status users not a number", `{"type":"status","users":"many"}`, KindBadPayload},
		{"status negative users", `{"type":"status","users":-1}`, KindBadPayload},
		{"status users out of range", `{"type":"status","users":1e300}`, KindBadPayload},
		{"status users fractional", `{"type":"status","users":2.5}`, KindBadPayload},
		{"attend uid not a string", `{"type":"attend","uid":12,"name":"x","time":"t"}`, KindBadPayload},
		{"userchange msg not a string", `{"type":"userchange","users":[],"msg":{}}`, KindBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, msg)

			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.kind, de.Kind)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestDecodeError_MessageIncludesType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"reboot"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown_type")
	assert.Contains(t, err.Error(), "reboot")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatUptime(0))
	assert.Equal(t, "00:01:01", FormatUptime(61))
	assert.Equal(t, "100:00:00", FormatUptime(360000))
	assert.Equal(t, "00:00:00", FormatUptime(-5))
}

// =============================================================================
// ENCODE TESTS
// =============================================================================

func TestEncode_KnownCommands(t *testing.T) {
	raw, err := Encode(CmdInit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cmd":"init"}`, string(raw))

	raw, err = Encode(CmdGetUsers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cmd":"getUsers"}`, string(raw))
}

func TestEncode_UnknownCommand(t *testing.T) {
	_, err := Encode(Command{Cmd: "format"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
