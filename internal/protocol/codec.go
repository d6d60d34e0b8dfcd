// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/harissfx/AbsensiESP32/internal/model"
)

// =============================================================================
// DECODE
// =============================================================================

// envelope is the union of every inbound field. "users" is a number in
// status frames and an array elsewhere, so it stays raw until the type is known.
type envelope struct {
	Type   string          `json:"type"`
	Uptime json.RawMessage `json:"uptime"`
	Users  json.RawMessage `json:"users"`
	Logs   json.RawMessage `json:"logs"`
	Name   json.RawMessage `json:"name"`
	UID    json.RawMessage `json:"uid"`
	Time   json.RawMessage `json:"time"`
	Msg    json.RawMessage `json:"msg"`
}

// Decode parses one inbound frame.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Kind: KindMalformed, Cause: err}
	}
	if env.Type == "" {
		return nil, &DecodeError{Kind: KindMissingType}
	}

	var (
		msg Message
		err error
	)
	switch Type(env.Type) {
	case TypeStatus:
		msg, err = decodeStatus(&env)
	case TypeUsers:
		var users []model.User
		if users, err = decodeList[model.User](env.Users); err == nil {
			msg = Users{Users: users}
		}
	case TypeLogs:
		var logs []model.AttendanceEvent
		if logs, err = decodeList[model.AttendanceEvent](env.Logs); err == nil {
			msg = Logs{Logs: logs}
		}
	case TypeAttend:
		msg, err = decodeAttend(&env)
	case TypeUserChange:
		msg, err = decodeUserChange(&env)
	default:
		return nil, &DecodeError{Kind: KindUnknownType, Type: env.Type}
	}
	if err != nil {
		return nil, &DecodeError{Kind: KindBadPayload, Type: env.Type, Cause: err}
	}
	return msg, nil
}

func decodeStatus(env *envelope) (Message, error) {
	var st Status
	if !isAbsent(env.Users) {
		var n float64
		if err := json.Unmarshal(env.Users, &n); err != nil {
			return nil, fmt.Errorf("users: %w", err)
		}
		if n < 0 || n > MaxUserCount || n != math.Trunc(n) {
			return nil, fmt.Errorf("users: invalid count %v", n)
		}
		st.Users = int(n)
		st.HasUsers = true
	}
	uptime, err := decodeUptime(env.Uptime)
	if err != nil {
		return nil, err
	}
	st.Uptime = uptime
	return st, nil
}

// decodeUptime accepts the formatted string the device normally sends, or a
// plain number of seconds.
func decodeUptime(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil || secs < 0 {
		return "", fmt.Errorf("uptime: expected string or seconds, got %s", string(raw))
	}
	return FormatUptime(int64(secs)), nil
}

func decodeAttend(env *envelope) (Message, error) {
	var ev model.AttendanceEvent
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"name", env.Name, &ev.Name},
		{"uid", env.UID, &ev.UID},
		{"time", env.Time, &ev.Time},
	}
	for _, f := range fields {
		if err := decodeString(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return Attend{Event: ev}, nil
}

func decodeUserChange(env *envelope) (Message, error) {
	users, err := decodeList[model.User](env.Users)
	if err != nil {
		return nil, err
	}
	var text string
	if err := decodeString(env.Msg, &text); err != nil {
		return nil, fmt.Errorf("msg: %w", err)
	}
	return UserChange{Users: users, Msg: text}, nil
}

// decodeList decodes a JSON array; an absent or null array is an empty
// collection, since the device sends null for an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if isAbsent(raw) {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if isAbsent(raw) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// FormatUptime renders seconds as HH:MM:SS; hours grow past two digits.
func FormatUptime(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// =============================================================================
// ENCODE
// =============================================================================

// Command is an outbound request on the push channel.
type Command struct {
	Cmd string `json:"cmd"`
}

var (
	// CmdInit asks the device for a full users/logs/status snapshot.
	CmdInit = Command{Cmd: "init"}
	// CmdGetUsers asks the device to resend the user collection.
	CmdGetUsers = Command{Cmd: "getUsers"}
)

// Encode serializes an outbound command.
func Encode(c Command) ([]byte, error) {
	switch c.Cmd {
	case CmdInit.Cmd, CmdGetUsers.Cmd:
		return json.Marshal(c)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, c.Cmd)
	}
}
