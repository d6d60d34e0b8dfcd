// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import "github.com/harissfx/AbsensiESP32/internal/model"

// Type is the value of the "type" field of an inbound frame.
type Type string

const (
	TypeStatus     Type = "status"
	TypeUsers      Type = "users"
	TypeLogs       Type = "logs"
	TypeAttend     Type = "attend"
	TypeUserChange Type = "userchange"
)

// Message is a decoded inbound frame.
type Message interface {
	Type() Type
}

// MaxUserCount bounds the user count a status frame may carry.
const MaxUserCount = 65535

// Status is the periodic heartbeat. Users is the device's own user count;
// it updates the stat only and never replaces the user collection.
// HasUsers is false when the frame carried no count.
type Status struct {
	Uptime   string
	Users    int
	HasUsers bool
}

// Users is a full snapshot of the user collection.
type Users struct {
	Users []model.User
}

// Logs is a full snapshot of the attendance log.
type Logs struct {
	Logs []model.AttendanceEvent
}

// Attend is a single new check-in.
type Attend struct {
	Event model.AttendanceEvent
}

// UserChange is a user snapshot sent after a mutation, with optional
// operator-facing text.
type UserChange struct {
	Users []model.User
	Msg   string
}

func (Status) Type() Type     { return TypeStatus }
func (Users) Type() Type      { return TypeUsers }
func (Logs) Type() Type       { return TypeLogs }
func (Attend) Type() Type     { return TypeAttend }
func (UserChange) Type() Type { return TypeUserChange }
