// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the dashboard's mirror of the device collections.
//
// The Store is owned by a single event loop and is not safe for concurrent
// use: every Apply call runs to completion before the next frame is
// processed. User and log snapshots replace the whole collection, so row
// indices always match the device's; only ApplyAttend appends.
package store

import (
	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

// NoFlash is the FlashIndex of a View with no freshly appended event.
const NoFlash = -1

// Store holds the user collection, the attendance log and the log view cursor.
type Store struct {
	users []model.User
	logs  []model.AttendanceEvent

	// logViewOffset hides logs[:logViewOffset] from view.
	// Invariant: 0 <= logViewOffset <= len(logs).
	logViewOffset int

	// flashIndex is the log position appended by the last ApplyAttend, or NoFlash.
	flashIndex int

	uptime    string
	userCount int

	// synced flips once the first user or log snapshot arrives.
	synced bool
}

// New returns an empty store awaiting its first snapshot.
func New() *Store {
	return &Store{
		users:      []model.User{},
		logs:       []model.AttendanceEvent{},
		flashIndex: NoFlash,
	}
}

// =============================================================================
// APPLY
// =============================================================================

// Apply dispatches a decoded message to the matching Apply method.
func (s *Store) Apply(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Status:
		s.ApplyStatus(m)
	case protocol.Users:
		s.ApplyUsers(m)
	case protocol.Logs:
		s.ApplyLogs(m)
	case protocol.Attend:
		s.ApplyAttend(m)
	case protocol.UserChange:
		s.ApplyUserChange(m)
	}
}

// ApplyStatus records uptime and, when present, the device's user count.
// The user collection itself is left alone.
func (s *Store) ApplyStatus(m protocol.Status) {
	s.uptime = m.Uptime
	if m.HasUsers {
		s.userCount = m.Users
	}
}

// ApplyUsers replaces the user collection.
func (s *Store) ApplyUsers(m protocol.Users) {
	s.replaceUsers(m.Users)
}

// ApplyUserChange replaces the user collection. The message text is for the
// notifier and is not stored.
func (s *Store) ApplyUserChange(m protocol.UserChange) {
	s.replaceUsers(m.Users)
}

// ApplyLogs replaces the attendance log. The view cursor is clamped to the
// new length and any pending emphasis is dropped.
func (s *Store) ApplyLogs(m protocol.Logs) {
	s.logs = model.CloneEvents(m.Logs)
	if s.logViewOffset > len(s.logs) {
		s.logViewOffset = len(s.logs)
	}
	s.flashIndex = NoFlash
	s.synced = true
}

// ApplyAttend appends one event and marks it for emphasis.
func (s *Store) ApplyAttend(m protocol.Attend) {
	s.logs = append(s.logs, m.Event)
	s.flashIndex = len(s.logs) - 1
}

func (s *Store) replaceUsers(users []model.User) {
	s.users = model.CloneUsers(users)
	s.userCount = len(s.users)
	s.synced = true
}

// =============================================================================
// VIEW CURSOR
// =============================================================================

// ClearLogView hides every event currently in the log. Nothing is deleted;
// events appended afterwards are visible.
func (s *Store) ClearLogView() {
	s.logViewOffset = len(s.logs)
	s.flashIndex = NoFlash
}

// ClearFlash ends the emphasis of the last appended event.
func (s *Store) ClearFlash() {
	s.flashIndex = NoFlash
}

// =============================================================================
// QUERIES
// =============================================================================

// IndexOf returns the current position of the user with uid, or -1.
func (s *Store) IndexOf(uid string) int {
	for i, u := range s.users {
		if u.UID == uid {
			return i
		}
	}
	return -1
}

// UserAt returns the user at position i.
func (s *Store) UserAt(i int) (model.User, bool) {
	if i < 0 || i >= len(s.users) {
		return model.User{}, false
	}
	return s.users[i], true
}

// UserCount returns the number of users in the collection.
func (s *Store) UserCount() int {
	return len(s.users)
}

// LogCount returns the total number of events, hidden ones included.
func (s *Store) LogCount() int {
	return len(s.logs)
}

// LogViewOffset returns the view cursor.
func (s *Store) LogViewOffset() int {
	return s.logViewOffset
}

// View returns a snapshot for rendering. The slices are copies.
func (s *Store) View() View {
	return View{
		Users:         model.CloneUsers(s.users),
		Logs:          model.CloneEvents(s.logs),
		LogViewOffset: s.logViewOffset,
		FlashIndex:    s.flashIndex,
		Uptime:        s.uptime,
		UserCountStat: s.userCount,
		Synced:        s.synced,
	}
}

// View is an immutable copy of the store's state.
type View struct {
	Users         []model.User
	Logs          []model.AttendanceEvent
	LogViewOffset int
	FlashIndex    int    // log position to emphasise, or NoFlash
	Uptime        string // as reported by the last status frame
	UserCountStat int    // last user count from a status frame or snapshot
	Synced        bool   // a user or log snapshot has been applied
}
