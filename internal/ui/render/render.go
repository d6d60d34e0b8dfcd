// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/store"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// Placeholder captions for empty tables.
const (
	CaptionWaiting = "// waiting for connection..."
	CaptionNoUsers = "// no users registered yet"
	CaptionNoLogs  = "// no attendance logged yet"
)

// LogBarScale is the log count that fills the log stat bar.
const LogBarScale = 20

// Options tune a projection.
type Options struct {
	// Capacity is the number of user slots (default model.DefaultCapacity).
	Capacity int
	// Pending marks UIDs with a command in flight.
	Pending map[string]bool
}

// UserRow is one row of the user table. Index and UID are what an action
// on this row targets.
type UserRow struct {
	Index   int
	Number  string
	Name    string
	UID     string
	Pending bool
}

// LogRow is one row of the attendance table.
type LogRow struct {
	Position int // index into the full log
	Number   string
	Name     string
	UID      string
	Time     string
	Flash    bool
}

// Stats is the summary panel.
type Stats struct {
	Users    int
	Logs     int
	Free     int
	Capacity int

	UsersFraction float64
	LogsFraction  float64
	FreeFraction  float64

	LastName string
	LastTime string
	Uptime   string
}

// HasLast reports whether a last check-in is known.
func (s Stats) HasLast() bool {
	return s.LastName != "" || s.LastTime != ""
}

// Table is everything the dashboard draws from one snapshot.
type Table struct {
	Users       []UserRow
	UserCaption string // set when Users is empty

	Logs       []LogRow
	LogCaption string // set when Logs is empty

	Stats Stats
}

// Project builds the display rows for v.
func Project(v store.View, opts Options) Table {
	return Table{
		Users:       projectUsers(v, opts),
		UserCaption: userCaption(v),
		Logs:        projectLogs(v),
		LogCaption:  logCaption(v),
		Stats:       projectStats(v, opts),
	}
}

func projectUsers(v store.View, opts Options) []UserRow {
	rows := make([]UserRow, len(v.Users))
	for i, u := range v.Users {
		rows[i] = UserRow{
			Index:   i,
			Number:  util.ZeroPad(i+1, 2),
			Name:    u.Name,
			UID:     u.UID,
			Pending: opts.Pending[u.UID],
		}
	}
	return rows
}

// projectLogs lists the visible events newest first. Rendered row i is
// numbered total-i, so numbers keep counting the hidden events.
func projectLogs(v store.View) []LogRow {
	total := len(v.Logs)
	offset := v.LogViewOffset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}

	visible := v.Logs[offset:]
	rows := make([]LogRow, 0, len(visible))
	for i := len(visible) - 1; i >= 0; i-- {
		pos := offset + i
		ev := visible[i]
		rendered := len(rows)
		rows = append(rows, LogRow{
			Position: pos,
			Number:   util.ZeroPad(total-rendered, 3),
			Name:     ev.Name,
			UID:      ev.UID,
			Time:     ev.Time,
			Flash:    rendered == 0 && pos == v.FlashIndex && pos == total-1,
		})
	}
	return rows
}

func userCaption(v store.View) string {
	if len(v.Users) > 0 {
		return ""
	}
	if !v.Synced {
		return CaptionWaiting
	}
	return CaptionNoUsers
}

func logCaption(v store.View) string {
	if v.LogViewOffset < len(v.Logs) {
		return ""
	}
	return CaptionNoLogs
}

func projectStats(v store.View, opts Options) Stats {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = model.DefaultCapacity
	}
	users := v.UserCountStat
	logs := len(v.Logs)
	free := capacity - users

	s := Stats{
		Users:         users,
		Logs:          logs,
		Free:          free,
		Capacity:      capacity,
		UsersFraction: clamp(float64(users) / float64(capacity)),
		LogsFraction:  clamp(float64(logs) / LogBarScale),
		FreeFraction:  clamp(float64(free) / float64(capacity)),
		Uptime:        v.Uptime,
	}
	if logs > 0 {
		last := v.Logs[logs-1]
		s.LastName, s.LastTime = last.Name, last.Time
	}
	return s
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
