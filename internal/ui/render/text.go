// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// Column widths shared by the dashboard and the plain text output.
const (
	NameWidth = model.MaxNameLength
	UIDWidth  = 14
	TimeWidth = 19
)

// UserLine formats a user row as fixed-width columns.
func UserLine(r UserRow) string {
	return strings.Join([]string{
		r.Number,
		util.PadRight(util.TruncateWidth(r.Name, NameWidth), NameWidth),
		util.PadRight(util.TruncateWidth(r.UID, UIDWidth), UIDWidth),
	}, "  ")
}

// LogLine formats a log row as fixed-width columns.
func LogLine(r LogRow) string {
	return strings.Join([]string{
		r.Number,
		util.PadRight(util.TruncateWidth(r.Name, NameWidth), NameWidth),
		util.PadRight(util.TruncateWidth(r.UID, UIDWidth), UIDWidth),
		util.TruncateWidth(r.Time, TimeWidth),
	}, "  ")
}

// WriteUsers prints the user table, or its caption.
func WriteUsers(w io.Writer, t Table) error {
	if len(t.Users) == 0 {
		_, err := fmt.Fprintln(w, t.UserCaption)
		return err
	}
	for _, r := range t.Users {
		if _, err := fmt.Fprintln(w, strings.TrimRight(UserLine(r), " ")); err != nil {
			return err
		}
	}
	return nil
}

// WriteLogs prints the attendance table, or its caption.
func WriteLogs(w io.Writer, t Table) error {
	if len(t.Logs) == 0 {
		_, err := fmt.Fprintln(w, t.LogCaption)
		return err
	}
	for _, r := range t.Logs {
		if _, err := fmt.Fprintln(w, LogLine(r)); err != nil {
			return err
		}
	}
	return nil
}

// WriteStats prints the summary panel.
func WriteStats(w io.Writer, s Stats) error {
	_, err := fmt.Fprintf(w, "users %d/%d  free %d  check-ins %d", s.Users, s.Capacity, s.Free, s.Logs)
	if err != nil {
		return err
	}
	if s.Uptime != "" {
		if _, err := fmt.Fprintf(w, "  uptime %s", s.Uptime); err != nil {
			return err
		}
	}
	if s.HasLast() {
		if _, err := fmt.Fprintf(w, "  last %s @ %s", s.LastName, s.LastTime); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}
