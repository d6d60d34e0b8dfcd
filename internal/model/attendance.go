// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// AttendanceEvent is one check-in reported by the device. Time is the
// device's own clock string and is displayed verbatim; ordering follows
// arrival, not Time.
type AttendanceEvent struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Time string `json:"time"`
}

// CloneEvents returns a copy of events that shares no backing array with it.
func CloneEvents(events []AttendanceEvent) []AttendanceEvent {
	out := make([]AttendanceEvent, len(events))
	copy(out, events)
	return out
}
