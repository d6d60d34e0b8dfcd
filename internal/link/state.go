// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

// State is the push channel's connection state.
type State int32

const (
	// Connecting means a dial is in flight.
	Connecting State = iota
	// Online means the socket is open and init has been sent.
	Online
	// Offline means the socket is closed and a reconnect is scheduled.
	Offline
)

// String returns the label shown in the connection indicator.
func (s State) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Online:
		return "ONLINE"
	case Offline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to State) bool {
	switch from {
	case Connecting:
		return to == Online || to == Offline
	case Online:
		return to == Offline
	case Offline:
		return to == Connecting
	default:
		return false
	}
}
