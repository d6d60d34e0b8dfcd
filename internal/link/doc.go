// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package link owns the push channel to the attendance device.
//
// A Manager runs one actor goroutine that holds the socket, the reconnect
// timer and the current connection state. Nothing else writes to the
// socket. The state machine is:
//
//	Connecting --open--> Online --close/error--> Offline --timer--> Connecting
//	Connecting --dial failure--> Offline
//
// Offline never goes straight to Online, at most one reconnect timer is
// pending, and reconnection never gives up. Every successful open is
// followed by an "init" command so the device resends its snapshot.
//
// Inbound frames and state changes are delivered, in order, on Events().
// The consumer is expected to process them one at a time.
//
// # Usage
//
//	m := link.NewManager(link.Config{URL: "ws://192.168.4.1:81/"})
//	m.Start()
//	defer m.Close()
//	for ev := range m.Events() {
//	    switch ev.Kind {
//	    case link.EventState:
//	        // update indicator
//	    case link.EventFrame:
//	        // decode and apply ev.Frame
//	    }
//	}
package link
