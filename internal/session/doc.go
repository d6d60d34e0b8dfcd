// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties one dashboard run together: the push link, the
// store it feeds, the command client and the per-row pending markers.
//
// A Session is owned by a single event loop. HandleEvent, the Begin*
// methods and Finish must all be called from that loop; only Call.Run may
// execute elsewhere.
//
// # Usage
//
//	s := session.New(session.Config{Link: mgr, Commands: client})
//	s.Start()
//	for ev := range s.Events() {
//	    out := s.HandleEvent(ev)
//	    redraw(s.Table(), out.Notice)
//	}
package session
