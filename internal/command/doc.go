// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package command issues rename and delete requests to the device's HTTP
// endpoints and fetches the CSV attendance export.
//
// Calls are fire-and-report: a successful reply only means the device
// accepted the request. The visible user list changes when the device
// pushes its next userchange snapshot, never as a side effect of a call.
//
// Example:
//
//	c := command.NewClient(command.Config{BaseURL: "http://192.168.4.1"})
//	err := c.Rename(ctx, command.Target{Index: 2, UID: "A1B2C3D4"}, "Budi")
//	if command.IsRejected(err) {
//	    // device answered {"ok":false}
//	}
package command
