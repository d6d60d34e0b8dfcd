// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the dashboard packages.
//
// # Key Functions
//
// Text layout (display-width aware, via go-runewidth):
//   - PadRight, TruncateWidth, StringWidth: fixed-width table columns
//   - ZeroPad: row numbers such as "01" and "001"
//   - RuneLen: character count used by name validation
//
// Files:
//   - AtomicWriteFile: crash-safe config writes
//
// # Usage
//
//	cell := util.PadRight(util.TruncateWidth(user.Name, 19), 19)
//	num := util.ZeroPad(i+1, 2)
package util
