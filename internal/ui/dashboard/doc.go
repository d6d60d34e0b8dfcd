// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard is the operator's terminal view of the device.
//
// Model is a Bubble Tea model and the only goroutine that touches the
// session: link events arrive one at a time through a command waiting on
// the link's event channel, and every store mutation happens in Update.
// Rename, delete, refresh and export run as commands and report back as
// messages. A row with a command in flight is marked pending and cannot be
// targeted again until its result arrives.
//
// Modes:
//   - browse: move the selection, start actions
//   - rename: a text input limited to the device's name length
//   - confirm: a y/n prompt before delete
//   - help: a markdown overlay listing the keys
package dashboard
