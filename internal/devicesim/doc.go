// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devicesim is an in-memory stand-in for the attendance device.
//
// It speaks the device's push protocol on a WebSocket endpoint and serves
// the rename, delete and CSV export endpoints, so the dashboard can be
// developed and tested without hardware. Card reads are simulated with Tap.
package devicesim
