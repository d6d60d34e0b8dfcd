// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures owned by the attendance device.
//
// The dashboard never creates these values on its own: users are enrolled on
// the device and attendance events are produced by RFID taps. The dashboard
// only mirrors what the device pushes.
//
// # Key Types
//
//   - User: an enrolled card holder (opaque UID plus an editable name)
//   - AttendanceEvent: one check-in, immutable once received
//
// # Constants
//
//   - MaxNameLength: longest name the device accepts
//   - DefaultCapacity: number of user slots on the device
package model
