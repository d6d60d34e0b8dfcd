// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol implements the device's push-channel wire format.
//
// Every frame is a JSON text object. Inbound frames carry a "type" field
// selecting one of five message shapes; outbound frames carry a "cmd" field.
//
// # Inbound
//
//	{"type":"status","uptime":"01:02:03","users":4}
//	{"type":"users","users":[{"uid":"A1","name":"Alice"}]}
//	{"type":"logs","logs":[{"uid":"A1","name":"Alice","time":"08:00:00"}]}
//	{"type":"attend","uid":"A1","name":"Alice","time":"08:00:00"}
//	{"type":"userchange","users":[...],"msg":"Alice renamed"}
//
// # Outbound
//
//	{"cmd":"init"}      full snapshot request, sent on every connect
//	{"cmd":"getUsers"}  operator refresh
//
// Frames that fail to decode produce a *DecodeError. The device is the
// source of truth and may add message types, so callers are expected to
// drop such frames rather than surface them.
package protocol
