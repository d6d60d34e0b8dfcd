// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render projects a store snapshot into display rows.
//
// Project is a pure function of its inputs; the dashboard draws its result
// with lipgloss and the CLI prints it as plain columns.
package render
