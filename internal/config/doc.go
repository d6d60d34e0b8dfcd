// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the attendance dashboard.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.attendance/config.toml
//   - ~/.attendance/config.json
//   - Built-in defaults
//
// Environment variables:
//   - ABSENSI_HOST: device host name or address
//   - ABSENSI_WS_PORT: push channel port
//   - ABSENSI_HTTP_PORT: command endpoint port
//   - ABSENSI_LOG: log file path
//   - ABSENSI_METRICS: metrics listen address
//
// A Watcher reloads the file on change so the [ui] section can be tuned
// while the dashboard runs.
package config
