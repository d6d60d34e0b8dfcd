// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry counts link, frame and command activity with Prometheus.
//
// A nil *Metrics is valid and records nothing, so callers can pass the
// result of an optional setup straight through.
//
// # Usage
//
//	m := telemetry.NewMetrics()
//	mgr := link.NewManager(link.Config{URL: url, Observer: m})
//	srv := telemetry.NewServer(":9181", m)
//	go srv.ListenAndServe(ctx)
package telemetry
