// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harissfx/AbsensiESP32/internal/config"
)

func TestOpenLog_WritesOnlyToFile(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := config.Default()
	cfg.Log.Path = filepath.Join(t.TempDir(), "logs", "dashboard.log")

	f, err := openLog(cfg)
	require.NoError(t, err)
	assert.Same(t, f, log.Writer())

	log.Printf("DASHBOARD_TEST | ok=true")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(cfg.Log.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DASHBOARD_TEST | ok=true")
}
