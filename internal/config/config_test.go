// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ws://192.168.4.1:81/", cfg.PushURL())
	assert.Equal(t, "http://192.168.4.1", cfg.HTTPBaseURL())
	assert.Equal(t, 3*time.Second, cfg.Link.ReconnectDelay())
	assert.Equal(t, 2800*time.Millisecond, cfg.UI.ToastDuration())
	assert.Equal(t, 50, cfg.Device.Capacity)
	assert.Zero(t, cfg.Commands.RequestTimeout())
}

func TestHTTPBaseURL_NonDefaultPort(t *testing.T) {
	cfg := Default()
	cfg.Device.Host = "localhost"
	cfg.Device.HTTPPort = 8080
	assert.Equal(t, "http://localhost:8080", cfg.HTTPBaseURL())
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[device]
host = "10.0.0.7"

[ui]
toast_ms = 1000
theme = "ascii"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", cfg.Device.Host)
	assert.Equal(t, 81, cfg.Device.WSPort, "unset keys keep defaults")
	assert.Equal(t, 1000, cfg.UI.ToastMs)
	assert.Equal(t, "ascii", cfg.UI.Theme)
}

func TestLoadFromPath_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"device":{"ws_port":9001}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Device.WSPort)
	assert.Equal(t, "192.168.4.1", cfg.Device.Host)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "ui.theme", verrs[0].Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad ws port", func(c *Config) { c.Device.WSPort = 70000 }, "device.ws_port"},
		{"bad host", func(c *Config) { c.Device.Host = "http://x/" }, "device.host"},
		{"zero capacity", func(c *Config) { c.Device.Capacity = -1 }, "device.capacity"},
		{"tiny reconnect", func(c *Config) { c.Link.ReconnectDelayMs = 5 }, "link.reconnect_delay_ms"},
		{"negative read timeout", func(c *Config) { c.Link.ReadTimeoutMs = -1 }, "link.read_timeout_ms"},
		{"negative toast", func(c *Config) { c.UI.ToastMs = -1 }, "ui.toast_ms"},
		{"bad metrics addr", func(c *Config) { c.Metrics.Listen = "nocolon" }, "metrics.listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			verrs, ok := err.(ValidateErrors)
			require.True(t, ok)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ABSENSI_HOST", "device.lan")
	t.Setenv("ABSENSI_WS_PORT", "8181")
	t.Setenv("ABSENSI_HTTP_PORT", "not-a-number")
	t.Setenv("ABSENSI_LOG", "/tmp/dash.log")
	t.Setenv("ABSENSI_METRICS", ":9181")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "device.lan", cfg.Device.Host)
	assert.Equal(t, 8181, cfg.Device.WSPort)
	assert.Equal(t, 80, cfg.Device.HTTPPort)
	assert.Equal(t, "/tmp/dash.log", cfg.Log.Path)
	assert.Equal(t, ":9181", cfg.Metrics.Listen)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Device.Host = "10.1.1.1"

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(cfg, tomlPath))
	got, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	jsonPath := filepath.Join(dir, "sub", "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	got, err = LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_UsesHomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, ActivePath())

	require.NoError(t, Save(cfg))
	p, _ := ConfigPathTOML()
	assert.Equal(t, p, ActivePath())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, path, w.Path())

	cfg := Default()
	cfg.UI.ToastMs = 900
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-w.Updates():
		assert.Equal(t, 900, got.UI.ToastMs)
	case err := <-w.Errors():
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_ReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[ui\n"), 0600))

	select {
	case err := <-w.Errors():
		assert.Error(t, err)
	case <-w.Updates():
		t.Fatal("broken file must not produce an update")
	case <-time.After(3 * time.Second):
		t.Fatal("no error after broken write")
	}
}
