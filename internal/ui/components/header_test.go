// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"

	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

func TestHeader_Pill(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeASCII))

	tests := []struct {
		state link.State
		want  string
	}{
		{link.Connecting, "CONNECTING"},
		{link.Online, "[*] ONLINE"},
		{link.Offline, "[X] OFFLINE"},
	}
	for _, tt := range tests {
		h.SetState(tt.state)
		if got := h.Pill(); !strings.Contains(got, tt.want) {
			t.Errorf("Pill(%s) = %q, want it to contain %q", tt.state, got, tt.want)
		}
	}
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeASCII))
	h.SetWidth(80)
	h.SetHost("192.168.4.1")
	h.SetUptime("01:02:03")
	h.SetState(link.Online)

	out := h.View()
	for _, want := range []string{"Attendance", "192.168.4.1", "up 01:02:03", "ONLINE"} {
		if !strings.Contains(out, want) {
			t.Errorf("Header missing %q: %q", want, out)
		}
	}
	if h.Update("ignored") != nil {
		t.Error("Foreign message should not produce a command")
	}
}

type testKeys struct{ bindings []key.Binding }

func (k testKeys) ShortHelp() []key.Binding { return k.bindings }
func (k testKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.bindings} }

func TestStatusBar_View(t *testing.T) {
	s := NewStatusBar(styles.NewTheme(styles.ModeASCII))
	s.SetWidth(100)
	s.SetNote("3 users")

	keys := testKeys{bindings: []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}}
	out := s.View(keys)
	for _, want := range []string{"rename", "quit", "3 users"} {
		if !strings.Contains(out, want) {
			t.Errorf("Status bar missing %q: %q", want, out)
		}
	}
}

func TestHeader_SpinnerOnlyWhileConnecting(t *testing.T) {
	h := NewHeader(styles.NewTheme(styles.ModeASCII))

	start := h.Init()
	if start == nil {
		t.Fatal("Init should start the spinner while connecting")
	}
	next := h.Update(start())
	if next == nil {
		t.Fatal("Spinner should keep ticking while connecting")
	}

	if cmd := h.SetState(link.Online); cmd != nil {
		t.Error("Going online should not schedule a tick")
	}
	if h.Update(next()) != nil {
		t.Error("Spinner should stop once the link is online")
	}

	restart := h.SetState(link.Connecting)
	if restart == nil {
		t.Fatal("Reconnecting should restart the spinner")
	}
	if h.SetState(link.Connecting) != nil {
		t.Error("A running spinner should not be started twice")
	}
	if h.Update(restart()) == nil {
		t.Error("Restarted spinner should tick")
	}
}
