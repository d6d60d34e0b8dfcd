// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand, device address, uptime and the
// connection pill.
type Header struct {
	Title  string
	Host   string
	Uptime string
	State  link.State
	Width  int

	spinner spinner.Model
	// spinning is set while a tick is scheduled.
	spinning bool
	theme    *styles.Theme
}

// NewHeader creates a header in the Connecting state.
func NewHeader(theme *styles.Theme) *Header {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return &Header{
		Title:   "Attendance",
		State:   link.Connecting,
		Width:   80,
		spinner: s,
		theme:   theme,
	}
}

func (h *Header) SetWidth(width int) { h.Width = width }
func (h *Header) SetHost(host string) { h.Host = host }
func (h *Header) SetUptime(uptime string) { h.Uptime = uptime }
func (h *Header) SetTheme(theme *styles.Theme) { h.theme = theme }

// SetState changes the pill. Entering Connecting restarts the spinner;
// the returned command must be run for it to animate.
func (h *Header) SetState(state link.State) tea.Cmd {
	h.State = state
	return h.startSpinner()
}

// Init starts the spinner when the header is connecting.
func (h *Header) Init() tea.Cmd {
	return h.startSpinner()
}

func (h *Header) startSpinner() tea.Cmd {
	if h.State != link.Connecting || h.spinning {
		return nil
	}
	h.spinning = true
	return h.spinner.Tick
}

// Update advances the spinner. It returns nil for foreign messages and
// stops ticking once the link has left Connecting.
func (h *Header) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	if h.State != link.Connecting {
		h.spinning = false
		return nil
	}
	var cmd tea.Cmd
	h.spinner, cmd = h.spinner.Update(msg)
	return cmd
}

// Pill renders the connection indicator.
func (h *Header) Pill() string {
	switch h.State {
	case link.Online:
		return h.theme.PillOnline.Render(styles.StatusIndicators.Active + " " + h.State.String())
	case link.Offline:
		return h.theme.PillOffline.Render(styles.StatusIndicators.Error + " " + h.State.String())
	default:
		return h.theme.PillConnecting.Render(h.spinner.View() + " " + h.State.String())
	}
}

// View renders the header on one line.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	left := h.theme.HeaderTitle.Render(h.Title)
	if h.Host != "" {
		left += h.theme.Uptime.Render("  " + h.Host)
	}

	right := h.Pill()
	if h.Uptime != "" {
		right = h.theme.Uptime.Render("up "+h.Uptime) + " " + right
	}

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return h.theme.Header.Width(width).Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
