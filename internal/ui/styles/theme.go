// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by the [ui] theme setting.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
	ModeASCII = "ascii"
)

// ValidMode reports whether mode is a known theme mode.
func ValidMode(mode string) bool {
	switch strings.ToLower(mode) {
	case ModeAuto, ModeDark, ModeLight, ModeASCII, "":
		return true
	}
	return false
}

// Theme holds the styled components of the dashboard.
type Theme struct {
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Uptime      lipgloss.Style

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	RowNumber   lipgloss.Style
	RowName     lipgloss.Style
	RowUID      lipgloss.Style
	RowTime     lipgloss.Style
	RowSelected lipgloss.Style
	RowFlash    lipgloss.Style
	RowPending  lipgloss.Style
	Placeholder lipgloss.Style

	StatLabel lipgloss.Style
	StatValue lipgloss.Style
	StatBar   lipgloss.Style

	PillOnline     lipgloss.Style
	PillConnecting lipgloss.Style
	PillOffline    lipgloss.Style

	Prompt       lipgloss.Style
	PromptDanger lipgloss.Style
	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme detects the terminal and builds the styles for mode.
func NewTheme(mode string) *Theme {
	mode = strings.ToLower(mode)
	if mode == "" {
		mode = ModeAuto
	}

	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()
	switch mode {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	case ModeASCII:
		profile = termenv.Ascii
	}
	lipgloss.SetColorProfile(profile)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{Mode: mode, IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Uptime = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PanelTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)

	t.RowNumber = lipgloss.NewStyle().Foreground(Purple)
	t.RowName = lipgloss.NewStyle().Foreground(TextPrimary)
	t.RowUID = lipgloss.NewStyle().Foreground(TextMuted)
	t.RowTime = lipgloss.NewStyle().Foreground(TextSecondary)
	t.RowSelected = lipgloss.NewStyle().Background(SelectionBg).Bold(true)
	t.RowFlash = lipgloss.NewStyle().Background(EmeraldDeep).Foreground(Emerald).Bold(true)
	t.RowPending = lipgloss.NewStyle().Foreground(Amber).Italic(true)
	t.Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.StatLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatValue = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.StatBar = lipgloss.NewStyle().Foreground(Cyan)

	pill := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	t.PillOnline = pill.Foreground(Emerald)
	t.PillConnecting = pill.Foreground(Amber)
	t.PillOffline = pill.Foreground(Rose)

	t.Prompt = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
	t.PromptDanger = t.Prompt.BorderForeground(Rose)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 80 {
		return LayoutNarrow
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // panels stacked
	LayoutWide                     // panels side by side
)
