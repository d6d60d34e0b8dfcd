// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// StatusBar is the bottom line: key hints on the left, a short status
// note on the right.
type StatusBar struct {
	Width int
	Note  string

	help  help.Model
	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	s := &StatusBar{Width: 80, help: help.New()}
	s.SetTheme(theme)
	return s
}

// SetTheme restyles the bar.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
	s.help.Styles.ShortKey = theme.ShortcutKey
	s.help.Styles.ShortDesc = theme.ShortcutDesc
	s.help.Styles.ShortSeparator = theme.ShortcutDesc
	s.help.Styles.FullKey = theme.ShortcutKey
	s.help.Styles.FullDesc = theme.ShortcutDesc
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
	s.help.Width = width
}

// SetNote sets the right-hand note.
func (s *StatusBar) SetNote(note string) {
	s.Note = note
}

// View renders the bar with the short help of keys.
func (s *StatusBar) View(keys help.KeyMap) string {
	note := s.theme.Footer.Render(s.Note)
	s.help.Width = s.Width - lipgloss.Width(note) - 2
	if s.help.Width < 0 {
		s.help.Width = 0
	}
	hints := s.help.ShortHelpView(keys.ShortHelp())

	gap := s.Width - lipgloss.Width(hints) - lipgloss.Width(note)
	if gap < 1 {
		gap = 1
	}
	return hints + lipgloss.NewStyle().Width(gap).Render("") + note
}
