// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/session"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Amber)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)
)

// setupColors points lipgloss at the profile one-shot output should use.
func setupColors() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// RenderNotice formats a session notice as one status line.
func RenderNotice(n session.Notice) string {
	if n.OK {
		return SuccessStyle.Render(styles.StatusIndicators.Success) + " " + n.Text
	}
	return ErrorStyle.Render(styles.StatusIndicators.Error) + " " + n.Text
}
