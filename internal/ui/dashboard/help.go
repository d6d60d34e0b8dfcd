// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// helpMarkdown builds the overlay text from the key map so the two never
// drift apart.
func helpMarkdown(k KeyMap, exportURL string) string {
	var sb strings.Builder
	sb.WriteString("# Keys\n\n")
	sb.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range k.FullHelp() {
		for _, b := range group {
			h := b.Help()
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	sb.WriteString("\n# Notes\n\n")
	sb.WriteString("- Renames and deletes show up once the device pushes the new user list.\n")
	sb.WriteString("- A row marked `" + styles.StatusIndicators.Pending + "` is waiting for the device.\n")
	sb.WriteString("- The link retries every few seconds while offline.\n")
	if exportURL != "" {
		sb.WriteString("- CSV export is also available at <" + exportURL + ">.\n")
	}
	sb.WriteString("\nPress any key to close.\n")
	return sb.String()
}

// renderHelp draws the help overlay with glamour, falling back to the raw
// markdown when the renderer cannot be built.
func (m *Model) renderHelp() string {
	md := helpMarkdown(m.keys, m.session.ExportURL())

	style := "dark"
	switch {
	case m.theme.Mode == styles.ModeASCII:
		style = "notty"
	case !m.theme.IsDark:
		style = "light"
	}

	wrap := max(m.width-4, 20)
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return lipgloss.NewStyle().MaxHeight(max(m.height, 1)).Render(out)
}
