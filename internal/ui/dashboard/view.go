// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/ui/render"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

const (
	statBarWidth = 20
	// panelChrome is the border plus title line of a panel.
	panelChrome = 3
	// usersPanelWidth fits a selected, pending user row.
	usersPanelWidth = 50
	// logsPanelWidth fits a log row without wrapping.
	logsPanelWidth = 66
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the dashboard. Layout: header, users and log panels (side
// by side when wide, stacked when narrow), stats, optional prompt and
// toast, status bar.
func (m *Model) View() string {
	if m.mode == modeHelp {
		return m.renderHelp()
	}

	header := m.header.View()
	stats := m.renderStats()
	prompt := m.renderPrompt()
	toast := m.notifier.View(m.width)
	status := m.renderStatusBar()

	used := lipgloss.Height(header) + lipgloss.Height(stats) + lipgloss.Height(status)
	if prompt != "" {
		used += lipgloss.Height(prompt)
	}
	if toast != "" {
		used += lipgloss.Height(toast)
	}
	avail := m.height - used

	var body string
	wide := m.theme.GetLayoutMode() == styles.LayoutWide && m.width >= usersPanelWidth+logsPanelWidth
	if wide {
		rows := max(avail-panelChrome, 1)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderUsers(usersPanelWidth, rows),
			m.renderLogs(m.width-usersPanelWidth, rows),
		)
	} else {
		rows := max((avail-2*panelChrome)/2, 1)
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.renderUsers(m.width, rows),
			m.renderLogs(m.width, rows),
		)
	}

	parts := []string{header, body, stats}
	if prompt != "" {
		parts = append(parts, prompt)
	}
	if toast != "" {
		parts = append(parts, toast)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// PANELS
// =============================================================================

func (m *Model) panel(title string, width int, lines []string) string {
	content := m.theme.PanelTitle.Render(title) + "\n" + strings.Join(lines, "\n")
	// the border adds two columns
	return m.theme.Panel.Width(max(width-2, 10)).Render(content)
}

func (m *Model) renderUsers(width, rows int) string {
	t := m.table
	title := fmt.Sprintf("Users (%d)", len(t.Users))
	if len(t.Users) == 0 {
		return m.panel(title, width, []string{m.theme.Placeholder.Render(t.UserCaption)})
	}

	start, end := window(len(t.Users), m.cursor, rows)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.userLine(t.Users[i], i == m.cursor))
	}
	return m.panel(title, width, lines)
}

func (m *Model) userLine(r render.UserRow, selected bool) string {
	name := util.PadRight(util.TruncateWidth(r.Name, render.NameWidth), render.NameWidth)
	uid := util.PadRight(util.TruncateWidth(r.UID, render.UIDWidth), render.UIDWidth)

	marker := "  "
	if selected {
		marker = "> "
	}
	line := marker + m.theme.RowNumber.Render(r.Number) + "  " + m.theme.RowName.Render(name) + "  " + m.theme.RowUID.Render(uid)
	if r.Pending {
		line += " " + m.theme.RowPending.Render(styles.StatusIndicators.Pending)
	}
	if selected {
		return m.theme.RowSelected.Render(line)
	}
	return line
}

func (m *Model) renderLogs(width, rows int) string {
	t := m.table
	title := fmt.Sprintf("Attendance (%d)", len(t.Logs))
	if len(t.Logs) == 0 {
		return m.panel(title, width, []string{m.theme.Placeholder.Render(t.LogCaption)})
	}

	shown := t.Logs
	more := 0
	if len(shown) > rows {
		// keep one line for the overflow note
		cut := max(rows-1, 1)
		more = len(shown) - cut
		shown = shown[:cut]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, r := range shown {
		lines = append(lines, m.logLine(r))
	}
	if more > 0 {
		lines = append(lines, m.theme.Placeholder.Render(fmt.Sprintf("... %d older", more)))
	}
	return m.panel(title, width, lines)
}

func (m *Model) logLine(r render.LogRow) string {
	if r.Flash {
		return m.theme.RowFlash.Render(render.LogLine(r))
	}
	name := util.PadRight(util.TruncateWidth(r.Name, render.NameWidth), render.NameWidth)
	uid := util.PadRight(util.TruncateWidth(r.UID, render.UIDWidth), render.UIDWidth)
	return m.theme.RowNumber.Render(r.Number) + "  " +
		m.theme.RowName.Render(name) + "  " +
		m.theme.RowUID.Render(uid) + "  " +
		m.theme.RowTime.Render(r.Time)
}

func (m *Model) renderStats() string {
	s := m.table.Stats
	stat := func(label, value string, fraction float64) string {
		return m.theme.StatLabel.Render(util.PadRight(label, 10)) +
			m.theme.StatValue.Render(util.PadRight(value, 7)) +
			m.theme.StatBar.Render(styles.RenderBar(statBarWidth, fraction))
	}

	last := "-"
	if s.HasLast() {
		last = s.LastName + " @ " + s.LastTime
	}
	lines := []string{
		stat("Users", fmt.Sprintf("%d/%d", s.Users, s.Capacity), s.UsersFraction),
		stat("Check-ins", fmt.Sprintf("%d", s.Logs), s.LogsFraction),
		stat("Free", fmt.Sprintf("%d", s.Free), s.FreeFraction),
		m.theme.StatLabel.Render(util.PadRight("Last", 10)) + m.theme.StatValue.Render(last),
	}
	return m.panel("Stats", m.width, lines)
}

func (m *Model) renderPrompt() string {
	width := max(m.width-2, 10)
	switch m.mode {
	case modeRename:
		title := m.theme.PanelTitle.Render("Rename " + m.target.UID)
		return m.theme.Prompt.Width(width).Render(title + "\n" + m.input.View())
	case modeConfirm:
		return m.theme.PromptDanger.Width(width).Render(
			fmt.Sprintf("Delete %s (%s)? This cannot be undone. [y/N]", m.target.Name, m.target.UID))
	default:
		return ""
	}
}

func (m *Model) renderStatusBar() string {
	note := fmt.Sprintf("%d users  %d check-ins", m.table.Stats.Users, m.table.Stats.Logs)
	if m.closed {
		note = "link closed"
	}
	m.status.SetNote(note)
	return m.status.View(m.hints())
}

// hints returns the key help for the current mode.
func (m *Model) hints() help.KeyMap {
	switch m.mode {
	case modeRename:
		return modeKeys{bindings: []key.Binding{m.keys.Submit, m.keys.Cancel}}
	case modeConfirm:
		return modeKeys{bindings: []key.Binding{m.keys.Confirm, m.keys.Deny}}
	default:
		return m.keys
	}
}

// window returns the slice bounds of size rows keeping cursor visible.
func window(total, cursor, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
