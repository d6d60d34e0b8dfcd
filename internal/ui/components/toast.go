// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// Severity changes how a toast is drawn. It never changes its lifetime.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityErr
)

// DefaultToastDuration is how long a toast stays up.
const DefaultToastDuration = 2800 * time.Millisecond

// Toast is the notification currently on screen.
type Toast struct {
	Message    string
	Severity   Severity
	Generation uint64
	ShownAt    time.Time
}

// ToastExpiredMsg is delivered when a toast's dismissal timer fires.
type ToastExpiredMsg struct {
	Generation uint64
}

// =============================================================================
// NOTIFIER
// =============================================================================

// Notifier shows one toast at a time. A new toast replaces the current one
// and restarts the dismissal timer; ticks from replaced toasts are ignored.
//
// Notifier is not safe for concurrent use. It belongs to the Bubble Tea
// model and is only touched from Update.
type Notifier struct {
	duration   time.Duration
	current    *Toast
	generation uint64
	now        func() time.Time
}

// NewNotifier creates a notifier; d <= 0 selects DefaultToastDuration.
func NewNotifier(d time.Duration) *Notifier {
	n := &Notifier{now: time.Now}
	n.SetDuration(d)
	return n
}

// SetDuration changes the lifetime of toasts shown from now on.
func (n *Notifier) SetDuration(d time.Duration) {
	if d <= 0 {
		d = DefaultToastDuration
	}
	n.duration = d
}

// Duration returns the toast lifetime.
func (n *Notifier) Duration() time.Duration {
	return n.duration
}

// Show replaces the current toast and returns the command that will
// dismiss it.
func (n *Notifier) Show(message string, sev Severity) tea.Cmd {
	n.generation++
	gen := n.generation
	n.current = &Toast{
		Message:    message,
		Severity:   sev,
		Generation: gen,
		ShownAt:    n.now(),
	}
	return tea.Tick(n.duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Generation: gen}
	})
}

// OK shows a success toast.
func (n *Notifier) OK(message string) tea.Cmd {
	return n.Show(message, SeverityOK)
}

// Err shows an error toast.
func (n *Notifier) Err(message string) tea.Cmd {
	return n.Show(message, SeverityErr)
}

// Update handles ToastExpiredMsg and reports whether msg was consumed.
func (n *Notifier) Update(msg tea.Msg) bool {
	exp, ok := msg.(ToastExpiredMsg)
	if !ok {
		return false
	}
	if n.current != nil && n.current.Generation == exp.Generation {
		n.current = nil
	}
	return true
}

// Dismiss hides the current toast early.
func (n *Notifier) Dismiss() {
	n.current = nil
}

// Current returns the visible toast, if any.
func (n *Notifier) Current() (Toast, bool) {
	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// Visible reports whether a toast is on screen.
func (n *Notifier) Visible() bool {
	return n.current != nil
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// View renders the current toast, or "" when none is visible.
func (n *Notifier) View(width int) string {
	t, ok := n.Current()
	if !ok {
		return ""
	}
	return RenderToast(t, width)
}

// RenderToast renders a single toast notification.
func RenderToast(t Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	color := styles.Emerald
	icon := styles.StatusIndicators.Success
	if t.Severity == SeverityErr {
		color = styles.Rose
		icon = styles.StatusIndicators.Error
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	message := t.Message
	if len(message) > maxWidth-10 {
		message = wrapToastText(message, maxWidth-10)
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(iconStyle.Render(icon+" ") + messageStyle.Render(message))
}

// wrapToastText performs simple word wrapping for toast messages.
func wrapToastText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var line strings.Builder
	for _, word := range words {
		switch {
		case line.Len() == 0:
			line.WriteString(word)
		case line.Len()+1+len(word) <= maxWidth:
			line.WriteString(" ")
			line.WriteString(word)
		default:
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(word)
		}
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
