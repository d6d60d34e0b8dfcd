// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the dashboard's key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Rename    key.Binding
	Delete    key.Binding
	Copy      key.Binding
	Refresh   key.Binding
	ClearLog  key.Binding
	Export    key.Binding
	Reconnect key.Binding
	Help      key.Binding
	Quit      key.Binding

	Confirm key.Binding
	Deny    key.Binding
	Submit  key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous user"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next user"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "first user"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "last user"),
		),
		Rename: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("Enter/e", "rename"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy UID"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh users"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log view"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export CSV"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reconnect now"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/Esc", "cancel"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap for browse mode.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rename, k.Delete, k.Refresh, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Rename, k.Delete, k.Copy},
		{k.Refresh, k.ClearLog, k.Export, k.Reconnect},
		{k.Help, k.Quit},
	}
}

// modeKeys narrows the status bar hints to the active mode.
type modeKeys struct {
	bindings []key.Binding
}

func (m modeKeys) ShortHelp() []key.Binding  { return m.bindings }
func (m modeKeys) FullHelp() [][]key.Binding { return [][]key.Binding{m.bindings} }
