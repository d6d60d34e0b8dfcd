// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harissfx/AbsensiESP32/internal/config"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/session"
	"github.com/harissfx/AbsensiESP32/internal/ui/components"
	"github.com/harissfx/AbsensiESP32/internal/ui/render"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// DefaultFlashDuration is how long a fresh check-in stays emphasised.
const DefaultFlashDuration = 1500 * time.Millisecond

// refreshTimeout bounds handing getUsers to the link.
const refreshTimeout = 2 * time.Second

// mode is what keys currently drive.
type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeConfirm
	modeHelp
)

// Options configure a dashboard.
type Options struct {
	Session *session.Session
	Theme   *styles.Theme
	// Host is shown in the header.
	Host string
	// ToastDuration and FlashDuration default to 2800ms and 1500ms.
	ToastDuration time.Duration
	FlashDuration time.Duration
	// ExportDir receives CSV downloads (default ".").
	ExportDir string
	// Watcher is optional; its reloads restyle the dashboard.
	Watcher *config.Watcher
	// Now overrides the clock used for export file names.
	Now func() time.Time
	// CopyUID overrides the clipboard write.
	CopyUID func(uid string) error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the dashboard.
type Model struct {
	session *session.Session
	theme   *styles.Theme
	keys    KeyMap

	header   *components.Header
	status   *components.StatusBar
	notifier *components.Notifier
	input    textinput.Model

	mode   mode
	table  render.Table
	cursor int
	// selected follows the user across snapshot replacements.
	selected string
	// target is the user a rename or delete prompt is about.
	target model.User

	flashDuration time.Duration
	exportDir     string
	watcher       *config.Watcher
	now           func() time.Time
	copyUID       func(string) error

	width  int
	height int
	closed bool
}

// New creates a dashboard over a started session.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	flash := opts.FlashDuration
	if flash <= 0 {
		flash = DefaultFlashDuration
	}
	dir := opts.ExportDir
	if dir == "" {
		dir = "."
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	copyUID := opts.CopyUID
	if copyUID == nil {
		copyUID = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Prompt = "Name: "
	ti.CharLimit = model.MaxNameLength
	ti.Placeholder = "new name"
	ti.Width = model.MaxNameLength + 1

	header := components.NewHeader(theme)
	header.SetHost(opts.Host)
	header.State = opts.Session.State()

	m := &Model{
		session:       opts.Session,
		theme:         theme,
		keys:          DefaultKeyMap(),
		header:        header,
		status:        components.NewStatusBar(theme),
		notifier:      components.NewNotifier(opts.ToastDuration),
		input:         ti,
		flashDuration: flash,
		exportDir:     dir,
		watcher:       opts.Watcher,
		now:           now,
		copyUID:       copyUID,
		width:         80,
		height:        24,
	}
	m.reproject()
	return m
}

// Init starts listening to the link and the config file.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.header.Init(),
		waitForEvent(m.session.Events()),
		waitForConfig(m.watcher),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

func waitForEvent(events <-chan link.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return LinkClosedMsg{}
		}
		return LinkEventMsg{Event: ev}
	}
}

func waitForConfig(w *config.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Updates():
			if !ok {
				return nil
			}
			return ConfigReloadedMsg{Config: cfg}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return ConfigErrorMsg{Err: err}
		}
	}
}

func flashTimer(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return FlashExpiredMsg{Gen: gen}
	})
}

func runCall(c session.Call) tea.Cmd {
	return func() tea.Msg {
		return CallDoneMsg{Call: c, Err: c.Run(context.Background())}
	}
}

func refreshUsers(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		return RefreshDoneMsg{Err: s.Refresh(ctx)}
	}
}

func exportCSV(s *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		var buf bytes.Buffer
		n, err := s.Export(context.Background(), &buf)
		if err == nil {
			err = util.AtomicWriteFile(path, buf.Bytes(), 0644)
		}
		return ExportDoneMsg{Path: path, Bytes: n, Err: err}
	}
}

func copyToClipboard(write func(string) error, uid string) tea.Cmd {
	return func() tea.Msg {
		return CopyDoneMsg{UID: uid, Err: write(uid)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LinkEventMsg:
		cmd := m.handleLinkEvent(msg.Event)
		return m, tea.Batch(cmd, waitForEvent(m.session.Events()))

	case LinkClosedMsg:
		m.closed = true
		return m, nil

	case FlashExpiredMsg:
		m.session.ExpireFlash(msg.Gen)
		m.reproject()
		return m, nil

	case CallDoneMsg:
		notice := m.session.Finish(msg.Call, msg.Err)
		if msg.Err != nil {
			log.Printf("DASHBOARD_CALL_FAILED | session=%s op=%s uid=%s error=%v", m.session.ID(), msg.Call.Op, msg.Call.Target.UID, msg.Err)
		}
		m.reproject()
		return m, m.notify(notice)

	case RefreshDoneMsg:
		switch {
		case msg.Err == nil:
			return m, m.notifier.OK("Refreshing users")
		case errors.Is(msg.Err, link.ErrNotOnline):
			return m, m.notifier.Err("Not connected")
		case errors.Is(msg.Err, session.ErrRateLimited):
			return m, m.notifier.Err("Refresh limited, try again shortly")
		default:
			return m, m.notifier.Err("Refresh failed")
		}

	case ExportDoneMsg:
		if msg.Err != nil {
			log.Printf("DASHBOARD_EXPORT_FAILED | session=%s path=%s error=%v", m.session.ID(), msg.Path, msg.Err)
			return m, m.notifier.Err("Export failed")
		}
		return m, m.notifier.OK(fmt.Sprintf("Saved %s (%d bytes)", filepath.Base(msg.Path), msg.Bytes))

	case CopyDoneMsg:
		if msg.Err != nil {
			return m, m.notifier.Err("Clipboard unavailable")
		}
		return m, m.notifier.OK("Copied " + msg.UID)

	case ConfigReloadedMsg:
		m.applyUI(msg.Config.UI)
		return m, tea.Batch(m.notifier.OK("Settings reloaded"), waitForConfig(m.watcher))

	case ConfigErrorMsg:
		return m, tea.Batch(m.notifier.Err("Settings not reloaded: invalid config"), waitForConfig(m.watcher))

	case components.ToastExpiredMsg:
		m.notifier.Update(msg)
		return m, nil
	}

	if cmd := m.header.Update(msg); cmd != nil {
		return m, cmd
	}
	if m.mode == modeRename {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleLinkEvent(ev link.Event) tea.Cmd {
	out := m.session.HandleEvent(ev)
	var cmds []tea.Cmd
	if out.StateChanged {
		cmds = append(cmds, m.header.SetState(out.State))
	}
	m.reproject()

	if out.Notice != nil {
		cmds = append(cmds, m.notify(*out.Notice))
	}
	if out.FlashGen != 0 {
		cmds = append(cmds, flashTimer(m.flashDuration, out.FlashGen))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modeHelp:
		m.mode = modeBrowse
		return m, nil

	case modeRename:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.endPrompt()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m, m.submitRename()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modeConfirm:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.submitDelete()
		case key.Matches(msg, m.keys.Deny):
			m.endPrompt()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(0)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.table.Users) - 1)
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	case key.Matches(msg, m.keys.Rename):
		return m, m.startRename()
	case key.Matches(msg, m.keys.Delete):
		return m, m.startDelete()
	case key.Matches(msg, m.keys.Copy):
		if row, ok := m.selectedRow(); ok {
			return m, copyToClipboard(m.copyUID, row.UID)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, refreshUsers(m.session)
	case key.Matches(msg, m.keys.ClearLog):
		notice := m.session.ClearLogView()
		m.reproject()
		return m, m.notify(notice)
	case key.Matches(msg, m.keys.Export):
		name := "attendance-" + m.now().Format("20060102-150405") + ".csv"
		return m, exportCSV(m.session, filepath.Join(m.exportDir, name))
	case key.Matches(msg, m.keys.Reconnect):
		if m.session.Reconnect() {
			return m, m.notifier.OK("Reconnecting")
		}
		return m, m.notifier.Err("Link is not offline")
	}
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m *Model) startRename() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Pending {
		return m.notify(session.RefusalNotice(session.ErrPending))
	}
	m.mode = modeRename
	m.target = model.User{UID: row.UID, Name: row.Name}
	m.input.SetValue(row.Name)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) submitRename() tea.Cmd {
	call, err := m.session.BeginRename(m.target.UID, m.input.Value())
	if err != nil {
		// an invalid name keeps the editor open for correction
		if errors.Is(err, session.ErrUnknownUser) || errors.Is(err, session.ErrPending) {
			m.endPrompt()
		}
		return m.notify(session.RefusalNotice(err))
	}
	m.endPrompt()
	m.reproject()
	return runCall(call)
}

func (m *Model) startDelete() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if row.Pending {
		return m.notify(session.RefusalNotice(session.ErrPending))
	}
	m.mode = modeConfirm
	m.target = model.User{UID: row.UID, Name: row.Name}
	return nil
}

func (m *Model) submitDelete() tea.Cmd {
	uid := m.target.UID
	m.endPrompt()
	call, err := m.session.BeginDelete(uid)
	if err != nil {
		return m.notify(session.RefusalNotice(err))
	}
	m.reproject()
	return runCall(call)
}

func (m *Model) endPrompt() {
	m.mode = modeBrowse
	m.target = model.User{}
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) notify(n session.Notice) tea.Cmd {
	if n.OK {
		return m.notifier.OK(n.Text)
	}
	return m.notifier.Err(n.Text)
}

// =============================================================================
// STATE
// =============================================================================

// reproject rebuilds the table and keeps the selection on the same UID.
func (m *Model) reproject() {
	m.table = m.session.Table()
	m.header.SetUptime(m.table.Stats.Uptime)

	if m.selected != "" {
		for i, r := range m.table.Users {
			if r.UID == m.selected {
				m.cursor = i
				return
			}
		}
	}
	m.moveCursor(m.cursor)
}

func (m *Model) moveCursor(i int) {
	n := len(m.table.Users)
	if n == 0 {
		m.cursor = 0
		m.selected = ""
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	m.cursor = i
	m.selected = m.table.Users[i].UID
}

func (m *Model) selectedRow() (render.UserRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.table.Users) {
		return render.UserRow{}, false
	}
	return m.table.Users[m.cursor], true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.status.SetWidth(width)
}

// applyUI takes the reloadable part of the configuration.
func (m *Model) applyUI(ui config.UIConfig) {
	m.notifier.SetDuration(ui.ToastDuration())
	if d := ui.FlashDuration(); d > 0 {
		m.flashDuration = d
	}
	if ui.Theme != m.theme.Mode {
		m.theme = styles.NewTheme(ui.Theme)
		m.theme.SetSize(m.width, m.height)
		m.header.SetTheme(m.theme)
		m.status.SetTheme(m.theme)
	}
	log.Printf("DASHBOARD_SETTINGS | session=%s toast=%s flash=%s theme=%s", m.session.ID(), m.notifier.Duration(), m.flashDuration, m.theme.Mode)
}

// Closed reports whether the link's event stream has ended.
func (m *Model) Closed() bool {
	return m.closed
}
