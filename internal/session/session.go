// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/harissfx/AbsensiESP32/internal/command"
	"github.com/harissfx/AbsensiESP32/internal/link"
	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
	"github.com/harissfx/AbsensiESP32/internal/store"
	"github.com/harissfx/AbsensiESP32/internal/telemetry"
	"github.com/harissfx/AbsensiESP32/internal/ui/render"
)

var (
	// ErrUnknownUser means the targeted UID is no longer in the user list.
	ErrUnknownUser = errors.New("user is no longer on the device")
	// ErrPending means a command for the same user is still in flight.
	ErrPending = errors.New("a command for this user is still running")
	// ErrRateLimited means a refresh was asked for too soon after the last.
	ErrRateLimited = errors.New("refresh requested too often")
)

// DefaultRefreshPerMinute bounds operator refreshes sent to the device.
const DefaultRefreshPerMinute = 12

// =============================================================================
// COLLABORATORS
// =============================================================================

// Link is the push channel as seen by a session.
type Link interface {
	Start()
	Close() error
	State() link.State
	Events() <-chan link.Event
	Send(ctx context.Context, cmd protocol.Command) error
	Reconnect() bool
}

// Commands is the request/response channel as seen by a session.
type Commands interface {
	Rename(ctx context.Context, target command.Target, name string) error
	Delete(ctx context.Context, target command.Target) error
	DownloadExport(ctx context.Context, w io.Writer) (int64, error)
	ExportURL() string
}

var (
	_ Link     = (*link.Manager)(nil)
	_ Commands = (*command.Client)(nil)
)

// Config holds what a session is built from.
type Config struct {
	Link     Link
	Commands Commands
	Metrics  *telemetry.Metrics

	// ID tags log lines; a random UUID when empty.
	ID string
	// Capacity is the device's user slot count.
	Capacity int
	// RefreshPerMinute limits Refresh (default 12, negative disables the limit).
	RefreshPerMinute int
}

// =============================================================================
// SESSION
// =============================================================================

// Session coordinates one operator's view of the device.
type Session struct {
	id      string
	started time.Time

	store    *store.Store
	link     Link
	commands Commands
	metrics  *telemetry.Metrics
	capacity int

	state    link.State
	pending  map[string]bool
	refresh  *rate.Limiter
	flashGen uint64

	gotUsers bool
	gotLogs  bool
}

// New creates a session. The link is not started.
func New(cfg Config) *Session {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = model.DefaultCapacity
	}

	var limiter *rate.Limiter
	switch {
	case cfg.RefreshPerMinute < 0:
		limiter = rate.NewLimiter(rate.Inf, 1)
	case cfg.RefreshPerMinute == 0:
		limiter = rate.NewLimiter(rate.Every(time.Minute/DefaultRefreshPerMinute), 1)
	default:
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RefreshPerMinute)), 1)
	}

	state := link.Connecting
	if cfg.Link != nil {
		state = cfg.Link.State()
	}

	return &Session{
		id:       id,
		started:  time.Now(),
		store:    store.New(),
		link:     cfg.Link,
		commands: cfg.Commands,
		metrics:  cfg.Metrics,
		capacity: capacity,
		state:    state,
		pending:  make(map[string]bool),
		refresh:  limiter,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time { return s.started }

// Store returns the session's store.
func (s *Session) Store() *store.Store { return s.store }

// State returns the last connection state seen by the session.
func (s *Session) State() link.State { return s.state }

// Capacity returns the user slot count used for stats.
func (s *Session) Capacity() int { return s.capacity }

// Start starts the link.
func (s *Session) Start() {
	log.Printf("SESSION_START | session=%s", s.id)
	s.link.Start()
}

// Close stops the link.
func (s *Session) Close() error {
	log.Printf("SESSION_END | session=%s duration=%s", s.id, time.Since(s.started).Round(time.Second))
	return s.link.Close()
}

// Events returns the link's event stream.
func (s *Session) Events() <-chan link.Event {
	return s.link.Events()
}

// Table projects the store for display.
func (s *Session) Table() render.Table {
	return render.Project(s.store.View(), render.Options{
		Capacity: s.capacity,
		Pending:  s.Pending(),
	})
}

// Pending returns a copy of the UIDs with a command in flight.
func (s *Session) Pending() map[string]bool {
	out := make(map[string]bool, len(s.pending))
	for uid := range s.pending {
		out[uid] = true
	}
	return out
}

// =============================================================================
// INBOUND
// =============================================================================

// Notice is a message for the notifier.
type Notice struct {
	Text string
	OK   bool
}

// Outcome describes what one link event did.
type Outcome struct {
	// StateChanged is set for state events; State is the new state.
	StateChanged bool
	State        link.State

	// Message is the decoded frame, nil for state events and dropped frames.
	Message protocol.Message
	// Dropped is set when a frame failed to decode; Err says why.
	Dropped bool
	Err     error

	// Notice is non-nil when the event should raise a toast.
	Notice *Notice
	// FlashGen is non-zero when a log row was emphasised; pass it to
	// ExpireFlash once the emphasis should end.
	FlashGen uint64
}

// HandleEvent applies one link event.
func (s *Session) HandleEvent(ev link.Event) Outcome {
	if ev.Kind == link.EventState {
		s.state = ev.State
		if ev.Err != nil {
			log.Printf("SESSION_LINK | session=%s state=%s cause=%v", s.id, ev.State, ev.Err)
		} else {
			log.Printf("SESSION_LINK | session=%s state=%s", s.id, ev.State)
		}
		return Outcome{StateChanged: true, State: ev.State, Err: ev.Err}
	}
	return s.HandleFrame(ev.Frame)
}

// HandleFrame decodes and applies one inbound frame. Undecodable frames
// are dropped without touching the store.
func (s *Session) HandleFrame(raw []byte) Outcome {
	msg, err := protocol.Decode(raw)
	if err != nil {
		s.metrics.FrameDropped(err)
		log.Printf("FRAME_DROPPED | session=%s error=%v", s.id, err)
		return Outcome{Dropped: true, Err: err}
	}
	s.metrics.FrameReceived(msg.Type())
	s.store.Apply(msg)

	out := Outcome{Message: msg}
	switch m := msg.(type) {
	case protocol.Users:
		s.gotUsers = true
	case protocol.Logs:
		s.gotLogs = true
	case protocol.Attend:
		s.flashGen++
		out.FlashGen = s.flashGen
		out.Notice = &Notice{Text: m.Event.Name + " checked in", OK: true}
	case protocol.UserChange:
		s.gotUsers = true
		if m.Msg != "" {
			out.Notice = &Notice{Text: m.Msg, OK: true}
		}
	}
	return out
}

// ExpireFlash ends the emphasis started by the attend with generation gen.
// Later attends keep theirs.
func (s *Session) ExpireFlash(gen uint64) {
	if gen != 0 && gen == s.flashGen {
		s.store.ClearFlash()
	}
}

// Synced reports whether both a user and a log snapshot have arrived.
func (s *Session) Synced() bool {
	return s.gotUsers && s.gotLogs
}

// WaitSynced consumes link events until Synced or ctx ends. It is meant for
// one-shot CLI use where no other loop reads the link.
func (s *Session) WaitSynced(ctx context.Context) error {
	for !s.Synced() {
		select {
		case ev, ok := <-s.link.Events():
			if !ok {
				return link.ErrClosed
			}
			s.HandleEvent(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// =============================================================================
// OPERATOR ACTIONS
// =============================================================================

// ClearLogView hides the current log rows.
func (s *Session) ClearLogView() Notice {
	s.store.ClearLogView()
	return Notice{Text: "Log view cleared", OK: true}
}

// Refresh asks the device to resend its user list. It only works while
// online and is rate limited.
func (s *Session) Refresh(ctx context.Context) error {
	if s.link.State() != link.Online {
		return link.ErrNotOnline
	}
	if !s.refresh.Allow() {
		return ErrRateLimited
	}
	return s.link.Send(ctx, protocol.CmdGetUsers)
}

// Reconnect redials now if the link is offline.
func (s *Session) Reconnect() bool {
	return s.link.Reconnect()
}

// ExportURL returns the CSV export address.
func (s *Session) ExportURL() string {
	return s.commands.ExportURL()
}

// Export downloads the CSV export into w.
func (s *Session) Export(ctx context.Context, w io.Writer) (int64, error) {
	return s.commands.DownloadExport(ctx, w)
}
