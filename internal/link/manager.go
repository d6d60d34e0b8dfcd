// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harissfx/AbsensiESP32/internal/protocol"
)

// DefaultReconnectDelay is the wait between losing the link and redialing.
const DefaultReconnectDelay = 3000 * time.Millisecond

var (
	// ErrNotOnline is returned by Send while the link is not Online.
	ErrNotOnline = errors.New("link: not online")
	// ErrClosed is returned by calls made after Close.
	ErrClosed = errors.New("link: manager closed")
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind distinguishes the entries of the Events stream.
type EventKind int

const (
	// EventState reports a state change; Err holds the cause of a drop.
	EventState EventKind = iota
	// EventFrame carries one raw inbound frame.
	EventFrame
)

// Event is one entry of the ordered Events stream.
type Event struct {
	Kind  EventKind
	State State
	Frame []byte
	Err   error
}

// Observer receives link lifecycle notifications, typically for metrics.
// Calls are made from the manager goroutine and must not block.
type Observer interface {
	StateChanged(from, to State)
	DialStarted()
}

// =============================================================================
// MANAGER
// =============================================================================

// Config configures a Manager.
type Config struct {
	// URL is the push channel address, e.g. ws://192.168.4.1:81/.
	URL string
	// ReconnectDelay is the wait in Offline before redialing (default 3s).
	ReconnectDelay time.Duration
	// Dialer opens the channel (default WebSocketDialer{}).
	Dialer Dialer
	// Observer is optional.
	Observer Observer
	// SessionID tags log lines.
	SessionID string
}

// Manager owns the push channel and its reconnect state machine.
type Manager struct {
	cfg Config

	state  atomic.Int32
	events chan Event
	reqs   chan request
	dials  chan dialResult
	reads  chan readResult

	ctx       context.Context
	cancel    context.CancelFunc
	startOnce sync.Once
	done      chan struct{}
}

type requestKind int

const (
	reqReconnect requestKind = iota
	reqSend
)

type request struct {
	kind  requestKind
	cmd   protocol.Command
	reply chan error
}

type dialResult struct {
	attempt uint64
	conn    Conn
	err     error
}

type readResult struct {
	attempt uint64
	data    []byte
	err     error
}

// NewManager creates a manager in the Connecting state. Nothing is dialed
// until Start.
func NewManager(cfg Config) *Manager {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WebSocketDialer{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:    cfg,
		events: make(chan Event),
		reqs:   make(chan request),
		dials:  make(chan dialResult),
		reads:  make(chan readResult),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.state.Store(int32(Connecting))
	return m
}

// Start launches the manager goroutine and the first connection attempt.
// Calling it more than once has no effect.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		go m.run()
	})
}

// Close tears down the channel, cancels any pending reconnect and closes
// the Events stream.
func (m *Manager) Close() error {
	m.cancel()
	m.startOnce.Do(func() { close(m.events); close(m.done) })
	<-m.done
	return nil
}

// State returns the current connection state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Events returns the ordered stream of state changes and inbound frames.
// It is closed after Close.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// URL returns the push channel address.
func (m *Manager) URL() string {
	return m.cfg.URL
}

// Reconnect starts a connection attempt now if the link is Offline,
// replacing the pending reconnect timer. It reports whether an attempt was
// started.
func (m *Manager) Reconnect() bool {
	return m.do(request{kind: reqReconnect}) == nil
}

// Send writes a command on the channel. It fails with ErrNotOnline unless
// the link is Online.
func (m *Manager) Send(ctx context.Context, cmd protocol.Command) error {
	if _, err := protocol.Encode(cmd); err != nil {
		return err
	}
	return m.doContext(ctx, request{kind: reqSend, cmd: cmd})
}

func (m *Manager) do(req request) error {
	return m.doContext(context.Background(), req)
}

func (m *Manager) doContext(ctx context.Context, req request) error {
	req.reply = make(chan error, 1)
	select {
	case m.reqs <- req:
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-m.done:
		return ErrClosed
	}
}

// =============================================================================
// ACTOR
// =============================================================================

// actor is the state owned by the run goroutine.
type actor struct {
	m *Manager

	state   State
	conn    Conn
	attempt uint64

	attemptCancel context.CancelFunc
	timer         *time.Timer
	timerC        <-chan time.Time

	queue []Event
}

var errNotReconnectable = errors.New("link: reconnect only applies while offline")

func (m *Manager) run() {
	a := &actor{m: m, state: Connecting}
	defer func() {
		a.shutdown()
		close(m.events)
		close(m.done)
	}()

	a.connect()

	for {
		var (
			out  chan<- Event
			next Event
		)
		if len(a.queue) > 0 {
			out = m.events
			next = a.queue[0]
		}

		select {
		case out <- next:
			a.queue[0] = Event{}
			a.queue = a.queue[1:]

		case r := <-m.dials:
			a.handleDial(r)

		case r := <-m.reads:
			a.handleRead(r)

		case <-a.timerC:
			a.timer, a.timerC = nil, nil
			a.connect()

		case req := <-m.reqs:
			req.reply <- a.handleRequest(req)

		case <-m.ctx.Done():
			return
		}
	}
}

func (a *actor) handleRequest(req request) error {
	switch req.kind {
	case reqReconnect:
		if a.state != Offline {
			return errNotReconnectable
		}
		log.Printf("LINK_MANUAL_RECONNECT | session=%s", a.m.cfg.SessionID)
		a.connect()
		return nil
	case reqSend:
		if a.state != Online || a.conn == nil {
			return ErrNotOnline
		}
		return a.write(req.cmd)
	default:
		return errors.New("link: unknown request")
	}
}

// connect begins a new attempt. The pending timer and any earlier attempt
// are superseded.
func (a *actor) connect() {
	a.stopTimer()
	if a.attemptCancel != nil {
		a.attemptCancel()
	}
	a.attempt++
	if a.state != Connecting {
		a.transition(Connecting, nil)
	}

	ctx, cancel := context.WithCancel(a.m.ctx)
	a.attemptCancel = cancel
	attempt := a.attempt
	if a.m.cfg.Observer != nil {
		a.m.cfg.Observer.DialStarted()
	}
	log.Printf("LINK_DIAL | session=%s attempt=%d url=%s", a.m.cfg.SessionID, attempt, a.m.cfg.URL)

	go func() {
		conn, err := a.m.cfg.Dialer.Dial(ctx, a.m.cfg.URL)
		select {
		case a.m.dials <- dialResult{attempt: attempt, conn: conn, err: err}:
		case <-a.m.ctx.Done():
			if conn != nil {
				conn.Close()
			}
		}
	}()
}

func (a *actor) handleDial(r dialResult) {
	if r.attempt != a.attempt || a.state != Connecting {
		if r.conn != nil {
			r.conn.Close()
		}
		return
	}
	if r.err != nil {
		log.Printf("LINK_DIAL_FAILED | session=%s attempt=%d error=%v", a.m.cfg.SessionID, r.attempt, r.err)
		a.drop(r.err)
		return
	}

	a.conn = r.conn
	a.transition(Online, nil)
	log.Printf("LINK_OPEN | session=%s attempt=%d", a.m.cfg.SessionID, r.attempt)
	go a.m.readLoop(r.attempt, r.conn)

	if err := a.write(protocol.CmdInit); err != nil {
		log.Printf("LINK_INIT_FAILED | session=%s error=%v", a.m.cfg.SessionID, err)
	}
}

func (a *actor) handleRead(r readResult) {
	if r.attempt != a.attempt || a.conn == nil {
		return
	}
	if r.err != nil {
		log.Printf("LINK_CLOSED | session=%s attempt=%d error=%v", a.m.cfg.SessionID, r.attempt, r.err)
		a.drop(r.err)
		return
	}
	a.queue = append(a.queue, Event{Kind: EventFrame, Frame: r.data})
}

// write sends one command. A failed write is treated like a channel error:
// the socket is closed and the link goes Offline.
func (a *actor) write(cmd protocol.Command) error {
	data, err := protocol.Encode(cmd)
	if err != nil {
		return err
	}
	if err := a.conn.WriteMessage(data); err != nil {
		log.Printf("LINK_WRITE_FAILED | session=%s cmd=%s error=%v", a.m.cfg.SessionID, cmd.Cmd, err)
		a.drop(err)
		return err
	}
	return nil
}

// drop closes the socket, moves to Offline and arms the reconnect timer.
func (a *actor) drop(cause error) {
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	if !a.transition(Offline, cause) {
		return
	}
	a.stopTimer()
	a.timer = time.NewTimer(a.m.cfg.ReconnectDelay)
	a.timerC = a.timer.C
}

func (a *actor) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer, a.timerC = nil, nil
}

func (a *actor) transition(to State, cause error) bool {
	from := a.state
	if !CanTransition(from, to) {
		log.Printf("LINK_TRANSITION_REJECTED | session=%s from=%s to=%s", a.m.cfg.SessionID, from, to)
		return false
	}
	a.state = to
	a.m.state.Store(int32(to))
	if a.m.cfg.Observer != nil {
		a.m.cfg.Observer.StateChanged(from, to)
	}
	a.queue = append(a.queue, Event{Kind: EventState, State: to, Err: cause})
	return true
}

func (a *actor) shutdown() {
	a.stopTimer()
	if a.attemptCancel != nil {
		a.attemptCancel()
	}
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
}

// readLoop forwards frames from one connection until it fails.
func (m *Manager) readLoop(attempt uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		select {
		case m.reads <- readResult{attempt: attempt, data: data, err: err}:
		case <-m.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}
