// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devicesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/protocol"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// TimeLayout is how check-in times are stamped.
const TimeLayout = "2006-01-02 15:04:05"

// Errors returned by the mutation methods.
var (
	ErrNoSuchUser = errors.New("devicesim: no such user")
	ErrFull       = errors.New("devicesim: no free user slot")
	ErrBadName    = errors.New("devicesim: invalid name")
)

// Options configure a Device.
type Options struct {
	Users    []model.User
	Logs     []model.AttendanceEvent
	Capacity int
	// StatusInterval is the period of status broadcasts (0 = 5s).
	StatusInterval time.Duration
	// Now overrides the clock.
	Now func() time.Time
}

// Device is a simulated attendance device. It is safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	users    []model.User
	logs     []model.AttendanceEvent
	capacity int
	clients  map[*client]struct{}

	started        time.Time
	statusInterval time.Duration
	now            func() time.Time
	upgrader       websocket.Upgrader
}

// New creates a device holding opts' users and logs.
func New(opts Options) *Device {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = model.DefaultCapacity
	}
	interval := opts.StatusInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Device{
		users:          model.CloneUsers(opts.Users),
		logs:           model.CloneEvents(opts.Logs),
		capacity:       capacity,
		clients:        make(map[*client]struct{}),
		started:        now(),
		statusInterval: interval,
		now:            now,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Run broadcasts status frames until ctx ends, then drops every client.
func (d *Device) Run(ctx context.Context) {
	t := time.NewTicker(d.statusInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			d.mu.Lock()
			d.broadcastLocked(d.statusLocked())
			d.mu.Unlock()
		case <-ctx.Done():
			d.Close()
			return
		}
	}
}

// Close disconnects every client.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.clients {
		c.close()
		delete(d.clients, c)
	}
}

// =============================================================================
// STATE
// =============================================================================

// Users returns a copy of the user list.
func (d *Device) Users() []model.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return model.CloneUsers(d.users)
}

// Logs returns a copy of the attendance log.
func (d *Device) Logs() []model.AttendanceEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return model.CloneEvents(d.logs)
}

// ClientCount returns the number of connected push clients.
func (d *Device) ClientCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// Enroll adds a user and broadcasts the new list.
func (d *Device) Enroll(uid, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.users) >= d.capacity {
		return ErrFull
	}
	if d.indexLocked(uid, -1) >= 0 {
		return fmt.Errorf("devicesim: uid %s already enrolled", uid)
	}
	d.users = append(d.users, model.User{UID: uid, Name: name})
	d.broadcastLocked(d.userChangeLocked("User " + name + " enrolled"))
	return nil
}

// Tap simulates a card read by uid. Known cards are logged and broadcast
// as an attend frame.
func (d *Device) Tap(uid string) (model.AttendanceEvent, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexLocked(uid, -1)
	if i < 0 {
		return model.AttendanceEvent{}, ErrNoSuchUser
	}
	ev := model.AttendanceEvent{UID: uid, Name: d.users[i].Name, Time: d.now().Format(TimeLayout)}
	d.logs = append(d.logs, ev)
	d.broadcastLocked(map[string]any{
		"type": protocol.TypeAttend,
		"uid":  ev.UID,
		"name": ev.Name,
		"time": ev.Time,
	})
	return ev, nil
}

// Rename changes the name of the user found by uid, or by idx when uid is
// empty, and broadcasts the new list.
func (d *Device) Rename(idx int, uid, name string) error {
	if name == "" || util.RuneLen(name) > model.MaxNameLength {
		return ErrBadName
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexLocked(uid, idx)
	if i < 0 {
		return ErrNoSuchUser
	}
	d.users[i].Name = name
	d.broadcastLocked(d.userChangeLocked("Name updated: " + name))
	return nil
}

// Delete removes the user found by uid, or by idx when uid is empty, and
// broadcasts the new list.
func (d *Device) Delete(idx int, uid string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexLocked(uid, idx)
	if i < 0 {
		return ErrNoSuchUser
	}
	name := d.users[i].Name
	d.users = append(d.users[:i], d.users[i+1:]...)
	d.broadcastLocked(d.userChangeLocked("User " + name + " deleted"))
	return nil
}

// indexLocked resolves a row by uid when given, else by idx.
func (d *Device) indexLocked(uid string, idx int) int {
	if uid != "" {
		for i, u := range d.users {
			if u.UID == uid {
				return i
			}
		}
		return -1
	}
	if idx < 0 || idx >= len(d.users) {
		return -1
	}
	return idx
}

// =============================================================================
// FRAMES
// =============================================================================

func (d *Device) statusLocked() map[string]any {
	up := int64(d.now().Sub(d.started) / time.Second)
	return map[string]any{
		"type":   protocol.TypeStatus,
		"uptime": protocol.FormatUptime(up),
		"users":  len(d.users),
	}
}

func (d *Device) usersLocked() map[string]any {
	return map[string]any{"type": protocol.TypeUsers, "users": model.CloneUsers(d.users)}
}

func (d *Device) logsLocked() map[string]any {
	return map[string]any{"type": protocol.TypeLogs, "logs": model.CloneEvents(d.logs)}
}

func (d *Device) userChangeLocked(msg string) map[string]any {
	return map[string]any{"type": protocol.TypeUserChange, "users": model.CloneUsers(d.users), "msg": msg}
}

func (d *Device) broadcastLocked(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Printf("DEVICESIM_MARSHAL_FAILED | error=%v", err)
		return
	}
	for c := range d.clients {
		if !c.enqueue(data) {
			log.Printf("DEVICESIM_CLIENT_SLOW | remote=%s", c.remote)
			c.close()
			delete(d.clients, c)
		}
	}
}
