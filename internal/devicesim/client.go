// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devicesim

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientQueue  = 64
	writeTimeout = 5 * time.Second
)

// client is one push connection. Frames are written by its own goroutine.
type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writeLoop() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

type inboundCommand struct {
	Cmd string `json:"cmd"`
}

// ServeWS upgrades the request and serves one push client.
func (d *Device) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("DEVICESIM_UPGRADE_FAILED | remote=%s error=%v", r.RemoteAddr, err)
		return
	}
	c := &client{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, clientQueue),
		done:   make(chan struct{}),
	}

	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()
	log.Printf("DEVICESIM_CLIENT_OPEN | remote=%s", c.remote)

	go c.writeLoop()
	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
		c.close()
		log.Printf("DEVICESIM_CLIENT_CLOSED | remote=%s", c.remote)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd inboundCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		d.handleCommand(c, cmd.Cmd)
	}
}

func (d *Device) handleCommand(c *client, cmd string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var frames []any
	switch cmd {
	case "init":
		frames = append(frames, d.usersLocked(), d.logsLocked(), d.statusLocked())
	case "getUsers":
		frames = append(frames, d.usersLocked())
	default:
		log.Printf("DEVICESIM_UNKNOWN_CMD | cmd=%q", cmd)
		return
	}
	for _, f := range frames {
		data, err := json.Marshal(f)
		if err != nil {
			continue
		}
		if !c.enqueue(data) {
			c.close()
			return
		}
	}
}
