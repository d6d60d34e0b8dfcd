// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package link

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is an open push channel.
type Conn interface {
	// ReadMessage blocks until the next data frame or an error.
	ReadMessage() ([]byte, error)
	// WriteMessage sends one text frame.
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens push channels.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebSocketDialer dials the device with gorilla/websocket.
type WebSocketDialer struct {
	// HandshakeTimeout bounds the opening handshake (0 = no limit beyond ctx).
	HandshakeTimeout time.Duration
	// ReadTimeout closes a link that stays silent this long (0 = disabled).
	ReadTimeout time.Duration
	// WriteTimeout bounds each outbound frame (0 = disabled).
	WriteTimeout time.Duration
}

// Dial implements Dialer.
func (d WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}
	c, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{c: c, readTimeout: d.ReadTimeout, writeTimeout: d.WriteTimeout}, nil
}

type wsConn struct {
	c            *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	for {
		if w.readTimeout > 0 {
			if err := w.c.SetReadDeadline(time.Now().Add(w.readTimeout)); err != nil {
				return nil, err
			}
		}
		kind, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (w *wsConn) WriteMessage(data []byte) error {
	if w.writeTimeout > 0 {
		if err := w.c.SetWriteDeadline(time.Now().Add(w.writeTimeout)); err != nil {
			return err
		}
	}
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error {
	return w.c.Close()
}
