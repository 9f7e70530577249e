package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ClientConn is one websocket subscriber. Its send queue is written by the
// tick goroutine and drained by writePump.
type ClientConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue queues b without blocking. It reports false when the queue is full
// or closed.
func (c *ClientConn) Enqueue(b []byte) bool {
	if c.send == nil {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close stops the write pump and closes the connection.
func (c *ClientConn) Close() {
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	_ = c.ws.Close()
}

func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump forwards client commands to the room until the connection drops.
func (c *ClientConn) readPump(room *Room) {
	defer c.ws.Close()
	defer room.leave(c)
	c.ws.SetReadLimit(1 << 16)
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			room.metrics.IncRejected()
			continue
		}
		room.Submit(cmd)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	client := newClientConn(ws)
	if !s.room.join(client) {
		_ = ws.Close()
		return
	}
	go client.writePump()
	go client.readPump(s.room)
}
