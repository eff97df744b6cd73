package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cocan/internal/kitchen"
	"cocan/internal/logx"
	"cocan/internal/stage"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what a websocket client receives: the full state once on
// connect, then every event.
type Message struct {
	Type     string            `json:"type"`
	Event    *stage.Event      `json:"event,omitempty"`
	Snapshot *kitchen.Snapshot `json:"snapshot,omitempty"`
}

// Hub fans kitchen events out to websocket clients. It is a stage.Sink;
// Publish never blocks the simulation, a client that falls behind loses
// messages.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     *logx.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *logx.Logger) *Hub {
	if log == nil {
		log = logx.Discard()
	}
	return &Hub{clients: make(map[*client]struct{}), log: log}
}

// Publish broadcasts e to every client.
func (h *Hub) Publish(e stage.Event) {
	data, err := json.Marshal(Message{Type: "event", Event: &e})
	if err != nil {
		h.log.Errorf("marshaling %s event: %v", e.Kind, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.enqueue(data)
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// attach registers conn and queues snap as its first message. Called on the
// kitchen loop so no event slips in between.
func (h *Hub) attach(conn *websocket.Conn, snap kitchen.Snapshot) *client {
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	if data, err := json.Marshal(Message{Type: "snapshot", Snapshot: &snap}); err == nil {
		c.send <- data
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// enqueue must be called with the hub lock held.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.hub.log.Warnf("websocket buffer full, dropping message")
	}
}

// readPump only watches for the peer going away; clients send commands
// over HTTP.
func (c *client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnf("websocket error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ stage.Sink = (*Hub)(nil)
