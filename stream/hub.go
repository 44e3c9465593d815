package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/milosgajdos/go-tilt/particle"
	"gonum.org/v1/gonum/mat"
)

const (
	// writeWait is time allowed to write a frame to a client
	writeWait = 10 * time.Second
	// sendBuffer is the number of frames queued per client
	sendBuffer = 16
)

// Frame is a particle set snapshot sent to websocket clients
type Frame struct {
	// Step is filter time step
	Step int `json:"step"`
	// Particles stores particle states, one per row
	Particles [][]float64 `json:"particles"`
	// Mean is weighted particle mean
	Mean []float64 `json:"mean"`
}

// Hub broadcasts particle sets to websocket clients.
// Slow clients drop frames rather than block the filter.
// Hub is safe for concurrent use.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*client]struct{}
	closed   bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates new Hub and returns it.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// writePump sends queued frames to the client until its send channel is closed.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards client messages and unregisters the client once it disconnects.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Write broadcasts particle set s produced in the given step to all connected clients.
func (h *Hub) Write(step int, s *particle.Set) error {
	est, err := s.Estimate()
	if err != nil {
		return fmt.Errorf("Failed to estimate particle mean: %w", err)
	}

	x := s.Particles()
	f := Frame{
		Step:      step,
		Particles: make([][]float64, s.Len()),
		Mean:      mat.Col(nil, 0, est.Val()),
	}
	for i := range f.Particles {
		f.Particles[i] = mat.Col(nil, i, x)
	}

	msg, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("Failed to encode frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// client is too slow; drop the frame
		}
	}

	return nil
}

// Close disconnects all clients. Clients connecting afterwards are rejected.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}

	return nil
}
