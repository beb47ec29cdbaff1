// Package overlay implements the overlay sink: rendered panel frames are pushed
// to WebSocket clients, and a newly connected client receives the last frame.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/payload"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Frames queued per client before it is considered too slow and dropped.
	sendBuffer = 16

	// DefaultMaxClients limits concurrent overlay connections.
	DefaultMaxClients = 32
)

// Frame is one complete overlay state. An empty Panels list clears the overlay.
type Frame struct {
	Sequence uint64          `json:"sequence"`
	Panels   []payload.Panel `json:"panels"`
	DrawnAt  time.Time       `json:"drawn_at"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to connected overlay clients. It is safe for concurrent
// use.
type Hub struct {
	upgrader   websocket.Upgrader
	maxClients int

	mu       sync.RWMutex
	clients  map[*client]struct{}
	last     []byte
	lastSeq  uint64
	closed   bool
	frameLen int
}

// NewHub creates a hub accepting at most maxClients connections (the default
// when maxClients <= 0).
func NewHub(maxClients int) *Hub {
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The overlay is served to local browser sources of any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		maxClients: maxClients,
		clients:    make(map[*client]struct{}),
	}
}

// Redraw renders alerts and broadcasts them as a new frame.
func (h *Hub) Redraw(ctx context.Context, s *settings.Settings, alerts []alert.Alert) error {
	return h.publish(payload.BuildPanels(s, alerts))
}

// Clear broadcasts an empty frame.
func (h *Hub) Clear(ctx context.Context) error {
	return h.publish([]payload.Panel{})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// LastFrame returns the most recent frame, or an empty one before the first
// draw.
func (h *Hub) LastFrame() (Frame, error) {
	h.mu.RLock()
	data := h.last
	h.mu.RUnlock()

	if data == nil {
		return Frame{Panels: []payload.Panel{}}, nil
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("failed to decode last frame: %w", err)
	}
	return f, nil
}

// PanelCount returns the number of panels in the last frame.
func (h *Hub) PanelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frameLen
}

func (h *Hub) publish(panels []payload.Panel) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("overlay hub closed")
	}

	h.lastSeq++
	data, err := json.Marshal(Frame{Sequence: h.lastSeq, Panels: panels, DrawnAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal overlay frame: %w", err)
	}
	h.last = data
	h.frameLen = len(panels)

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Warn("Overlay client too slow, disconnecting", "remote_addr", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}

	slog.Debug("Overlay frame published",
		"sequence", h.lastSeq,
		"panels", len(panels),
		"clients", len(h.clients),
	)
	return nil
}

// ServeHTTP upgrades the request to a WebSocket and streams frames to it until
// either side closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Clients() >= h.maxClients {
		http.Error(w, "Maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Overlay upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	slog.Info("Overlay client connected", "remote_addr", conn.RemoteAddr())

	go h.readPump(c)
	h.writePump(c)
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump discards client input; it exists to process pongs and notice
// disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Overlay client read error", "error", err)
			}
			return
		}
	}
}

// writePump is the only writer on the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		slog.Info("Overlay client disconnected", "remote_addr", c.conn.RemoteAddr())
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// Close disconnects every client and rejects further frames.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}
