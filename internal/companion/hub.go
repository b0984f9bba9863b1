// Package companion relays state snapshots to a user's paired devices (e.g. a watch) over
// websockets. Delivery is best-effort: every message is a full snapshot, a slow device
// simply misses intermediate ones, and nothing is acknowledged or retried.
package companion

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/location"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Inbound is what a device may send.
type Inbound struct {
	Location *location.Coordinate `json:"location,omitempty"`
}

// Outbound is what the hub pushes. Exactly one field is set per message.
type Outbound struct {
	JoinedEvents    *[]CompactEvent `json:"joinedEvents,omitempty"`
	RequestLocation bool            `json:"requestLocation,omitempty"`
}

type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*client]struct{}
	locations  *location.Registry
	sendBuffer int
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

func NewHub(locations *location.Registry, sendBuffer int, logger *zap.Logger) *Hub {
	if sendBuffer < 1 {
		sendBuffer = 1
	}
	return &Hub{
		clients:    make(map[string]map[*client]struct{}),
		locations:  locations,
		sendBuffer: sendBuffer,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Serve upgrades the request and pumps messages until the device disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{hub: h, userID: userID, conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.register(c)

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()
	c.readPump()
	<-done
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("companion connected", zap.String("user_id", c.userID), zap.Int("devices", len(set)))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.logger.Debug("companion disconnected", zap.String("user_id", c.userID))
}

// Devices reports how many devices of userID are connected.
func (h *Hub) Devices(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish queues msg for every connected device of userID without blocking. A device
// whose buffer is full misses this message.
func (h *Hub) Publish(userID string, msg Outbound) int {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode companion message", zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
			delivered++
		default:
			h.logger.Debug("companion buffer full, dropping message", zap.String("user_id", userID))
		}
	}
	return delivered
}

// RequestLocation asks every device of userID to report its location.
func (h *Hub) RequestLocation(userID string) {
	h.Publish(userID, Outbound{RequestLocation: true})
}

// Close disconnects every device.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0)
	for _, set := range h.clients {
		for c := range set {
			conns = append(conns, c.conn)
		}
	}
	h.mu.RUnlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in Inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("companion read failed", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		if in.Location != nil && c.hub.locations != nil {
			if err := c.hub.locations.Update(c.userID, *in.Location); err != nil {
				c.hub.logger.Debug("ignoring invalid companion location", zap.String("user_id", c.userID), zap.Error(err))
			}
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
