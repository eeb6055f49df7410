// Package realtime pushes per-user change notifications to browsers over
// websockets.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/metrics"
)

const (
	EventFoodLogUpdated = "food-log-updated"

	writeWait = 10 * time.Second
)

type Event struct {
	Kind   string    `json:"kind"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

type Client struct {
	UserID string
	conn   *websocket.Conn

	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
	metrics.RealtimeConnections.Inc()
}

// Unregister removes c and closes its connection. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set := h.clients[c.UserID]
	_, registered := set[c]
	if registered {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()

	if registered {
		metrics.RealtimeConnections.Dec()
		_ = c.conn.Close()
	}
}

// Count returns the number of open connections for userID.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) Publish(userID string, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("Failed to encode realtime event: %v", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			logrus.Debugf("Dropping realtime client for user %s: %v", userID, err)
			h.Unregister(c)
		}
	}
}

// FoodLogUpdated tells the user's open sessions to refresh their food log.
func (h *Hub) FoodLogUpdated(userID string) {
	h.Publish(userID, Event{Kind: EventFoodLogUpdated, UserID: userID, At: time.Now().UTC()})
}
