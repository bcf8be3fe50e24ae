package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"comicnotifier/pkg/models"
)

// Hub keeps the live connections of each user and pushes chapter updates
// only to the sockets of the favorite's owner.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[int64]map[*client]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[int64]map[*client]struct{}),
	}
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
	h.log.Debug("websocket client connected", "user_id", c.userID, "total", len(set))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
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
	h.log.Debug("websocket client disconnected", "user_id", c.userID)
}

// Count returns the number of open sockets for userID.
func (h *Hub) Count(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

func (h *Hub) Broadcast(u models.ChapterUpdate) {
	data, err := json.Marshal(u)
	if err != nil {
		h.log.Error("error marshalling update", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[u.UserID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn("websocket send channel full, removing client", "user_id", c.userID)
			h.removeLocked(c)
			_ = c.conn.Close()
		}
	}
}
