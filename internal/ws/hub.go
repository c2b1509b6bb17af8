// Package ws implements the live winners feed. Every revealed win is
// broadcast to all connected clients; the hub also replays the most
// recent wins to newcomers.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"raspadinha_backend/internal/logger"

	"github.com/shopspring/decimal"
)

const recentWinsKept = 20

// WinEvent is the payload pushed to the feed when a reveal pays out.
type WinEvent struct {
	Type       string          `json:"type"`
	Raspadinha string          `json:"raspadinha"`
	PrizeName  string          `json:"prize_name"`
	Amount     decimal.Decimal `json:"amount"`
	Player     string          `json:"player"`
	At         time.Time       `json:"at"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	recent  [][]byte
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// BroadcastWin fans a win event out to every connected client. Slow
// clients are dropped rather than blocking the broadcast.
func (h *Hub) BroadcastWin(ev WinEvent) {
	ev.Type = "win"
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("failed to marshal win event", "error", err)
		return
	}

	h.mu.Lock()
	h.recent = append(h.recent, msg)
	if len(h.recent) > recentWinsKept {
		h.recent = h.recent[len(h.recent)-recentWinsKept:]
	}
	for c := range h.clients {
		select {
		case c.Send <- msg:
		default:
			delete(h.clients, c)
			close(c.Send)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	backlog := make([][]byte, len(h.recent))
	copy(backlog, h.recent)
	h.mu.Unlock()

	for _, msg := range backlog {
		select {
		case c.Send <- msg:
		default:
			return
		}
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
