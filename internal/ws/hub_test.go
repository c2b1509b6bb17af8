package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func feedClient(hub *Hub) *Client {
	c := &Client{Send: make(chan []byte, 64), hub: hub}
	hub.register(c)
	return c
}

func TestBroadcastWinReachesClients(t *testing.T) {
	hub := NewHub()
	c1 := feedClient(hub)
	c2 := feedClient(hub)

	hub.BroadcastWin(WinEvent{
		Raspadinha: "raspa-premiada",
		PrizeName:  "R$ 50",
		Amount:     decimal.NewFromInt(50),
		Player:     "jo***",
		At:         time.Now(),
	})

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.Send:
			var ev WinEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if ev.Type != "win" || ev.Raspadinha != "raspa-premiada" {
				t.Errorf("unexpected event: %+v", ev)
			}
		default:
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestNewClientGetsRecentBacklog(t *testing.T) {
	hub := NewHub()
	for i := 0; i < recentWinsKept+5; i++ {
		hub.BroadcastWin(WinEvent{Amount: decimal.NewFromInt(int64(i))})
	}

	c := feedClient(hub)
	if got := len(c.Send); got != recentWinsKept {
		t.Errorf("expected %d replayed wins, got %d", recentWinsKept, got)
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	c := &Client{Send: make(chan []byte), hub: hub}
	hub.register(c)

	hub.BroadcastWin(WinEvent{Amount: decimal.NewFromInt(1)})

	if hub.ClientCount() != 0 {
		t.Error("expected slow client to be dropped")
	}
}
