// Package websocket provides the real-time reconciliation channel: a
// per-match-club broadcast hub on the server and a reconnecting
// subscriber for viewers.
// File: websocket/hub.go
package websocket

import (
	"encoding/json"
	"sync"

	"lineup-board/logger"
	"lineup-board/models"
)

type outbound struct {
	matchClubID string
	payload     []byte
}

// Hub fans delta events out to every connection subscribed to a
// match-club. One hub serves the whole process; rooms are per club.
type Hub struct {
	mu        sync.Mutex
	rooms     map[string]map[*Connection]bool
	broadcast chan outbound
	closed    bool
}

// NewHub creates an empty hub. Call Run in a goroutine to start the
// broadcast loop.
func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[string]map[*Connection]bool),
		broadcast: make(chan outbound, 64),
	}
}

// Run drains the broadcast channel and writes to room members. Slow
// consumers get dropped messages, not a stalled hub.
func (h *Hub) Run() {
	for out := range h.broadcast {
		h.mu.Lock()
		room := make([]*Connection, 0, len(h.rooms[out.matchClubID]))
		for c := range h.rooms[out.matchClubID] {
			room = append(room, c)
		}
		h.mu.Unlock()

		for _, c := range room {
			select {
			case c.send <- out.payload:
			default:
				logger.Warn.Printf("hub: dropping message for slow connection %v", c.conn.RemoteAddr())
			}
		}
	}
}

// Broadcast queues one delta event for every viewer of the match-club.
// Events arriving after Close are dropped, not a panic.
func (h *Hub) Broadcast(ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error.Printf("hub: error marshalling %s event: %v", ev.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		logger.Warn.Printf("hub: dropping %s broadcast after close", ev.Type)
		return
	}
	select {
	case h.broadcast <- outbound{matchClubID: ev.MatchClubID, payload: payload}:
		logger.Debug.Printf("hub: queued %s for match-club %s", ev.Type, ev.MatchClubID)
	default:
		logger.Warn.Printf("hub: broadcast queue full, dropping %s", ev.Type)
	}
}

// Close stops the broadcast loop. Idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.broadcast)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.matchClubID] == nil {
		h.rooms[c.matchClubID] = make(map[*Connection]bool)
	}
	h.rooms[c.matchClubID][c] = true
	logger.Info.Printf("hub: viewer joined match-club %s (%d connected)", c.matchClubID, len(h.rooms[c.matchClubID]))
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.matchClubID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			if len(room) == 0 {
				delete(h.rooms, c.matchClubID)
			}
		}
	}
}

// ViewerCount reports how many connections watch a match-club.
func (h *Hub) ViewerCount(matchClubID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[matchClubID])
}
