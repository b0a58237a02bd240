package game

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans out "game changed" signals to websocket subscribers. Signals carry no data;
// subscribers reload the game to build their own view.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan struct{}]struct{})}
}

// Subscribe registers interest in gameID. The returned channel holds at most one pending
// signal, so a slow subscriber sees coalesced updates rather than blocking the hub.
func (h *Hub) Subscribe(gameID uuid.UUID) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan struct{}]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[gameID], ch)
			if len(h.subs[gameID]) == 0 {
				delete(h.subs, gameID)
			}
		})
	}
}

// GameUpdated signals every subscriber of gameID without blocking.
func (h *Hub) GameUpdated(gameID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[gameID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for gameID.
func (h *Hub) Subscribers(gameID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[gameID])
}
