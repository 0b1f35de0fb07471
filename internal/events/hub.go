// Package events distributes collection-change notifications to connected
// clients. The SPA keeps one SSE stream open and refetches whatever
// collection an event names, which stands in for per-document realtime
// listeners.
package events

import (
	"sync"
	"time"
)

// Collection names carried in change events.
const (
	CollectionAccounts = "assetAccounts"
	CollectionCashflow = "cashflowRecords"
	CollectionBudgets  = "budgets"
	CollectionGoals    = "goals"
	CollectionSettings = "settings"
)

// Event names a changed collection for one user.
type Event struct {
	Collection string    `json:"collection"`
	At         time.Time `json:"at"`
}

// Hub fans events out to per-user subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{} // userID -> subscriber set
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a new subscriber for a user and returns its channel.
// The channel is buffered; a slow consumer drops events rather than
// blocking writers.
func (h *Hub) Subscribe(userID string) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(userID string, ch chan Event) {
	h.mu.Lock()
	if set, ok := h.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
	h.mu.Unlock()
}

// Notify tells a user's subscribers that a collection changed.
func (h *Hub) Notify(userID, collection string) {
	event := Event{Collection: collection, At: time.Now()}
	h.mu.RLock()
	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
			// Drop for slow consumers; they refetch on the next event.
		}
	}
	h.mu.RUnlock()
}
