// Package realtime fans poll results out to connected clients.
//
// The hub is transport-free: subscribers receive Events on a channel and
// the serving layer decides how to ship them (SSE, websocket, test
// capture). Publishing is fire-and-forget; the poll orchestrator never
// blocks on delivery, and a subscriber that cannot keep up has events
// dropped rather than stalling the publisher.
package realtime

import "sync"

// Event is one message to a user.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Publisher is the hub surface the poll orchestrator consumes.
type Publisher interface {
	PublishToUser(userID, eventName string, payload any)
	PublishToUsers(userIDs []string, eventName string, payload any)
}

// subscriberBuffer bounds each subscription channel.
const subscriberBuffer = 16

// Hub is an in-process Publisher with per-user subscriber sets.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[string]map[chan Event]struct{}{}}
}

// Subscribe registers a channel for userID's events. The returned cancel
// function removes the subscription and closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	set := h.subs[userID]
	if set == nil {
		set = map[chan Event]struct{}{}
		h.subs[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		set, ok := h.subs[userID]
		if !ok {
			return
		}
		if _, ok := set[ch]; !ok {
			return
		}
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
	}
	return ch, cancel
}

// PublishToUser delivers the event to every subscriber of userID.
// Non-blocking: a full subscriber channel drops the event.
func (h *Hub) PublishToUser(userID, eventName string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- Event{Name: eventName, Payload: payload}:
		default:
		}
	}
}

// PublishToUsers delivers the event once per distinct user id.
func (h *Hub) PublishToUsers(userIDs []string, eventName string, payload any) {
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		h.PublishToUser(id, eventName, payload)
	}
}
