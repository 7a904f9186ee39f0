package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthEventType is the kind of auth state transition
type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "SIGNED_IN"
	AuthSignedOut AuthEventType = "SIGNED_OUT"
)

// AuthEvent is published when a user's session state changes
type AuthEvent struct {
	Type   AuthEventType `json:"event"`
	UserID uuid.UUID     `json:"user_id"`
	At     time.Time     `json:"at"`
}

const subscriberBuffer = 8

// AuthEventHub fans auth events out to per-user subscribers
type AuthEventHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]chan AuthEvent
	closed bool
}

// NewAuthEventHub creates an empty hub
func NewAuthEventHub() *AuthEventHub {
	return &AuthEventHub{subs: make(map[uuid.UUID]map[int]chan AuthEvent)}
}

// Subscribe registers for userID's events. The returned func unsubscribes and closes the channel;
// it is safe to call more than once. After Close the channel comes back already closed.
func (h *AuthEventHub) Subscribe(userID uuid.UUID) (<-chan AuthEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan AuthEvent, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan AuthEvent)
	}
	h.subs[userID][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[userID][id]; !ok {
			return
		}
		delete(h.subs[userID], id)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		close(ch)
	}
}

// Close ends every subscription so open event streams return. Used on server shutdown.
func (h *AuthEventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, userID)
	}
}

// Publish delivers ev to the user's subscribers without blocking; a full subscriber misses the event
func (h *AuthEventHub) Publish(ev AuthEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs[ev.UserID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers userID has
func (h *AuthEventHub) SubscriberCount(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
