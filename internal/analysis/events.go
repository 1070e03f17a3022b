package analysis

import (
	"sync"

	"github.com/kozaktomas/frushion/internal/constants"
)

// Event types published by a session.
const (
	EventState   = "state"
	EventSkipped = "skipped"
	EventClosed  = "closed"
)

// Event is a message published to session listeners.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting.
// Embed it to get AddListener, RemoveListener and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan Event
	done      bool
	mu        sync.RWMutex
}

// AddListener adds an event listener.
// After CloseListeners it returns an already closed channel.
func (b *EventBroadcaster) AddListener() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	if b.done {
		close(ch)
		return ch
	}
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener and closes its channel.
func (b *EventBroadcaster) RemoveListener(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// CloseListeners closes and removes every listener channel. Events buffered before the
// call can still be drained by the receivers.
func (b *EventBroadcaster) CloseListeners() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, listener := range b.listeners {
		close(listener)
	}
	b.listeners = nil
	b.done = true
}

// ListenerCount returns the number of registered listeners.
func (b *EventBroadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
