// Package events provides a small publish-subscribe event bus used to surface
// engine activity (assignments, deferrals, model recalibrations) to callers.
package events

import (
	"sync"

	"github.com/blackms/taskrouter-go/internal/shared"
)

// Handler is a function that handles events.
type Handler func(event shared.Event)

// Bus fans engine events out to channel subscribers and handlers. Emission is
// non-blocking: a slow subscriber drops events rather than stalling the
// engine.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[shared.EventType][]chan shared.Event
	handlers    map[shared.EventType][]Handler
	bufferSize  int
	closed      bool
}

// Option configures the Bus.
type Option func(*Bus)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		b.bufferSize = size
	}
}

// New creates a new Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[shared.EventType][]chan shared.Event),
		handlers:    make(map[shared.EventType][]Handler),
		bufferSize:  100,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe creates a channel to receive events of the given type.
func (b *Bus) Subscribe(eventType shared.EventType) <-chan shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan shared.Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a channel to receive all events.
func (b *Bus) SubscribeAll() <-chan shared.Event {
	return b.Subscribe("*")
}

// On registers a handler for events of the given type. Handlers run on the
// emitter's goroutine and must return quickly.
func (b *Bus) On(eventType shared.EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all subscribers and handlers.
func (b *Bus) Emit(event shared.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = shared.Now()
	}

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range b.subscribers["*"] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, h := range b.handlers[event.Type] {
		h(event)
	}
	for _, h := range b.handlers["*"] {
		h(event)
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, chans := range b.subscribers {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.subscribers = make(map[shared.EventType][]chan shared.Event)
	b.handlers = make(map[shared.EventType][]Handler)
}
