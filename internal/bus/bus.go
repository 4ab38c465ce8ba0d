// Package bus provides an internal event bus for component communication
package bus

import (
	"sync"
)

// EventType identifies different event types
type EventType string

// Event types for the voice agent
const (
	// Room connection events
	EventTypeConnected    EventType = "room.connected"
	EventTypeDisconnected EventType = "room.disconnected"
	EventTypeError        EventType = "room.error"

	// Conversation events
	EventTypeItemAdded  EventType = "session.item_added"
	EventTypeTranscript EventType = "session.transcript"

	// Emotion events
	EventTypeEmotionDetected  EventType = "emotion.detected"
	EventTypeEmotionPublished EventType = "emotion.published"

	// Avatar events
	EventTypeAvatarStateChanged EventType = "avatar.state_changed"
	EventTypeAvatarStarted      EventType = "avatar.started"
	EventTypeAvatarStopped      EventType = "avatar.stopped"
)

// Event represents a bus event
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed again.
type Subscription struct {
	eventType EventType
	id        int
}

type handlerEntry struct {
	id      int
	handler Handler
}

// EventBus is a simple pub/sub event bus. Handlers run on their own
// goroutines, so publishing never blocks the caller.
type EventBus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType][]handlerEntry
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]handlerEntry),
	}
}

// Subscribe adds a handler for an event type and returns a subscription
// that can be passed to Unsubscribe.
func (b *EventBus) Subscribe(eventType EventType, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], handlerEntry{
		id:      b.nextID,
		handler: handler,
	})
	return Subscription{eventType: eventType, id: b.nextID}
}

// Unsubscribe removes a previously registered handler.
func (b *EventBus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[sub.eventType]
	for i, entry := range entries {
		if entry.id == sub.id {
			b.handlers[sub.eventType] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers without waiting for
// them to complete.
func (b *EventBus) Publish(event Event) {
	for _, handler := range b.snapshot(event.Type) {
		go handler(event)
	}
}

// PublishSync sends an event and waits for all handlers to complete
func (b *EventBus) PublishSync(event Event) {
	handlers := b.snapshot(event.Type)

	var wg sync.WaitGroup
	for _, handler := range handlers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			h(event)
		}(handler)
	}
	wg.Wait()
}

func (b *EventBus) snapshot(eventType EventType) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	handlers := make([]Handler, 0, len(b.handlers[eventType]))
	for _, entry := range b.handlers[eventType] {
		handlers = append(handlers, entry.handler)
	}
	return handlers
}

// Clear removes all handlers
func (b *EventBus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[EventType][]handlerEntry)
}
