package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"recpick/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventFocus            = domain.EventFocus
	EventBlur             = domain.EventBlur
	EventChange           = domain.EventChange
	EventSelectionChanged = domain.EventSelectionChanged
	EventConfigLoaded     = domain.EventConfigLoaded
	EventConfigSaved      = domain.EventConfigSaved
	EventConfigChanged    = domain.EventConfigChanged
)

// Re-export domain event types
type FocusEvent = domain.FocusEvent
type BlurEvent = domain.BlurEvent
type ChangeEvent = domain.ChangeEvent
type SelectionChangedEvent = domain.SelectionChangedEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type ConfigChangedEvent = domain.ConfigChangedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// Interceptor sees every event before the handlers do.
// Returning false stops propagation.
type Interceptor func(DomainEvent) bool

// EventBus is the interface for the event bus
type EventBus interface {
	// Publish delivers the event and reports whether it reached the handlers
	Publish(event DomainEvent) bool
	Subscribe(eventType EventType, handler EventHandler) func()
	Intercept(interceptor Interceptor) func()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

type interception struct {
	id          uint64
	interceptor Interceptor
}

// bus is the concrete implementation of EventBus.
// Delivery is synchronous and in subscription order: publishers run on a
// single event loop and rely on handlers having run when Publish returns.
type bus struct {
	mu           sync.RWMutex
	nextID       uint64
	handlers     map[EventType][]subscription
	interceptors []interception
}

// New creates a new event bus
func New() EventBus {
	return &bus{
		handlers: make(map[EventType][]subscription),
	}
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) bool {
	b.mu.RLock()
	interceptors := make([]interception, len(b.interceptors))
	copy(interceptors, b.interceptors)
	b.mu.RUnlock()

	for _, ic := range interceptors {
		if !b.intercept(ic.interceptor, event) {
			return false
		}
	}

	// Make a copy to avoid holding lock during handler execution
	b.mu.RLock()
	handlers := b.handlers[event.Type()]
	handlersCopy := make([]subscription, len(handlers))
	copy(handlersCopy, handlers)
	b.mu.RUnlock()

	for _, sub := range handlersCopy {
		b.call(sub.handler, event)
	}
	return true
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		handlers := b.handlers[eventType]
		for i, sub := range handlers {
			if sub.id == id {
				b.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
				break
			}
		}
	}
}

// Intercept installs an interceptor that runs ahead of all handlers
// Returns a removal function
func (b *bus) Intercept(interceptor Interceptor) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.interceptors = append(b.interceptors, interception{id: id, interceptor: interceptor})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		for i, ic := range b.interceptors {
			if ic.id == id {
				b.interceptors = append(b.interceptors[:i:i], b.interceptors[i+1:]...)
				break
			}
		}
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	h(event)
}

func (b *bus) intercept(ic Interceptor, event DomainEvent) (pass bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event interceptor panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
			pass = false
		}
	}()
	return ic(event)
}
