package input

import (
	"recpick/internal/domain"
	"recpick/internal/eventbus"
)

// Field is a single text input element of a form. It owns the raw text,
// a busy marker and an event bus on which focus, blur and change
// notifications are published.
type Field struct {
	id      string
	value   string
	busy    bool
	focused bool
	bus     eventbus.EventBus
}

// NewField creates an empty field
func NewField(id string) *Field {
	return &Field{
		id:  id,
		bus: eventbus.New(),
	}
}

func (f *Field) ID() string {
	return f.id
}

// Value returns the raw text of the field
func (f *Field) Value() string {
	return f.value
}

// SetValue replaces the raw text without publishing anything
func (f *Field) SetValue(v string) {
	f.value = v
}

func (f *Field) Busy() bool {
	return f.busy
}

// SetBusy toggles the loading marker
func (f *Field) SetBusy(busy bool) {
	f.busy = busy
}

func (f *Field) Focused() bool {
	return f.focused
}

// Focus marks the field focused and publishes a FocusEvent
func (f *Field) Focus() {
	if f.focused {
		return
	}
	f.focused = true
	f.bus.Publish(domain.FocusEvent{FieldID: f.id})
}

// Blur marks the field unfocused and publishes a BlurEvent
func (f *Field) Blur() {
	if !f.focused {
		return
	}
	f.focused = false
	f.bus.Publish(domain.BlurEvent{FieldID: f.id})
}

// On subscribes to events published on this field
func (f *Field) On(eventType domain.EventType, handler eventbus.EventHandler) func() {
	return f.bus.Subscribe(eventType, handler)
}

// Intercept installs an interceptor ahead of every listener of this field
func (f *Field) Intercept(interceptor eventbus.Interceptor) func() {
	return f.bus.Intercept(interceptor)
}

// Dispatch publishes an event on the field and reports whether it reached
// the listeners
func (f *Field) Dispatch(event domain.DomainEvent) bool {
	return f.bus.Publish(event)
}
