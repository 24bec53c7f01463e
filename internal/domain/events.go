package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventFocus            EventType = "Focus"
	EventBlur             EventType = "Blur"
	EventChange           EventType = "Change"
	EventSelectionChanged EventType = "SelectionChanged"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventConfigSaved      EventType = "ConfigSaved"
	EventConfigChanged    EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// FocusEvent is emitted when an input field receives focus
type FocusEvent struct {
	FieldID string
}

func (e FocusEvent) Type() EventType { return EventFocus }

// BlurEvent is emitted when an input field loses focus
type BlurEvent struct {
	FieldID string
}

func (e BlurEvent) Type() EventType { return EventBlur }

// ChangeEvent is emitted when the committed value of an input field changes.
// Tag is zero for native notifications; a binding stamps its own events with
// a non-zero provenance tag.
type ChangeEvent struct {
	FieldID string
	Tag     uint64
}

func (e ChangeEvent) Type() EventType { return EventChange }

// Native reports whether the event carries no provenance tag
func (e ChangeEvent) Native() bool { return e.Tag == 0 }

// SelectionChangedEvent is emitted by the form when a picker's bound value changes
type SelectionChangedEvent struct {
	Field string
	ID    string
	Name  string
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path   string
	Fields int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ConfigChangedEvent is emitted when configuration needs to be saved
type ConfigChangedEvent struct {
	InitialIDs map[string]string // field name -> selected id
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
