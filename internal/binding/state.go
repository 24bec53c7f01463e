package binding

import (
	"sync"

	"recpick/internal/autocomplete"
	"recpick/internal/collection"
	"recpick/internal/input"
)

// State is everything a binding knows about its field. It lives in the
// registry from attach to destroy and is only touched on the UI event loop.
type State struct {
	handle uint64
	tag    uint64
	field  *input.Field

	model       collection.Record
	collection  collection.Collection
	searchField string
	labelField  string
	opts        Options

	selectedID string

	// held by a resolve for the whole set, fetch and read of the model
	resolving sync.Mutex

	// snapshot taken on focus
	previousRaw string
	previousID  string
	hasPrevious bool
	// a selection already raised its change in this focus session
	announced bool

	attached    bool
	widget      *autocomplete.Widget
	unsubscribe []func()
}

// Handle identifies the state in its registry
func (s *State) Handle() uint64 {
	return s.handle
}

// SelectedID is the id of the picked record, or ""
func (s *State) SelectedID() string {
	return s.selectedID
}

// SearchField is the collection filter the typed term is sent as
func (s *State) SearchField() string {
	return s.searchField
}

// LabelField is the attribute shown for a record
func (s *State) LabelField() string {
	return s.labelField
}

// Attached reports whether the state is still registered
func (s *State) Attached() bool {
	return s.attached
}

func (s *State) snapshot() {
	s.previousRaw = s.field.Value()
	s.previousID = s.selectedID
	s.hasPrevious = true
	s.announced = false
}

func (s *State) clearSnapshot() {
	s.previousRaw = ""
	s.previousID = ""
	s.hasPrevious = false
	s.announced = false
}

// release drops subscriptions and cached values
func (s *State) release() {
	if s.widget != nil {
		s.widget.Destroy()
		s.widget = nil
	}
	for i := len(s.unsubscribe) - 1; i >= 0; i-- {
		s.unsubscribe[i]()
	}
	s.unsubscribe = nil
	s.field.SetBusy(false)
	s.selectedID = ""
	s.clearSnapshot()
	s.attached = false
}
