package collection

import (
	"sync"

	"recpick/internal/domain"
)

// DefaultIDAttr is the attribute holding a record's identifier
const DefaultIDAttr = "id"

// ChangeListener is called after a non-silent attribute write
type ChangeListener func(attr string, value any)

type listenerEntry struct {
	id uint64
	fn ChangeListener
}

// Item is an entity backed by an attribute map. It is safe for concurrent
// use; fetches fill it from a goroutine while the UI reads it.
type Item struct {
	mu        sync.RWMutex
	idAttr    string
	attrs     map[string]any
	nextID    uint64
	listeners []listenerEntry
}

// NewItem creates an item keyed by the "id" attribute
func NewItem(attrs map[string]any) *Item {
	return NewItemWithID(attrs, DefaultIDAttr)
}

// NewItemWithID creates an item keyed by idAttr
func NewItemWithID(attrs map[string]any, idAttr string) *Item {
	if idAttr == "" {
		idAttr = DefaultIDAttr
	}
	return &Item{
		idAttr: idAttr,
		attrs:  cloneAttrs(attrs),
	}
}

// IDAttr names the attribute holding the identifier
func (i *Item) IDAttr() string {
	return i.idAttr
}

func (i *Item) ID() string {
	return domain.Display(i.Get(i.idAttr))
}

func (i *Item) Get(attr string) any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.attrs[attr]
}

// Set writes one attribute and notifies listeners unless opts.Silent
func (i *Item) Set(attr string, value any, opts SetOptions) {
	i.mu.Lock()
	if i.attrs == nil {
		i.attrs = make(map[string]any)
	}
	i.attrs[attr] = value
	listeners := make([]listenerEntry, len(i.listeners))
	copy(listeners, i.listeners)
	i.mu.Unlock()

	if opts.Silent {
		return
	}
	for _, l := range listeners {
		l.fn(attr, value)
	}
}

// OnChange registers a listener and returns its removal function
func (i *Item) OnChange(fn ChangeListener) func() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.nextID++
	id := i.nextID
	i.listeners = append(i.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		for n, l := range i.listeners {
			if l.id == id {
				i.listeners = append(i.listeners[:n:n], i.listeners[n+1:]...)
				break
			}
		}
	}
}

// Attributes returns a copy of all attributes
func (i *Item) Attributes() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return cloneAttrs(i.attrs)
}

// replace swaps in a freshly fetched attribute set, keeping the id when the
// payload omits it
func (i *Item) replace(attrs map[string]any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	next := cloneAttrs(attrs)
	if _, ok := next[i.idAttr]; !ok {
		next[i.idAttr] = i.attrs[i.idAttr]
	}
	i.attrs = next
}

func cloneAttrs(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
