package binding

import (
	"sync"

	"recpick/internal/input"
)

// Registry owns the state of every bound field. States are addressed by the
// field they belong to and, from asynchronous results, by handle.
type Registry struct {
	mu       sync.Mutex
	next     uint64
	states   map[*input.Field]*State
	handles  map[uint64]*State
	bindings map[*input.Field]*Binding
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		states:   make(map[*input.Field]*State),
		handles:  make(map[uint64]*State),
		bindings: make(map[*input.Field]*Binding),
	}
}

// Binding returns the binding handle for field without attaching it
func (r *Registry) Binding(field *input.Field) *Binding {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bindings[field]; ok {
		return b
	}
	b := &Binding{registry: r, field: field}
	r.bindings[field] = b
	return b
}

// Bind attaches a picker to field and returns its binding
func (r *Registry) Bind(field *input.Field, opts Options) (*Binding, error) {
	b := r.Binding(field)
	if err := b.Attach(opts); err != nil {
		return nil, err
	}
	return b, nil
}

// Len returns the number of attached fields
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *Registry) state(field *input.Field) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[field]
}

func (r *Registry) lookup(handle uint64) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles[handle]
}

func (r *Registry) create(field *input.Field, opts Options) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	st := &State{
		handle:      r.next,
		tag:         r.next, // handles are never reused
		field:       field,
		model:       opts.Model,
		collection:  opts.Collection,
		searchField: opts.SearchParam,
		labelField:  opts.LabelField,
		opts:        opts,
		attached:    true,
	}
	r.states[field] = st
	r.handles[st.handle] = st
	return st
}

func (r *Registry) remove(st *State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.states[st.field] == st {
		delete(r.states, st.field)
	}
	delete(r.handles, st.handle)
}
