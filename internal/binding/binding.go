// Package binding turns a text field into a remote record picker. A binding
// searches a collection while the user types, keeps the identifier of the
// picked record and raises exactly one change event per user interaction.
package binding

import (
	"context"
	"fmt"
	"log"
	"maps"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"recpick/internal/collection"
	"recpick/internal/domain"
	"recpick/internal/input"
)

// Value is the bound value of a field
type Value struct {
	ID   string
	Name string
}

// Binding is the handle page code uses for one field
type Binding struct {
	registry *Registry
	field    *input.Field
}

// resolveResultMsg carries the outcome of a SetValue fetch
type resolveResultMsg struct {
	handle     uint64
	id         string
	label      string
	err        error
	superseded bool // the model's id changed while fetching
}

func (b *Binding) state() *State {
	return b.registry.state(b.field)
}

// Field returns the bound field
func (b *Binding) Field() *input.Field {
	return b.field
}

// Attached reports whether the field currently has a state
func (b *Binding) Attached() bool {
	return b.state() != nil
}

// Attach binds the field. Attaching an attached field does nothing.
func (b *Binding) Attach(opts Options) error {
	if b.state() != nil {
		return nil
	}
	if opts.Model == nil {
		return fmt.Errorf("%w: model is required", ErrConfig)
	}
	if opts.Collection == nil {
		return fmt.Errorf("%w: collection is required", ErrConfig)
	}
	if opts.SearchParam == "" {
		return fmt.Errorf("%w: search param is required", ErrConfig)
	}
	opts = opts.withDefaults()

	if r, ok := opts.Collection.(collection.Resetter); ok {
		r.ResetPaginationState()
	}

	st := b.registry.create(b.field, opts)
	st.unsubscribe = append(st.unsubscribe,
		b.field.Intercept(gate(st)),
		b.field.On(domain.EventFocus, func(domain.DomainEvent) {
			b.onFocus(st)
		}),
	)

	log.Printf("Attached picker to field %s (search %s, label %s)", b.field.ID(), st.searchField, st.labelField)
	return nil
}

// Value returns the selected id and the current field text
func (b *Binding) Value() Value {
	v := Value{Name: b.field.Value()}
	if st := b.state(); st != nil {
		v.ID = st.selectedID
	}
	return v
}

// SetValue resolves id against the model. The returned command fetches the
// record; its result updates the field text and selection when it arrives.
// Each command fetches its own id. A command whose id is overwritten by a
// later SetValue while it fetches reports itself superseded.
func (b *Binding) SetValue(id string) (tea.Cmd, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrConfig)
	}
	st := b.state()
	if st == nil {
		return nil, nil
	}

	model := st.model
	model.Set(model.IDAttr(), id, collection.SetOptions{Silent: true})

	handle, labelField, timeout := st.handle, st.labelField, st.opts.Timeout
	mu := &st.resolving
	return func() tea.Msg {
		mu.Lock()
		defer mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := resolveResultMsg{handle: handle, id: id}
		model.Set(model.IDAttr(), id, collection.SetOptions{Silent: true})
		err := model.Fetch(ctx)
		if model.ID() != id {
			msg.superseded = true
			return msg
		}
		if err != nil {
			msg.err = err
			return msg
		}
		msg.label = domain.Display(model.Get(labelField))
		return msg
	}, nil
}

func (b *Binding) applyResolve(st *State, msg resolveResultMsg) {
	if msg.superseded {
		log.Printf("Dropped superseded resolve of %s on field %s", msg.id, st.field.ID())
		return
	}
	if msg.err != nil {
		log.Printf("Failed to resolve %s on field %s: %v", msg.id, st.field.ID(), msg.err)
		st.field.SetValue("")
		st.selectedID = ""
		return
	}
	st.field.SetValue(msg.label)
	st.selectedID = msg.id
}

// SetSearchParams forwards extra filters to the collection
func (b *Binding) SetSearchParams(params map[string]any) {
	st := b.state()
	if st == nil {
		return
	}
	for _, key := range slices.Sorted(maps.Keys(params)) {
		st.collection.SetFilter(key, params[key])
	}
}

// Destroy detaches the binding. Fetches still in flight are not cancelled;
// their results are dropped when they arrive.
func (b *Binding) Destroy() {
	st := b.state()
	if st == nil {
		return
	}
	st.release()
	b.registry.remove(st)
	log.Printf("Detached picker from field %s", b.field.ID())
}

// Focus gives the field focus
func (b *Binding) Focus() tea.Cmd {
	b.field.Focus()
	st := b.state()
	if st == nil || st.widget == nil {
		return nil
	}
	return st.widget.Focus()
}

// Blur takes focus away, committing the interaction
func (b *Binding) Blur() {
	if st := b.state(); st != nil && st.widget != nil {
		st.widget.Blur()
	}
	b.field.Blur()
}

// MenuOpen reports whether the result list is shown
func (b *Binding) MenuOpen() bool {
	st := b.state()
	return st != nil && st.widget != nil && st.widget.Open()
}

// Update routes a message to the binding
func (b *Binding) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchResultMsg:
		if st := b.owner(msg.handle); st != nil {
			b.applySearch(st, msg)
		}
		return nil
	case resolveResultMsg:
		if st := b.owner(msg.handle); st != nil {
			b.applyResolve(st, msg)
		}
		return nil
	}

	st := b.state()
	if st == nil || st.widget == nil {
		return nil
	}
	return st.widget.Update(msg)
}

// owner returns the live state a result belongs to, if it is this binding's
func (b *Binding) owner(handle uint64) *State {
	st := b.registry.lookup(handle)
	if st == nil || st.field != b.field {
		return nil
	}
	return st
}

// View renders the field
func (b *Binding) View() string {
	st := b.state()
	if st == nil || st.widget == nil {
		return b.field.Value()
	}
	return st.widget.View()
}
