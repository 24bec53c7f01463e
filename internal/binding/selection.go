package binding

import (
	"recpick/internal/autocomplete"
	"recpick/internal/domain"
)

// activate builds the widget the first time the field is focused
func (b *Binding) activate(st *State) {
	if st.widget != nil {
		return
	}
	st.widget = autocomplete.New(st.field, autocomplete.Config{
		MinLength:   st.opts.MinLength,
		Delay:       st.opts.Delay,
		Source:      b.source(st),
		Select:      func(item domain.Candidate) { b.onSelect(st, item) },
		Highlight:   func(item domain.Candidate) { b.onHighlight(st, item) },
		Change:      func(item *domain.Candidate) { b.onCommitted(st, item) },
		Placeholder: st.opts.Placeholder,
		Width:       st.opts.Width,
		MaxVisible:  st.opts.MaxVisible,
		Spinner:     st.opts.Spinner,
		Styles:      st.opts.Styles,
	})
}

func (b *Binding) onFocus(st *State) {
	b.activate(st)
	st.snapshot()
}

// onHighlight previews a row's label without committing it
func (b *Binding) onHighlight(st *State, item domain.Candidate) {
	if item.IsSentinel() {
		return
	}
	st.field.SetValue(item.Label)
}

func (b *Binding) onSelect(st *State, item domain.Candidate) {
	commit(st, item)
	announce(st)
	st.announced = true
}

// onCommitted runs on every blur with the row picked during the session
func (b *Binding) onCommitted(st *State, item *domain.Candidate) {
	defer st.clearSnapshot()

	if item != nil {
		if st.announced {
			return
		}
		commit(st, *item)
		announce(st)
		return
	}

	if st.hasPrevious && st.field.Value() == st.previousRaw && st.selectedID == st.previousID {
		return
	}
	st.selectedID = ""
	st.field.SetValue("")
	announce(st)
}

func commit(st *State, item domain.Candidate) {
	if item.IsSentinel() {
		st.selectedID = ""
		st.field.SetValue("")
		return
	}
	st.selectedID = item.Value
	st.field.SetValue(item.Label)
}

// announce raises the binding's own change on the field
func announce(st *State) {
	st.field.Dispatch(domain.ChangeEvent{FieldID: st.field.ID(), Tag: st.tag})
}
