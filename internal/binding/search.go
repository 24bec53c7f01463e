package binding

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"recpick/internal/collection"
	"recpick/internal/domain"
)

// searchResultMsg carries the outcome of one collection fetch
type searchResultMsg struct {
	handle   uint64
	term     string
	entities []domain.Entity
	err      error
}

// source is the data source handed to the widget. It configures the
// collection on the event loop and fetches in a command. Collections that
// can prepare a fetch have their query fixed before the command runs.
func (b *Binding) source(st *State) func(term string) tea.Cmd {
	return func(term string) tea.Cmd {
		st.field.SetBusy(true)
		st.collection.SetFilter(st.searchField, term)
		st.collection.SetPageSize(st.opts.PageSize)

		load := st.collection.Fetch
		if p, ok := st.collection.(collection.Preparer); ok {
			load = p.Prepare()
		}
		handle, timeout := st.handle, st.opts.Timeout
		fetch := func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			entities, err := load(ctx)
			return searchResultMsg{handle: handle, term: term, entities: entities, err: err}
		}

		var spin tea.Cmd
		if st.widget != nil {
			spin = st.widget.StartBusy()
		}
		return tea.Batch(fetch, spin)
	}
}

// applySearch hands the candidates of a finished fetch to the widget
func (b *Binding) applySearch(st *State, msg searchResultMsg) {
	st.field.SetBusy(false)
	if st.widget == nil {
		return
	}
	if msg.err != nil {
		log.Printf("Search for %q on field %s failed: %v", msg.term, st.field.ID(), msg.err)
		st.widget.Respond([]domain.Candidate{domain.SearchFailed()})
		return
	}
	items := candidates(msg.entities, st.labelField)
	if len(items) == 0 {
		items = []domain.Candidate{domain.NoMatches()}
	}
	st.widget.Respond(items)
}

func candidates(entities []domain.Entity, labelField string) []domain.Candidate {
	items := make([]domain.Candidate, 0, len(entities))
	for _, e := range entities {
		items = append(items, domain.Candidate{
			Label: domain.Display(e.Get(labelField)),
			Value: e.ID(),
		})
	}
	return items
}
