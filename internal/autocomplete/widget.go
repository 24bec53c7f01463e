// Package autocomplete is an incremental-search text input: it debounces
// typed text, asks a source for candidates, shows them in a list and reports
// highlight, selection and blur back to its owner.
package autocomplete

import (
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"recpick/internal/domain"
	"recpick/internal/input"
)

// Defaults
const (
	DefaultMinLength  = 3
	DefaultDelay      = 500 * time.Millisecond
	DefaultMaxVisible = 10
)

// Config configures a widget
type Config struct {
	MinLength int
	Delay     time.Duration

	// Source is asked for candidates once the typed term settles. It returns
	// the command that eventually leads its owner to call Respond.
	Source func(term string) tea.Cmd
	// Select is called when the user picks a row
	Select func(item domain.Candidate)
	// Highlight is called when the user moves onto a row
	Highlight func(item domain.Candidate)
	// Change is called on every blur with the row picked since focus, if any
	Change func(item *domain.Candidate)

	Placeholder string
	Width       int
	MaxVisible  int
	Spinner     bool
	Styles      *Styles
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// searchTimeoutMsg fires when the settle delay after a keystroke elapses
type searchTimeoutMsg struct {
	widget int
	seq    int
}

// Widget is the incremental-search primitive attached to one field
type Widget struct {
	id     int
	field  *input.Field
	cfg    Config
	styles Styles

	input textinput.Model
	spin  spinner.Model

	active  bool
	focused bool

	items  []domain.Candidate
	open   bool
	cursor int // highlighted row, -1 for none

	term       string // text typed by the user, restored when leaving the list
	selected   *domain.Candidate
	focusValue string
	seq        int
}

// New creates an active widget for field
func New(field *input.Field, cfg Config) *Widget {
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = DefaultMaxVisible
	}
	styles := DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}

	ti := textinput.New()
	ti.Prompt = "" // Prompt is handled in the UI layer
	ti.Placeholder = cfg.Placeholder
	ti.CharLimit = 256
	if cfg.Width > 0 {
		ti.Width = cfg.Width
	}
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(field.Value())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Busy

	return &Widget{
		id:     nextID(),
		field:  field,
		cfg:    cfg,
		styles: styles,
		input:  ti,
		spin:   sp,
		active: true,
		cursor: -1,
	}
}

// Active reports whether the widget is attached and usable
func (w *Widget) Active() bool {
	return w != nil && w.active
}

// Destroy deactivates the widget; pending searches are ignored afterwards
func (w *Widget) Destroy() {
	if !w.Active() {
		return
	}
	w.active = false
	w.focused = false
	w.close()
	w.selected = nil
	w.seq++
	w.input.Blur()
}

// Focused reports whether the widget currently has focus
func (w *Widget) Focused() bool {
	return w.focused
}

// Open reports whether the result list is shown
func (w *Widget) Open() bool {
	return w.open
}

// Items returns the rows of the result list
func (w *Widget) Items() []domain.Candidate {
	return append([]domain.Candidate(nil), w.items...)
}

// Highlighted returns the index of the highlighted row, or -1
func (w *Widget) Highlighted() int {
	return w.cursor
}

// Focus starts an interaction with the field
func (w *Widget) Focus() tea.Cmd {
	if !w.Active() || w.focused {
		return nil
	}
	w.focused = true
	w.focusValue = w.field.Value()
	w.term = w.field.Value()
	w.selected = nil
	w.syncInput()
	return w.input.Focus()
}

// Blur ends the interaction: the list closes, Change is reported and a
// native change is dispatched on the field when its text differs from the
// text it had on focus.
func (w *Widget) Blur() {
	if !w.Active() || !w.focused {
		return
	}
	w.focused = false
	w.seq++
	w.close()
	w.input.Blur()

	if w.cfg.Change != nil {
		w.cfg.Change(w.selected)
	}
	if w.field.Value() != w.focusValue {
		w.field.Dispatch(domain.ChangeEvent{FieldID: w.field.ID()})
	}
	w.selected = nil
}

// Respond shows the candidates produced for the last search
func (w *Widget) Respond(items []domain.Candidate) {
	if !w.Active() || !w.focused {
		return
	}
	w.items = append([]domain.Candidate(nil), items...)
	w.open = len(w.items) > 0
	w.cursor = -1
}

// Update handles keys, settle timers and spinner ticks
func (w *Widget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchTimeoutMsg:
		if msg.widget != w.id || !w.Active() || !w.focused || msg.seq != w.seq {
			return nil
		}
		return w.search()

	case spinner.TickMsg:
		if !w.cfg.Spinner || !w.field.Busy() {
			return nil
		}
		var cmd tea.Cmd
		w.spin, cmd = w.spin.Update(msg)
		return cmd

	case tea.KeyMsg:
		if !w.Active() || !w.focused {
			return nil
		}
		return w.handleKey(msg)
	}

	if !w.Active() || !w.focused {
		return nil
	}
	return w.edit(msg)
}

// StartBusy returns the command that animates the busy indicator
func (w *Widget) StartBusy() tea.Cmd {
	if !w.cfg.Spinner {
		return nil
	}
	return w.spin.Tick
}

func (w *Widget) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp:
		w.move(-1)
		return nil
	case tea.KeyDown:
		w.move(1)
		return nil
	case tea.KeyEnter:
		if w.open && w.cursor >= 0 && w.cursor < len(w.items) {
			w.pick(w.items[w.cursor])
		}
		return nil
	case tea.KeyEsc:
		if w.open {
			w.field.SetValue(w.term)
			w.close()
		}
		return nil
	}
	return w.edit(msg)
}

// edit feeds a message to the text input and schedules a search when the
// text changed
func (w *Widget) edit(msg tea.Msg) tea.Cmd {
	w.syncInput()
	before := w.input.Value()

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)

	after := w.input.Value()
	if after == before {
		return cmd
	}
	w.field.SetValue(after)
	w.term = after
	w.selected = nil
	return tea.Batch(cmd, w.schedule())
}

func (w *Widget) schedule() tea.Cmd {
	w.seq++
	if utf8.RuneCountInString(w.field.Value()) < w.cfg.MinLength {
		w.close()
		return nil
	}
	id, seq := w.id, w.seq
	return tea.Tick(w.cfg.Delay, func(time.Time) tea.Msg {
		return searchTimeoutMsg{widget: id, seq: seq}
	})
}

func (w *Widget) search() tea.Cmd {
	term := w.field.Value()
	if utf8.RuneCountInString(term) < w.cfg.MinLength {
		w.close()
		return nil
	}
	w.term = term
	if w.cfg.Source == nil {
		return nil
	}
	return w.cfg.Source(term)
}

func (w *Widget) move(delta int) {
	if !w.open || len(w.items) == 0 {
		return
	}
	next := w.cursor + delta
	switch {
	case next < -1:
		next = len(w.items) - 1
	case next >= len(w.items):
		next = -1
	}
	w.cursor = next
	if next == -1 {
		w.field.SetValue(w.term)
		return
	}
	if w.cfg.Highlight != nil {
		w.cfg.Highlight(w.items[next])
	}
}

func (w *Widget) pick(item domain.Candidate) {
	picked := item
	w.selected = &picked
	w.close()
	if w.cfg.Select != nil {
		w.cfg.Select(item)
	}
}

func (w *Widget) close() {
	w.open = false
	w.items = nil
	w.cursor = -1
}

func (w *Widget) syncInput() {
	if w.input.Value() != w.field.Value() {
		w.input.SetValue(w.field.Value())
		w.input.CursorEnd()
	}
}

// View renders the input line and, when open, the result list below it
func (w *Widget) View() string {
	var b strings.Builder

	if w.focused {
		w.syncInput()
		b.WriteString(w.input.View())
	} else if v := w.field.Value(); v != "" {
		b.WriteString(w.styles.Input.Render(v))
	} else {
		b.WriteString(w.styles.Placeholder.Render(w.cfg.Placeholder))
	}

	if w.field.Busy() {
		b.WriteString(" ")
		if w.cfg.Spinner {
			b.WriteString(w.spin.View())
		} else {
			b.WriteString(w.styles.Busy.Render("…"))
		}
	}

	if w.open {
		b.WriteString("\n")
		b.WriteString(w.styles.Menu.Render(w.renderItems()))
	}
	return b.String()
}

func (w *Widget) renderItems() string {
	start, end := 0, len(w.items)
	if end > w.cfg.MaxVisible {
		// keep the highlighted row in view
		if w.cursor >= w.cfg.MaxVisible {
			start = w.cursor - w.cfg.MaxVisible + 1
		}
		end = start + w.cfg.MaxVisible
	}

	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, w.styles.Scroll.Render("↑ (more above)"))
	}
	for i := start; i < end; i++ {
		style := w.styles.Item
		if i == w.cursor {
			style = w.styles.Highlight
		}
		lines = append(lines, style.Render(w.items[i].Label))
	}
	if end < len(w.items) {
		lines = append(lines, w.styles.Scroll.Render("↓ (more below)"))
	}
	return strings.Join(lines, "\n")
}
