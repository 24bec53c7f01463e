package ui

import (
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"recpick/internal/binding"
	"recpick/internal/collection"
	"recpick/internal/config"
	"recpick/internal/domain"
	"recpick/internal/eventbus"
	"recpick/internal/input"
	"recpick/internal/ui/views"
)

// maxLogEntries bounds the change log shown under the form
const maxLogEntries = 6

// SourceFactory creates the collection searched by a field and the record
// its initial value is resolved against
type SourceFactory func(field config.FieldConfig) (collection.Collection, collection.Record)

// formField is one picker row of the form
type formField struct {
	cfg     config.FieldConfig
	field   *input.Field
	binding *binding.Binding
	source  SourceFactory
}

// Model represents the UI state
type Model struct {
	bus      eventbus.EventBus
	config   *config.Config
	styles   *views.Styles
	registry *binding.Registry

	fields []*formField
	focus  int

	changeLog []string
	status    string
	statusErr bool

	width  int
	height int

	helpRenderer *HelpRenderer
	helpOps      *HelpOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model with one picker per configured field
func NewModel(bus eventbus.EventBus, cfg *config.Config, source SourceFactory) (*Model, error) {
	m := &Model{
		bus:          bus,
		config:       cfg,
		styles:       views.NewStyles(),
		registry:     binding.NewRegistry(),
		helpRenderer: NewHelpRenderer(),
	}

	for _, fc := range cfg.Fields {
		ff := &formField{
			cfg:    fc,
			field:  input.NewField(fc.Name),
			source: source,
		}
		ff.binding = m.registry.Binding(ff.field)
		if err := m.attach(ff); err != nil {
			return nil, fmt.Errorf("failed to bind field %s: %w", fc.Name, err)
		}
		ff.field.On(domain.EventChange, func(domain.DomainEvent) {
			m.onFieldChanged(ff)
		})
		m.fields = append(m.fields, ff)
	}
	return m, nil
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

func (m *Model) attach(ff *formField) error {
	coll, rec := ff.source(ff.cfg)
	err := ff.binding.Attach(binding.Options{
		Model:       rec,
		Collection:  coll,
		SearchParam: ff.cfg.SearchParam,
		LabelField:  ff.cfg.LabelField,
		MinLength:   m.config.Search.MinLength,
		Delay:       m.config.Search.Delay(),
		PageSize:    m.config.Search.PageSize,
		Timeout:     m.config.Search.Timeout(),
		Spinner:     m.config.Search.Spinner,
		Placeholder: ff.cfg.Placeholder,
		Width:       40,
		Styles:      m.styles.Picker(),
	})
	if err != nil {
		return err
	}
	if len(ff.cfg.Params) > 0 {
		ff.binding.SetSearchParams(ff.cfg.Params)
	}
	return nil
}

// onFieldChanged is the page-level listener: it only ever sees the
// binding's own change events
func (m *Model) onFieldChanged(ff *formField) {
	v := ff.binding.Value()
	entry := fmt.Sprintf("%s cleared", ff.cfg.Title)
	if v.ID != "" {
		entry = fmt.Sprintf("%s → %s (%s)", ff.cfg.Title, v.Name, v.ID)
	}
	m.changeLog = append(m.changeLog, entry)
	if len(m.changeLog) > maxLogEntries {
		m.changeLog = m.changeLog[len(m.changeLog)-maxLogEntries:]
	}

	if m.bus != nil {
		m.bus.Publish(eventbus.SelectionChangedEvent{
			Field: ff.cfg.Name,
			ID:    v.ID,
			Name:  v.Name,
		})
	}
}

// Init resolves configured initial values and focuses the first field
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, ff := range m.fields {
		if ff.cfg.InitialID == "" {
			continue
		}
		cmd, err := ff.binding.SetValue(ff.cfg.InitialID)
		if err != nil {
			log.Printf("Failed to set initial value of %s: %v", ff.cfg.Name, err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	if len(m.fields) > 0 {
		cmds = append(cmds, m.fields[0].binding.Focus())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case helpPagerMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Help failed: %v", msg.err), true)
		}
		return m, nil

	case quitMsg:
		m.quit(msg.saveConfig)
		return m, tea.Quit
	}

	// Everything else (search and resolve results, timers, spinner ticks)
	// goes to every binding; each one ignores what is not addressed to it.
	var cmds []tea.Cmd
	for _, ff := range m.fields {
		cmds = append(cmds, ff.binding.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return func() tea.Msg {
			return quitMsg{saveConfig: m.config.UI.RememberSelection}
		}
	case "tab":
		return m.moveFocus(1)
	case "shift+tab":
		return m.moveFocus(-1)
	case "f1":
		return m.showHelp()
	case "ctrl+d":
		return m.toggleAttached()
	}

	ff := m.focused()
	if ff == nil {
		return nil
	}
	return ff.binding.Update(msg)
}

func (m *Model) focused() *formField {
	if m.focus < 0 || m.focus >= len(m.fields) {
		return nil
	}
	return m.fields[m.focus]
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if len(m.fields) == 0 {
		return nil
	}
	if ff := m.focused(); ff != nil {
		ff.binding.Blur()
	}
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	return m.fields[m.focus].binding.Focus()
}

// toggleAttached destroys the focused picker, or attaches it again
func (m *Model) toggleAttached() tea.Cmd {
	ff := m.focused()
	if ff == nil {
		return nil
	}
	if ff.binding.Attached() {
		ff.binding.Destroy()
		m.setStatus(fmt.Sprintf("%s detached", ff.cfg.Title), false)
		return nil
	}
	if err := m.attach(ff); err != nil {
		m.setStatus(fmt.Sprintf("Failed to attach %s: %v", ff.cfg.Title, err), true)
		return nil
	}
	m.setStatus(fmt.Sprintf("%s attached", ff.cfg.Title), false)
	// the new state needs a focus event to start its session
	ff.field.Blur()
	return ff.binding.Focus()
}

func (m *Model) showHelp() tea.Cmd {
	if m.helpOps == nil {
		return nil
	}
	content := m.helpRenderer.RenderHelpContentPlain()
	ops := m.helpOps
	return func() tea.Msg {
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}

// quit commits the focused field and publishes the selection to persist
func (m *Model) quit(save bool) {
	if ff := m.focused(); ff != nil {
		ff.binding.Blur()
	}
	if !save || m.bus == nil {
		return
	}
	ids := make(map[string]string, len(m.fields))
	for _, ff := range m.fields {
		ids[ff.cfg.Name] = ff.binding.Value().ID
	}
	m.bus.Publish(eventbus.ConfigChangedEvent{InitialIDs: ids})
}

func (m *Model) setStatus(status string, isErr bool) {
	m.status = status
	m.statusErr = isErr
}

// Values returns the bound value of every field by name
func (m *Model) Values() map[string]binding.Value {
	out := make(map[string]binding.Value, len(m.fields))
	for _, ff := range m.fields {
		out[ff.cfg.Name] = ff.binding.Value()
	}
	return out
}

// ChangeLog returns the recent change entries, oldest first
func (m *Model) ChangeLog() []string {
	return append([]string(nil), m.changeLog...)
}

// View renders the form
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("recpick"))
	b.WriteString("\n")

	for i, ff := range m.fields {
		marker := "  "
		label := m.styles.Label.Render(ff.cfg.Title)
		if i == m.focus {
			marker = m.styles.Marker.Render("› ")
			label = m.styles.FocusedLabel.Render(ff.cfg.Title)
		}
		b.WriteString(marker)
		b.WriteString(label)
		if !ff.binding.Attached() {
			b.WriteString(m.styles.Detached.Render(ff.field.Value() + " (detached)"))
		} else {
			b.WriteString(indent(ff.binding.View(), 12))
		}
		b.WriteString("\n")
	}

	if len(m.changeLog) > 0 {
		entries := make([]string, len(m.changeLog))
		for i, e := range m.changeLog {
			entries[i] = m.styles.LogEntry.Render(e)
		}
		b.WriteString(m.styles.LogBox.Render(strings.Join(entries, "\n")))
		b.WriteString("\n")
	}

	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.StatusError
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("tab/shift+tab field • ↑/↓ results • enter pick • esc close • f1 help • ctrl+d detach • ctrl+c quit"))
	return b.String()
}

// indent pads every line after the first so menus line up under the input
func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}
