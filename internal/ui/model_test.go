package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recpick/internal/binding"
	"recpick/internal/collection"
	"recpick/internal/config"
	"recpick/internal/eventbus"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Search.DelayMS = 1
	cfg.Fields[1].InitialID = "7"
	return cfg
}

func memorySource() SourceFactory {
	items := []*collection.Item{
		collection.NewItem(map[string]any{"id": "1", "name": "Ada Lovelace", "kind": "person"}),
		collection.NewItem(map[string]any{"id": "2", "name": "Alan Turing", "kind": "person"}),
		collection.NewItem(map[string]any{"id": "7", "name": "Globex Corporation", "kind": "company"}),
		collection.NewItem(map[string]any{"id": "9", "name": "Acme Corporation", "kind": "company"}),
	}
	return func(config.FieldConfig) (collection.Collection, collection.Record) {
		coll := collection.NewMemory(items)
		return coll, collection.NewMemoryRecord(coll)
	}
}

type uiHarness struct {
	m          *Model
	bus        eventbus.EventBus
	selections []eventbus.SelectionChangedEvent
	saved      []eventbus.ConfigChangedEvent
	quit       bool
}

func newUIHarness(t *testing.T, cfg *config.Config) *uiHarness {
	t.Helper()
	h := &uiHarness{bus: eventbus.New()}
	h.bus.Subscribe(eventbus.EventSelectionChanged, func(e eventbus.DomainEvent) {
		h.selections = append(h.selections, e.(eventbus.SelectionChangedEvent))
	})
	h.bus.Subscribe(eventbus.EventConfigChanged, func(e eventbus.DomainEvent) {
		h.saved = append(h.saved, e.(eventbus.ConfigChangedEvent))
	})
	m, err := NewModel(h.bus, cfg, memorySource())
	require.NoError(t, err)
	h.m = m
	h.drain(m.Init())
	return h
}

func (h *uiHarness) drain(cmds ...tea.Cmd) {
	queue := append([]tea.Cmd(nil), cmds...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg:
			h.quit = true
			continue
		}
		_, next := h.m.Update(msg)
		queue = append(queue, next)
	}
}

func (h *uiHarness) send(msg tea.Msg) {
	_, cmd := h.m.Update(msg)
	h.drain(cmd)
}

func (h *uiHarness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestInitResolvesInitialValues(t *testing.T) {
	h := newUIHarness(t, testConfig())

	values := h.m.Values()
	assert.Equal(t, binding.Value{}, values["owner"])
	assert.Equal(t, binding.Value{ID: "7", Name: "Globex Corporation"}, values["vendor"])
	assert.Empty(t, h.selections, "initial values are not user changes")
}

func TestPickPublishesSelection(t *testing.T) {
	h := newUIHarness(t, testConfig())

	h.typeText("ada")
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	h.send(tea.KeyMsg{Type: tea.KeyTab})

	assert.Equal(t, binding.Value{ID: "1", Name: "Ada Lovelace"}, h.m.Values()["owner"])
	assert.Equal(t, []eventbus.SelectionChangedEvent{{Field: "owner", ID: "1", Name: "Ada Lovelace"}}, h.selections)
	assert.Equal(t, []string{"Owner → Ada Lovelace (1)"}, h.m.ChangeLog())
}

func TestSearchParamsScopeResults(t *testing.T) {
	h := newUIHarness(t, testConfig())

	h.typeText("cor")

	assert.NotContains(t, h.m.View(), "Acme Corporation", "owner only searches people")
}

func TestEditedFieldIsClearedOnTab(t *testing.T) {
	h := newUIHarness(t, testConfig())
	h.send(tea.KeyMsg{Type: tea.KeyTab})

	h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})

	assert.Equal(t, binding.Value{}, h.m.Values()["vendor"])
	assert.Equal(t, []string{"Vendor cleared"}, h.m.ChangeLog())
	require.Len(t, h.selections, 1)
	assert.Empty(t, h.selections[0].ID)
}

func TestTabbingThroughRaisesNothing(t *testing.T) {
	h := newUIHarness(t, testConfig())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})

	assert.Empty(t, h.selections)
	assert.Equal(t, "7", h.m.Values()["vendor"].ID)
}

func TestQuitRemembersSelection(t *testing.T) {
	cfg := testConfig()
	cfg.UI.RememberSelection = true
	h := newUIHarness(t, cfg)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, h.quit)
	require.Len(t, h.saved, 1)
	assert.Equal(t, map[string]string{"owner": "", "vendor": "7"}, h.saved[0].InitialIDs)
}

func TestQuitWithoutRememberingPublishesNothing(t *testing.T) {
	h := newUIHarness(t, testConfig())

	h.send(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.True(t, h.quit)
	assert.Empty(t, h.saved)
}

func TestDetachAndReattach(t *testing.T) {
	h := newUIHarness(t, testConfig())

	h.send(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Contains(t, h.m.View(), "(detached)")
	h.typeText("ada")
	assert.Equal(t, binding.Value{}, h.m.Values()["owner"])

	h.send(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.NotContains(t, h.m.View(), "(detached)")
	h.typeText("ala")
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, binding.Value{ID: "2", Name: "Alan Turing"}, h.m.Values()["owner"])
}

func TestViewListsFields(t *testing.T) {
	h := newUIHarness(t, testConfig())

	view := h.m.View()

	assert.Contains(t, view, "Owner")
	assert.Contains(t, view, "Vendor")
	assert.Contains(t, view, "Globex Corporation")
}
