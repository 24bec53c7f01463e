package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recpick/internal/domain"
)

func sampleItems() []*Item {
	return []*Item{
		NewItem(map[string]any{"id": "1", "name": "Northwind Acme", "kind": "company"}),
		NewItem(map[string]any{"id": "42", "name": "Acme", "kind": "company"}),
		NewItem(map[string]any{"id": "7", "name": "Acme Labs", "kind": "lab"}),
		NewItem(map[string]any{"id": "9", "name": "Globex", "kind": "company"}),
	}
}

func ids(entities []domain.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.ID())
	}
	return out
}

func TestMemoryFetchPrefixMatchesFirst(t *testing.T) {
	m := NewMemory(sampleItems())
	m.SetFilter("q", "acme")

	got, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "7", "1"}, ids(got))
	assert.Equal(t, ids(got), ids(m.Models()))
	assert.Equal(t, 1, m.Fetches())
}

func TestMemoryFetchAppliesAttributeFilters(t *testing.T) {
	m := NewMemory(sampleItems(), WithSearchKey("term"))
	m.SetFilter("term", "acme")
	m.SetFilter("kind", "company")

	got, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "1"}, ids(got))

	m.SetFilter("kind", nil)
	got, err = m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestMemoryPrepareKeepsQuery(t *testing.T) {
	m := NewMemory(sampleItems())
	m.SetFilter("q", "acme")
	m.SetPageSize(2)
	fetch := m.Prepare()

	m.SetFilter("q", "glob")
	m.SetPageSize(10)
	assert.Zero(t, m.Fetches(), "preparing does not fetch")

	got, err := fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "7"}, ids(got))
	assert.Equal(t, 1, m.Fetches())
}

func TestMemoryPaging(t *testing.T) {
	m := NewMemory(sampleItems())
	m.SetPageSize(2)
	m.SetPage(1)

	got, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "1"}, ids(got))

	m.SetPage(5)
	got, err = m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryResetPaginationState(t *testing.T) {
	m := NewMemory(sampleItems())
	m.SetFilter("q", "zzz")
	m.SetPageSize(1)
	m.SetPage(3)

	m.ResetPaginationState()

	_, ok := m.Filter("q")
	assert.False(t, ok)
	assert.Zero(t, m.PageSize())
	got, err := m.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestMemoryFailure(t *testing.T) {
	m := NewMemory(sampleItems())
	boom := errors.New("boom")
	m.FailWith(boom)

	_, err := m.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)

	rec := NewMemoryRecord(m)
	rec.Set("id", "42", SetOptions{Silent: true})
	assert.ErrorIs(t, rec.Fetch(context.Background()), boom)
}

func TestMemoryLatencyHonoursContext(t *testing.T) {
	m := NewMemory(sampleItems(), WithLatency(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.Fetch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryRecordFetch(t *testing.T) {
	m := NewMemory(sampleItems())
	rec := NewMemoryRecord(m)

	rec.Set("id", "42", SetOptions{Silent: true})
	require.NoError(t, rec.Fetch(context.Background()))
	assert.Equal(t, "Acme", rec.Get("name"))
	assert.Equal(t, "42", rec.ID())

	rec.Set("id", "404", SetOptions{Silent: true})
	assert.ErrorIs(t, rec.Fetch(context.Background()), ErrNotFound)
}

func TestItemSetNotifiesUnlessSilent(t *testing.T) {
	it := NewItem(nil)
	var seen []string
	remove := it.OnChange(func(attr string, value any) {
		seen = append(seen, attr+"="+domain.Display(value))
	})

	it.Set("id", "1", SetOptions{Silent: true})
	it.Set("name", "Acme", SetOptions{})
	remove()
	it.Set("name", "Globex", SetOptions{})

	assert.Equal(t, []string{"name=Acme"}, seen)
	assert.Equal(t, "1", it.ID())
}
