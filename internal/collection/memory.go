package collection

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"recpick/internal/domain"
)

// MemoryOption configures a Memory collection
type MemoryOption func(*Memory)

// WithSearchKey names the filter treated as the free-text query
func WithSearchKey(key string) MemoryOption {
	return func(m *Memory) {
		if key != "" {
			m.searchKey = key
		}
	}
}

// WithLabelAttr names the attribute the free-text query matches against
func WithLabelAttr(attr string) MemoryOption {
	return func(m *Memory) {
		if attr != "" {
			m.labelAttr = attr
		}
	}
}

// WithLatency delays every fetch, to mimic a remote source
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.latency = d
	}
}

// Memory is an in-memory Collection. The free-text filter matches the label
// attribute case-insensitively, prefix matches first; every other filter
// must equal the attribute of the same name.
type Memory struct {
	mu        sync.RWMutex
	items     []*Item
	byID      map[string]*Item
	searchKey string
	labelAttr string
	latency   time.Duration
	failure   error

	filters  map[string]any
	pageSize int
	page     int
	models   []domain.Entity
	fetches  int
}

// NewMemory creates a collection over the given items
func NewMemory(items []*Item, opts ...MemoryOption) *Memory {
	m := &Memory{
		searchKey: "q",
		labelAttr: "name",
		filters:   make(map[string]any),
		byID:      make(map[string]*Item, len(items)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	for _, it := range items {
		m.items = append(m.items, it)
		m.byID[it.ID()] = it
	}
	return m
}

func (m *Memory) SetFilter(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.filters, key)
		return
	}
	m.filters[key] = value
}

// Filter returns the current value of a filter
func (m *Memory) Filter(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.filters[key]
	return v, ok
}

func (m *Memory) SetPageSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageSize = n
}

func (m *Memory) PageSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageSize
}

// SetPage selects the zero-based page the next fetch loads
func (m *Memory) SetPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 0 {
		page = 0
	}
	m.page = page
}

func (m *Memory) ResetPaginationState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = make(map[string]any)
	m.pageSize = 0
	m.page = 0
	m.models = nil
}

// FailWith makes every following fetch return err; nil restores normal fetches
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

// Fetches returns how many fetches were issued
func (m *Memory) Fetches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetches
}

func (m *Memory) Models() []domain.Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Entity(nil), m.models...)
}

func (m *Memory) Fetch(ctx context.Context) ([]domain.Entity, error) {
	return m.Prepare()(ctx)
}

// Prepare snapshots the current filters and paging
func (m *Memory) Prepare() FetchFunc {
	m.mu.RLock()
	filters := make(map[string]any, len(m.filters))
	for k, v := range m.filters {
		filters[k] = v
	}
	pageSize, page := m.pageSize, m.page
	m.mu.RUnlock()

	return func(ctx context.Context) ([]domain.Entity, error) {
		m.mu.Lock()
		m.fetches++
		latency, failure := m.latency, m.failure
		m.mu.Unlock()

		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if failure != nil {
			return nil, failure
		}

		loaded := m.query(filters, pageSize, page)

		m.mu.Lock()
		m.models = loaded
		m.mu.Unlock()
		return append([]domain.Entity(nil), loaded...), nil
	}
}

// Lookup returns the item with the given id
func (m *Memory) Lookup(id string) (*Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.byID[id]
	return it, ok
}

type matchedItem struct {
	item     *Item
	label    string
	isPrefix bool
}

func (m *Memory) query(filters map[string]any, pageSize, page int) []domain.Entity {
	term := strings.ToLower(strings.TrimSpace(domain.Display(filters[m.searchKey])))
	matches := make([]matchedItem, 0, len(m.items))
	for _, it := range m.items {
		if !matchesFilters(it, filters, m.searchKey) {
			continue
		}
		label := domain.Display(it.Get(m.labelAttr))
		lower := strings.ToLower(label)
		if term != "" && !strings.Contains(lower, term) {
			continue
		}
		matches = append(matches, matchedItem{
			item:     it,
			label:    label,
			isPrefix: term != "" && strings.HasPrefix(lower, term),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].label < matches[j].label
	})

	if pageSize > 0 {
		start := page * pageSize
		if start >= len(matches) {
			return nil
		}
		end := start + pageSize
		if end > len(matches) {
			end = len(matches)
		}
		matches = matches[start:end]
	}

	out := make([]domain.Entity, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.item)
	}
	return out
}

func matchesFilters(it *Item, filters map[string]any, searchKey string) bool {
	for key, want := range filters {
		if key == searchKey {
			continue
		}
		if domain.Display(it.Get(key)) != domain.Display(want) {
			return false
		}
	}
	return true
}

// MemoryRecord resolves its id against a Memory collection
type MemoryRecord struct {
	*Item
	source *Memory
}

// NewMemoryRecord creates an empty record backed by source
func NewMemoryRecord(source *Memory) *MemoryRecord {
	return &MemoryRecord{
		Item:   NewItem(nil),
		source: source,
	}
}

func (r *MemoryRecord) Fetch(ctx context.Context) error {
	r.source.mu.RLock()
	latency, failure := r.source.latency, r.source.failure
	r.source.mu.RUnlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failure != nil {
		return failure
	}

	found, ok := r.source.Lookup(r.ID())
	if !ok {
		return ErrNotFound
	}
	r.replace(found.Attributes())
	return nil
}
