package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"recpick/internal/domain"
)

// RemoteConfig describes the record service an HTTP collection talks to
type RemoteConfig struct {
	BaseURL     string
	RecordsPath string
	ResultsPath string // dotted path to the result array in a list payload
	IDField     string
	LimitParam  string
	OffsetParam string
}

// withDefaults fills empty fields
func (c RemoteConfig) withDefaults() RemoteConfig {
	if c.RecordsPath == "" {
		c.RecordsPath = "/api/records"
	}
	if c.IDField == "" {
		c.IDField = DefaultIDAttr
	}
	if c.LimitParam == "" {
		c.LimitParam = "limit"
	}
	if c.OffsetParam == "" {
		c.OffsetParam = "offset"
	}
	return c
}

func (c RemoteConfig) recordsURL() (*url.URL, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	u, err := url.Parse(base + "/" + strings.TrimLeft(c.RecordsPath, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	return u, nil
}

// HTTP is a Collection backed by a JSON record service. Filters become query
// parameters; the page size and page become limit and offset.
type HTTP struct {
	client *http.Client
	cfg    RemoteConfig

	mu       sync.RWMutex
	filters  map[string]any
	pageSize int
	page     int
	models   []domain.Entity
}

// NewHTTP creates a remote collection
func NewHTTP(client *http.Client, cfg RemoteConfig) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		client:  client,
		cfg:     cfg.withDefaults(),
		filters: make(map[string]any),
	}
}

func (c *HTTP) SetFilter(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == nil {
		delete(c.filters, key)
		return
	}
	c.filters[key] = value
}

func (c *HTTP) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pageSize = n
}

// SetPage selects the zero-based page the next fetch loads
func (c *HTTP) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 0 {
		page = 0
	}
	c.page = page
}

func (c *HTTP) ResetPaginationState() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = make(map[string]any)
	c.pageSize = 0
	c.page = 0
	c.models = nil
}

func (c *HTTP) Models() []domain.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Entity(nil), c.models...)
}

// Query returns the query string the next fetch sends
func (c *HTTP) Query() url.Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q := url.Values{}
	for k, v := range c.filters {
		q.Set(k, domain.Display(v))
	}
	if c.pageSize > 0 {
		q.Set(c.cfg.LimitParam, strconv.Itoa(c.pageSize))
		if c.page > 0 {
			q.Set(c.cfg.OffsetParam, strconv.Itoa(c.page*c.pageSize))
		}
	}
	return q
}

func (c *HTTP) Fetch(ctx context.Context) ([]domain.Entity, error) {
	return c.Prepare()(ctx)
}

// Prepare builds the request URL from the current filters and paging
func (c *HTTP) Prepare() FetchFunc {
	reqURL, err := c.cfg.recordsURL()
	if err != nil {
		return func(context.Context) ([]domain.Entity, error) {
			return nil, err
		}
	}
	reqURL.RawQuery = c.Query().Encode()
	rawURL := reqURL.String()

	return func(ctx context.Context) ([]domain.Entity, error) {
		var payload any
		if err := c.getJSON(ctx, rawURL, &payload); err != nil {
			return nil, err
		}

		var entities []domain.Entity
		for _, raw := range extractResults(payload, c.cfg.ResultsPath) {
			obj, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			item := NewItemWithID(obj, c.cfg.IDField)
			if item.ID() == "" {
				continue
			}
			entities = append(entities, item)
		}

		c.mu.Lock()
		c.models = entities
		c.mu.Unlock()
		return append([]domain.Entity(nil), entities...), nil
	}
}

func (c *HTTP) getJSON(ctx context.Context, rawURL string, out any) error {
	return getJSON(ctx, c.client, rawURL, out)
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func extractResults(payload any, path string) []any {
	if payload == nil {
		return nil
	}
	cur := payload
	if path != "" {
		for _, segment := range strings.Split(path, ".") {
			node, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = node[segment]
		}
	}
	if v, ok := cur.([]any); ok {
		return v
	}
	return nil
}

// HTTPRecord loads a single record from the record service by id
type HTTPRecord struct {
	*Item
	client *http.Client
	cfg    RemoteConfig
}

// NewHTTPRecord creates an empty remote record
func NewHTTPRecord(client *http.Client, cfg RemoteConfig) *HTTPRecord {
	if client == nil {
		client = http.DefaultClient
	}
	cfg = cfg.withDefaults()
	return &HTTPRecord{
		Item:   NewItemWithID(nil, cfg.IDField),
		client: client,
		cfg:    cfg,
	}
}

func (r *HTTPRecord) Fetch(ctx context.Context) error {
	id := r.ID()
	if id == "" {
		return fmt.Errorf("record has no %s", r.cfg.IDField)
	}
	u, err := r.cfg.recordsURL()
	if err != nil {
		return err
	}
	u = u.JoinPath(id)

	var obj map[string]any
	if err := getJSON(ctx, r.client, u.String(), &obj); err != nil {
		return err
	}
	r.replace(obj)
	return nil
}
