// Package collection provides the searchable record collections a picker
// binding reads from, and the records it resolves identifiers against.
package collection

import (
	"context"
	"errors"

	"recpick/internal/domain"
)

// ErrNotFound is returned when a record fetch finds no record for its id
var ErrNotFound = errors.New("collection: record not found")

// Collection is a paged, filterable list of entities
type Collection interface {
	// SetFilter sets a query parameter; a nil value removes it
	SetFilter(key string, value any)
	SetPageSize(n int)
	// Fetch loads the current page for the current filters
	Fetch(ctx context.Context) ([]domain.Entity, error)
	// Models returns the page loaded by the last successful fetch
	Models() []domain.Entity
}

// Resetter is implemented by collections that can drop filters and paging
type Resetter interface {
	ResetPaginationState()
}

// FetchFunc loads one page
type FetchFunc func(ctx context.Context) ([]domain.Entity, error)

// Preparer is implemented by collections that can bind a fetch to the
// filters and paging in effect when Prepare is called. Later SetFilter calls
// do not change what a prepared fetch asks for.
type Preparer interface {
	Prepare() FetchFunc
}

// SetOptions controls attribute writes
type SetOptions struct {
	// Silent suppresses change listeners
	Silent bool
}

// Record is a single mutable entity that can be loaded by id
type Record interface {
	domain.Entity
	IDAttr() string
	Set(attr string, value any, opts SetOptions)
	Fetch(ctx context.Context) error
}
