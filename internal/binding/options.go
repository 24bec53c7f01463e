package binding

import (
	"time"

	"recpick/internal/autocomplete"
	"recpick/internal/collection"
)

// Defaults applied to zero-valued options
const (
	DefaultLabelField = "name"
	DefaultPageSize   = 10
	DefaultTimeout    = 10 * time.Second
)

// Options configures a binding
type Options struct {
	// Model is the record SetValue resolves identifiers against
	Model collection.Record
	// Collection is searched while the user types
	Collection collection.Collection
	// SearchParam is the collection filter carrying the typed term
	SearchParam string
	// LabelField is the entity attribute shown as display text
	LabelField string

	MinLength   int
	Delay       time.Duration
	PageSize    int
	Timeout     time.Duration
	Spinner     bool
	Placeholder string
	Width       int
	MaxVisible  int
	Styles      *autocomplete.Styles
}

func (o Options) withDefaults() Options {
	if o.LabelField == "" {
		o.LabelField = DefaultLabelField
	}
	if o.MinLength <= 0 {
		o.MinLength = autocomplete.DefaultMinLength
	}
	if o.Delay <= 0 {
		o.Delay = autocomplete.DefaultDelay
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}
