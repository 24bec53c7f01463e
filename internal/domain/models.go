package domain

import "fmt"

// Labels of the sentinel candidates
const (
	NoMatchesLabel    = "No matches found!"
	SearchFailedLabel = "Unable to search for items!"
)

// Entity is a record with a stable identifier and named attributes
type Entity interface {
	ID() string
	Get(attr string) any
}

// Candidate is a label/value pair offered during incremental search.
// An empty Value marks a sentinel row that is not a real record.
type Candidate struct {
	Label string
	Value string
}

// IsSentinel reports whether the candidate stands for "no matches" or "error"
func (c Candidate) IsSentinel() bool {
	return c.Value == ""
}

// NoMatches returns the sentinel shown when a search finds nothing
func NoMatches() Candidate {
	return Candidate{Label: NoMatchesLabel}
}

// SearchFailed returns the sentinel shown when a search errors
func SearchFailed() Candidate {
	return Candidate{Label: SearchFailedLabel}
}

// Display renders an attribute value as display text
func Display(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
