package filter

import (
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
)

// ExactFilter compares a field for equality.
type ExactFilter struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// SearchGroup matches when any of Fields contains Text, case-insensitively.
type SearchGroup struct {
	Key    string   `json:"key"`
	Fields []string `json:"fields"`
	Text   string   `json:"text"`
}

// RangeFilter bounds a date field. Both ends are inclusive; a nil end is open.
type RangeFilter struct {
	Field string     `json:"field"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

// Request is the compiled form of a listing query. All filters are
// combined with AND.
type Request struct {
	Resource string           `json:"resource"`
	Exact    []ExactFilter    `json:"exact,omitempty"`
	Search   []SearchGroup    `json:"search,omitempty"`
	Ranges   []RangeFilter    `json:"ranges,omitempty"`
	Sort     []schema.SortKey `json:"sort,omitempty"`
	Limit    int              `json:"limit,omitempty"`
}

// ExactValue returns the exact filter on field, if any.
func (r *Request) ExactValue(field string) (any, bool) {
	for _, f := range r.Exact {
		if f.Field == field {
			return f.Value, true
		}
	}
	return nil, false
}

// SetExact replaces any existing exact filter on field.
func (r *Request) SetExact(field string, value any) {
	for i, f := range r.Exact {
		if f.Field == field {
			r.Exact[i].Value = value
			return
		}
	}
	r.Exact = append(r.Exact, ExactFilter{Field: field, Value: value})
}
