package record

import (
	"encoding/json"
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
)

// Record is one stored document of a resource.
type Record struct {
	ID        string
	Resource  string
	Fields    map[string]any
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Value resolves declared and system fields.
func (r *Record) Value(field string) (any, bool) {
	switch field {
	case schema.FieldID:
		return r.ID, true
	case schema.FieldIsActive:
		return r.IsActive, true
	case schema.FieldCreatedAt:
		return r.CreatedAt, true
	case schema.FieldUpdatedAt:
		return r.UpdatedAt, true
	}
	v, ok := r.Fields[field]
	return v, ok
}

// Clone returns a copy that shares no maps or slices with r.
func (r *Record) Clone() *Record {
	c := *r
	c.Fields = make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = cloneValue(v)
	}
	return &c
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	}
	return v
}

// MarshalJSON renders the record flat, system fields alongside declared ones.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+4)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[schema.FieldID] = r.ID
	out[schema.FieldIsActive] = r.IsActive
	out[schema.FieldCreatedAt] = r.CreatedAt
	out[schema.FieldUpdatedAt] = r.UpdatedAt
	return json.Marshal(out)
}

// Document returns the declared fields in their JSON-compatible form, the
// shape document stores persist.
func (r *Record) Document() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339Nano)
			continue
		}
		out[k] = v
	}
	return out
}

// Groups is a nested bucketing of records, keyed by group field values.
// Leaves are []*Record.
type Groups map[string]any
