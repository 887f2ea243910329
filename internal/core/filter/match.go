package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
)

// Valuer exposes record values by field name, including system fields.
type Valuer interface {
	Value(field string) (any, bool)
}

// Matches evaluates r against v in process. Storage backends that cannot
// push the predicate down use it, and it defines the semantics the others
// must reproduce.
func (r *Request) Matches(v Valuer) bool {
	for _, f := range r.Exact {
		got, ok := v.Value(f.Field)
		if !ok || Compare(got, f.Value) != 0 {
			return false
		}
	}

	for _, g := range r.Search {
		if !searchMatches(v, g) {
			return false
		}
	}

	for _, rf := range r.Ranges {
		got, ok := v.Value(rf.Field)
		if !ok {
			return false
		}
		at, ok := got.(time.Time)
		if !ok {
			return false
		}
		if rf.From != nil && at.Before(*rf.From) {
			return false
		}
		if rf.To != nil && at.After(*rf.To) {
			return false
		}
	}
	return true
}

func searchMatches(v Valuer, g SearchGroup) bool {
	needle := strings.ToLower(g.Text)
	for _, field := range g.Fields {
		got, ok := v.Value(field)
		if !ok {
			continue
		}
		switch val := got.(type) {
		case string:
			if strings.Contains(strings.ToLower(val), needle) {
				return true
			}
		case []string:
			for _, item := range val {
				if strings.Contains(strings.ToLower(item), needle) {
					return true
				}
			}
		}
	}
	return false
}

// Apply filters, sorts and limits items in process.
func Apply[T Valuer](r *Request, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if r.Matches(item) {
			out = append(out, item)
		}
	}

	SortBy(out, r.Sort)

	if r.Limit > 0 && len(out) > r.Limit {
		out = out[:r.Limit]
	}
	return out
}

// SortBy orders items by keys. Missing values sort before present ones in
// ascending order. The sort is stable.
func SortBy[T Valuer](items []T, keys []schema.SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, k := range keys {
			a, aok := items[i].Value(k.Field)
			b, bok := items[j].Value(k.Field)
			var c int
			switch {
			case !aok && !bok:
				c = 0
			case !aok:
				c = -1
			case !bok:
				c = 1
			default:
				c = Compare(a, b)
			}
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// Compare orders two values of the same field type. Values of mismatched
// types compare as unequal by type name.
func Compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}

	if an, ok := schema.ToFloat(a); ok {
		if bn, ok := schema.ToFloat(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(typeName(a), typeName(b))
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "0nil"
	case bool:
		return "bool"
	case string:
		return "string"
	case time.Time:
		return "time"
	}
	if _, ok := schema.ToFloat(v); ok {
		return "number"
	}
	return "other"
}
