package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/deptsite/deptcms/pkg/apperror"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and plain calendar dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func requiredViolation(f FieldSpec) apperror.FieldViolation {
	return apperror.FieldViolation{Field: f.Name, Message: fmt.Sprintf("%s is required", f.DisplayName())}
}

// Sanitize prepares a request body for validation. Unknown, system and
// counter fields are dropped, strings are trimmed and case-normalized.
// For partial payloads a null value on an optional field is returned in
// unset; on create a null value is treated as absent.
func (d *ResourceDefinition) Sanitize(input map[string]any, partial bool) (set map[string]any, unset []string, violations []apperror.FieldViolation) {
	set = make(map[string]any, len(input))
	for name, v := range input {
		f, ok := d.Field(name)
		if !ok || f.Counter {
			continue
		}

		if v == nil {
			if partial {
				if f.Required {
					violations = append(violations, requiredViolation(f))
				} else {
					unset = append(unset, name)
				}
			}
			continue
		}

		switch val := v.(type) {
		case string:
			s := applyCase(strings.TrimSpace(val), f.Case)
			if s == "" && (f.Required || f.Enum != nil || f.Type == TypeDate) {
				if partial && f.Required {
					violations = append(violations, requiredViolation(f))
				} else if partial {
					unset = append(unset, name)
				}
				continue
			}
			set[name] = s
		case []any:
			items := make([]any, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					item = strings.TrimSpace(s)
				}
				items = append(items, item)
			}
			set[name] = items
		case []string:
			items := make([]any, 0, len(val))
			for _, s := range val {
				items = append(items, strings.TrimSpace(s))
			}
			set[name] = items
		default:
			set[name] = v
		}
	}
	return set, unset, violations
}

// ApplyDefaults fills declared defaults for absent fields.
func (d *ResourceDefinition) ApplyDefaults(data map[string]any, now time.Time) {
	for _, f := range d.Fields {
		if _, present := data[f.Name]; present {
			continue
		}
		if f.DefaultNow {
			data[f.Name] = now.UTC().Format(time.RFC3339Nano)
			continue
		}
		if f.Default == nil {
			continue
		}
		switch def := f.Default.(type) {
		case []string:
			items := make([]any, len(def))
			for i, s := range def {
				items[i] = s
			}
			data[f.Name] = items
		default:
			data[f.Name] = def
		}
	}
}

// Coerce converts JSON-level values into their storage representation:
// time.Time for dates, float64 for numbers, []string for string arrays.
// Values of the wrong JSON type are left for the validator to report.
func (d *ResourceDefinition) Coerce(data map[string]any) (map[string]any, []apperror.FieldViolation) {
	out := make(map[string]any, len(data))
	var violations []apperror.FieldViolation
	for name, v := range data {
		f, ok := d.Field(name)
		if !ok {
			continue
		}
		cv, err := coerceValue(f, v)
		if err != nil {
			violations = append(violations, apperror.FieldViolation{
				Field:   name,
				Message: fmt.Sprintf("%s must be a valid date", f.DisplayName()),
			})
			continue
		}
		out[name] = cv
	}
	return out, violations
}

// FromStorage decodes a stored document leniently. Unknown fields and
// values that cannot be converted are dropped.
func (d *ResourceDefinition) FromStorage(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for name, v := range raw {
		f, ok := d.Field(name)
		if !ok || v == nil {
			continue
		}
		cv, err := coerceValue(f, v)
		if err != nil {
			continue
		}
		out[name] = cv
	}
	return out
}

func coerceValue(f FieldSpec, v any) (any, error) {
	switch f.Type {
	case TypeDate:
		switch val := v.(type) {
		case time.Time:
			return val.UTC(), nil
		case string:
			return ParseDate(val)
		}
	case TypeNumber:
		if n, ok := ToFloat(v); ok {
			return n, nil
		}
	case TypeStringArray:
		switch val := v.(type) {
		case []string:
			return val, nil
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return v, nil
				}
				items = append(items, s)
			}
			return items, nil
		}
	case TypeObject:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, item := range m {
				if s, ok := item.(string); ok {
					item = strings.TrimSpace(s)
				}
				out[k] = item
			}
			return out, nil
		}
	}
	return v, nil
}

// ToFloat widens any numeric representation a driver may hand back.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func applyCase(s string, c Case) string {
	switch c {
	case CaseLower:
		return strings.ToLower(s)
	case CaseUpper:
		return strings.ToUpper(s)
	}
	return s
}
