package filter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

// Reserved query keys.
const (
	KeySort     = "sort"
	KeyLimit    = "limit"
	KeyUpcoming = "upcoming"
	KeyActive   = schema.FieldIsActive

	suffixFrom = "From"
	suffixTo   = "To"

	activeAll = "all"
)

type Compiler struct {
	registry *schema.Registry
	now      func() time.Time
}

func NewCompiler(registry *schema.Registry) *Compiler {
	return &Compiler{registry: registry, now: time.Now}
}

// WithClock returns a compiler that reads the current time from now.
func (c *Compiler) WithClock(now func() time.Time) *Compiler {
	return &Compiler{registry: c.registry, now: now}
}

// Compile turns raw query parameters into a Request. Unrecognized keys and
// unparseable values are ignored.
func (c *Compiler) Compile(resource string, params map[string]string) (*Request, error) {
	def, err := c.registry.Get(resource)
	if err != nil {
		return nil, err
	}

	req := &Request{Resource: def.Name}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	explicit := make(map[string]bool)
	activeSet := false
	upcoming := false

	for _, key := range keys {
		raw := strings.TrimSpace(params[key])
		if raw == "" {
			continue
		}

		switch key {
		case KeyActive:
			activeSet = true
			switch strings.ToLower(raw) {
			case "true":
				req.SetExact(schema.FieldIsActive, true)
			case "false":
				req.SetExact(schema.FieldIsActive, false)
			case activeAll:
			default:
				activeSet = false
			}
			continue
		case KeySort:
			req.Sort = parseSort(def, raw)
			continue
		case KeyLimit:
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				req.Limit = n
			}
			continue
		case KeyUpcoming:
			upcoming = raw == "true" && def.SupportsUpcoming()
			continue
		}

		if fields, ok := def.SearchKeys[key]; ok {
			req.Search = append(req.Search, SearchGroup{Key: key, Fields: fields, Text: raw})
			continue
		}

		if f, ok := def.Field(key); ok {
			if v, ok := exactValue(f, raw); ok {
				req.SetExact(f.Name, v)
				explicit[f.Name] = true
			}
			continue
		}

		if rf, ok := rangeKey(def, key, raw); ok {
			req.addRange(rf)
		}
	}

	if !activeSet && def.ActiveOnlyByDefault {
		req.SetExact(schema.FieldIsActive, true)
	}
	applyDefaults(def, req, explicit)

	if upcoming {
		c.applyUpcoming(def, req)
	}

	if len(req.Sort) == 0 {
		req.Sort = append([]schema.SortKey(nil), def.DefaultSort...)
	}
	return req, nil
}

// Featured builds the featured listing for resource.
func (c *Compiler) Featured(resource string) (*Request, error) {
	def, err := c.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if def.Featured == nil {
		return nil, unsupported(def, "featured")
	}
	return c.view(def, def.Featured), nil
}

// Upcoming builds the upcoming listing: the upcoming date is at or after
// now and, where the resource has a status field, status is Upcoming.
func (c *Compiler) Upcoming(resource string) (*Request, error) {
	def, err := c.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if !def.SupportsUpcoming() {
		return nil, unsupported(def, "upcoming")
	}
	v := def.Upcoming
	if v == nil {
		v = &schema.View{}
	}
	req := c.view(def, v)
	c.applyUpcoming(def, req)
	return req, nil
}

// Category lists active records whose category field equals value.
func (c *Compiler) Category(resource, value string) (*Request, error) {
	def, err := c.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if def.CategoryField == "" {
		return nil, unsupported(def, "category")
	}
	req := c.view(def, &schema.View{Sort: def.CategorySort})
	req.SetExact(def.CategoryField, strings.TrimSpace(value))
	return req, nil
}

// Grouped lists the records a grouped view buckets, in group order.
func (c *Compiler) Grouped(resource string) (*Request, error) {
	def, err := c.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if len(def.GroupBy) == 0 {
		return nil, unsupported(def, "grouped")
	}
	return c.view(def, &schema.View{Sort: def.GroupSort}), nil
}

func (c *Compiler) view(def *schema.ResourceDefinition, v *schema.View) *Request {
	req := &Request{Resource: def.Name, Limit: v.Limit}
	if def.ActiveOnlyByDefault {
		req.SetExact(schema.FieldIsActive, true)
	}
	applyDefaults(def, req, nil)

	keys := make([]string, 0, len(v.Exact))
	for k := range v.Exact {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		req.SetExact(k, v.Exact[k])
	}

	req.Sort = append([]schema.SortKey(nil), v.Sort...)
	if len(req.Sort) == 0 {
		req.Sort = append(req.Sort, def.DefaultSort...)
	}
	return req
}

func (c *Compiler) applyUpcoming(def *schema.ResourceDefinition, req *Request) {
	now := c.now().UTC()
	req.addRange(RangeFilter{Field: def.UpcomingField, From: &now})
	if def.StatusField != "" {
		req.SetExact(def.StatusField, schema.StatusUpcoming)
	}
}

func applyDefaults(def *schema.ResourceDefinition, req *Request, explicit map[string]bool) {
	keys := make([]string, 0, len(def.DefaultFilters))
	for k := range def.DefaultFilters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if explicit[k] {
			continue
		}
		req.SetExact(k, def.DefaultFilters[k])
	}
}

// addRange merges bounds on the same field, keeping the tighter one.
func (r *Request) addRange(rf RangeFilter) {
	for i, existing := range r.Ranges {
		if existing.Field != rf.Field {
			continue
		}
		if rf.From != nil && (existing.From == nil || rf.From.After(*existing.From)) {
			r.Ranges[i].From = rf.From
		}
		if rf.To != nil && (existing.To == nil || rf.To.Before(*existing.To)) {
			r.Ranges[i].To = rf.To
		}
		return
	}
	r.Ranges = append(r.Ranges, rf)
}

func exactValue(f schema.FieldSpec, raw string) (any, bool) {
	switch f.Type {
	case schema.TypeString:
		switch f.Case {
		case schema.CaseLower:
			return strings.ToLower(raw), true
		case schema.CaseUpper:
			return strings.ToUpper(raw), true
		}
		return raw, true
	case schema.TypeBoolean:
		// only the literal "true" filters; anything else leaves the field open
		if raw == "true" {
			return true, true
		}
	case schema.TypeNumber:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n, true
		}
	}
	return nil, false
}

func rangeKey(def *schema.ResourceDefinition, key, raw string) (RangeFilter, bool) {
	var field string
	var from bool
	switch {
	case strings.HasSuffix(key, suffixFrom):
		field, from = strings.TrimSuffix(key, suffixFrom), true
	case strings.HasSuffix(key, suffixTo):
		field = strings.TrimSuffix(key, suffixTo)
	default:
		return RangeFilter{}, false
	}

	if t, ok := def.FieldType(field); !ok || t != schema.TypeDate {
		return RangeFilter{}, false
	}
	at, err := schema.ParseDate(raw)
	if err != nil {
		return RangeFilter{}, false
	}
	if from {
		return RangeFilter{Field: field, From: &at}, true
	}
	return RangeFilter{Field: field, To: &at}, true
}

func parseSort(def *schema.ResourceDefinition, raw string) []schema.SortKey {
	var keys []schema.SortKey
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimLeft(part, "+-")
		t, ok := def.FieldType(name)
		if !ok || seen[name] || t == schema.TypeObject || t == schema.TypeStringArray {
			continue
		}
		seen[name] = true
		keys = append(keys, schema.SortKey{Field: name, Desc: desc})
	}
	return keys
}

func unsupported(def *schema.ResourceDefinition, view string) error {
	return &apperror.InvalidFieldError{Resource: def.Name, Field: view, Reason: "view is not supported by this resource"}
}
