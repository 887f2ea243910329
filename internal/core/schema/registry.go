package schema

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/deptsite/deptcms/pkg/apperror"
)

// Names are embedded in storage paths and index names.
var (
	resourceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	fieldNamePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

// Registry holds the resource definitions loaded at startup. It is never
// mutated after NewRegistry returns.
type Registry struct {
	defs  map[string]*ResourceDefinition
	order []string
}

func NewRegistry(defs ...ResourceDefinition) (*Registry, error) {
	r := &Registry{defs: make(map[string]*ResourceDefinition, len(defs))}
	for _, d := range defs {
		def, err := Define(d)
		if err != nil {
			return nil, err
		}
		if _, exists := r.defs[def.Name]; exists {
			return nil, &apperror.SchemaError{Resource: def.Name, Reason: "resource defined twice"}
		}
		r.defs[def.Name] = def
		r.order = append(r.order, def.Name)
	}
	return r, nil
}

// Default returns a registry populated with the department resources.
func Default() (*Registry, error) {
	return NewRegistry(Builtin()...)
}

func (r *Registry) Get(name string) (*ResourceDefinition, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &apperror.UnknownResourceError{Name: name}
	}
	return def, nil
}

// Names returns resource names in definition order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) All() []*ResourceDefinition {
	out := make([]*ResourceDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// Define validates d and returns an indexed copy.
func Define(d ResourceDefinition) (*ResourceDefinition, error) {
	if d.Name == "" {
		return nil, &apperror.SchemaError{Reason: "resource name is required"}
	}
	if !resourceNamePattern.MatchString(d.Name) {
		return nil, &apperror.SchemaError{Resource: d.Name, Reason: "resource name must be lowercase letters, digits and dashes"}
	}

	def := d.clone()
	def.index = make(map[string]int, len(def.Fields))

	fail := func(field, format string, args ...any) error {
		return &apperror.SchemaError{Resource: def.Name, Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	groups := make(map[string]string)
	for i, f := range def.Fields {
		if f.Name == "" {
			return nil, fail("", "field %d has no name", i)
		}
		if !fieldNamePattern.MatchString(f.Name) {
			return nil, fail(f.Name, "field name must be an identifier")
		}
		if IsSystemField(f.Name) {
			return nil, fail(f.Name, "reserved field name")
		}
		if _, dup := def.index[f.Name]; dup {
			return nil, fail(f.Name, "field declared twice")
		}
		if !f.Type.valid() {
			return nil, fail(f.Name, "unrecognized type %q", f.Type)
		}
		if f.Enum != nil {
			if len(f.Enum) == 0 {
				return nil, fail(f.Name, "enum must not be empty")
			}
			if f.Type != TypeString {
				return nil, fail(f.Name, "enum is only supported on string fields")
			}
			if s, ok := f.Default.(string); ok && !f.InEnum(s) {
				return nil, fail(f.Name, "default %q is not in enum", s)
			}
		}
		if f.Unique != "" {
			if other, taken := groups[f.Unique]; taken {
				return nil, fail(f.Name, "uniqueness group %q already claimed by %s", f.Unique, other)
			}
			if f.Type != TypeString && f.Type != TypeNumber {
				return nil, fail(f.Name, "unique fields must be scalar")
			}
			groups[f.Unique] = f.Name
		}
		if f.Counter {
			if f.Type != TypeNumber {
				return nil, fail(f.Name, "counters must be numbers")
			}
			if f.Default == nil {
				def.Fields[i].Default = float64(0)
			}
		}
		def.index[f.Name] = i
	}

	for _, k := range def.DefaultSort {
		if _, ok := def.FieldType(k.Field); !ok {
			return nil, fail(k.Field, "default sort on undeclared field")
		}
	}
	for key, fields := range def.SearchKeys {
		if len(fields) == 0 {
			return nil, fail(key, "search key has no fields")
		}
		for _, name := range fields {
			t, ok := def.FieldType(name)
			if !ok {
				return nil, fail(name, "search on undeclared field")
			}
			if t != TypeString && t != TypeStringArray {
				return nil, fail(name, "search requires a text field")
			}
		}
	}
	for name := range def.DefaultFilters {
		if _, ok := def.FieldType(name); !ok {
			return nil, fail(name, "default filter on undeclared field")
		}
	}

	if def.UpcomingField != "" {
		f, ok := def.Field(def.UpcomingField)
		if !ok || f.Type != TypeDate {
			return nil, fail(def.UpcomingField, "upcoming field must be a declared date")
		}
		if def.StatusField != "" {
			status, ok := def.Field(def.StatusField)
			if !ok || !status.InEnum(StatusUpcoming) {
				return nil, fail(def.StatusField, "status enum must contain %q", StatusUpcoming)
			}
		}
	}
	if def.Upcoming != nil && def.UpcomingField == "" {
		return nil, fail("", "upcoming view requires an upcoming field")
	}

	for _, v := range []*View{def.Featured, def.Upcoming} {
		if v == nil {
			continue
		}
		for _, k := range v.Sort {
			if _, ok := def.FieldType(k.Field); !ok {
				return nil, fail(k.Field, "view sort on undeclared field")
			}
		}
		for name := range v.Exact {
			if _, ok := def.FieldType(name); !ok {
				return nil, fail(name, "view filter on undeclared field")
			}
		}
	}

	if def.CategoryField != "" {
		if f, ok := def.Field(def.CategoryField); !ok || f.Type != TypeString {
			return nil, fail(def.CategoryField, "category field must be a declared string")
		}
	}
	for _, name := range def.GroupBy {
		if f, ok := def.Field(name); !ok || f.Type != TypeString {
			return nil, fail(name, "group field must be a declared string")
		}
	}
	for _, name := range []string{def.ViewCounter, def.LikeCounter} {
		if name != "" && !def.IsCounter(name) {
			return nil, fail(name, "not declared as a counter")
		}
	}

	return &def, nil
}

// StatusUpcoming is the status value paired with the upcoming date filter.
const StatusUpcoming = "Upcoming"

// clone copies every slice, map and pointer so the result shares nothing
// with d.
func (d ResourceDefinition) clone() ResourceDefinition {
	c := d
	c.Fields = slices.Clone(d.Fields)
	for i := range c.Fields {
		f := &c.Fields[i]
		f.Enum = slices.Clone(f.Enum)
		f.Min = clonePtr(f.Min)
		f.Max = clonePtr(f.Max)
	}
	c.DefaultFilters = maps.Clone(d.DefaultFilters)
	c.DefaultSort = slices.Clone(d.DefaultSort)
	if d.SearchKeys != nil {
		c.SearchKeys = make(map[string][]string, len(d.SearchKeys))
		for k, fields := range d.SearchKeys {
			c.SearchKeys[k] = slices.Clone(fields)
		}
	}
	c.Featured = d.Featured.clone()
	c.Upcoming = d.Upcoming.clone()
	c.CategorySort = slices.Clone(d.CategorySort)
	c.GroupBy = slices.Clone(d.GroupBy)
	c.GroupSort = slices.Clone(d.GroupSort)
	c.index = nil
	return c
}

func (v *View) clone() *View {
	if v == nil {
		return nil
	}
	return &View{Exact: maps.Clone(v.Exact), Sort: slices.Clone(v.Sort), Limit: v.Limit}
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
