package docsql

import (
	"fmt"
	"strings"
	"time"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/schema"
)

const columns = "id, data, is_active, created_at, updated_at"

// Query is a statement with its bind arguments.
type Query struct {
	SQL  string
	Args []any
}

type builder struct {
	d    Dialect
	def  *schema.ResourceDefinition
	args []any
}

func newBuilder(d Dialect, def *schema.ResourceDefinition) *builder {
	return &builder{d: d, def: def}
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.d.Placeholder(len(b.args))
}

// column resolves a field to its SQL expression and type.
func (b *builder) column(field string) (string, schema.FieldType, bool) {
	switch field {
	case schema.FieldID:
		return "id", schema.TypeString, true
	case schema.FieldIsActive:
		return "is_active", schema.TypeBoolean, true
	case schema.FieldCreatedAt:
		return "created_at", schema.TypeDate, true
	case schema.FieldUpdatedAt:
		return "updated_at", schema.TypeDate, true
	}
	f, ok := b.def.Field(field)
	if !ok {
		return "", "", false
	}
	return b.d.Field(f.Name, f.Type), f.Type, true
}

// value binds v for comparison with field.
func (b *builder) value(field string, t schema.FieldType, v any) string {
	if schema.IsSystemField(field) {
		if at, ok := v.(time.Time); ok {
			return b.bind(b.d.Timestamp(at))
		}
		return b.bind(v)
	}
	return b.d.Param(b.bind(b.d.Arg(v, t)), t)
}

func (b *builder) where(req *filter.Request) string {
	conds := []string{"resource = " + b.bind(b.def.Name)}

	for _, f := range req.Exact {
		expr, t, ok := b.column(f.Field)
		if !ok {
			continue
		}
		conds = append(conds, fmt.Sprintf("%s = %s", expr, b.value(f.Field, t, f.Value)))
	}

	for _, g := range req.Search {
		var ors []string
		for _, name := range g.Fields {
			f, ok := b.def.Field(name)
			if !ok {
				continue
			}
			ph := b.bind("%" + EscapeLike(g.Text) + "%")
			if f.Type == schema.TypeStringArray {
				ors = append(ors, b.d.ArrayContains(f.Name, ph))
			} else {
				ors = append(ors, b.d.Contains(b.d.Field(f.Name, f.Type), ph))
			}
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	for _, r := range req.Ranges {
		expr, t, ok := b.column(r.Field)
		if !ok {
			continue
		}
		if r.From != nil {
			conds = append(conds, fmt.Sprintf("%s >= %s", expr, b.value(r.Field, t, *r.From)))
		}
		if r.To != nil {
			conds = append(conds, fmt.Sprintf("%s <= %s", expr, b.value(r.Field, t, *r.To)))
		}
	}

	return strings.Join(conds, " AND ")
}

func (b *builder) orderBy(keys []schema.SortKey) string {
	var parts []string
	for _, k := range keys {
		expr, _, ok := b.column(k.Field)
		if !ok {
			continue
		}
		parts = append(parts, b.d.OrderBy(expr, k.Desc))
	}
	// creation order breaks ties, matching the in-memory store
	parts = append(parts, "created_at ASC", "id ASC")
	return strings.Join(parts, ", ")
}

// Select builds the listing query for req.
func Select(d Dialect, def *schema.ResourceDefinition, req *filter.Request) Query {
	b := newBuilder(d, def)
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s", columns, Table, b.where(req), b.orderBy(req.Sort))
	if req.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", req.Limit)
	}
	return Query{SQL: sql, Args: b.args}
}

// Exists builds a lookup for another record holding value in field.
func Exists(d Dialect, def *schema.ResourceDefinition, field string, value any, excludeID string) Query {
	b := newBuilder(d, def)
	conds := []string{"resource = " + b.bind(def.Name)}

	expr, t, _ := b.column(field)
	conds = append(conds, fmt.Sprintf("%s = %s", expr, b.value(field, t, value)))
	if excludeID != "" {
		conds = append(conds, "id <> "+b.bind(excludeID))
	}
	return Query{
		SQL:  fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", Table, strings.Join(conds, " AND ")),
		Args: b.args,
	}
}

// Increment builds the single-statement counter bump.
func Increment(d Dialect, def *schema.ResourceDefinition, id, field string, by int64, now time.Time) Query {
	b := newBuilder(d, def)
	set := d.Increment(field, b.bind(by))
	updated := b.bind(d.Timestamp(now))
	resource := b.bind(def.Name)
	idPh := b.bind(id)
	return Query{
		SQL: fmt.Sprintf("UPDATE %s SET data = %s, updated_at = %s WHERE resource = %s AND id = %s RETURNING %s",
			Table, set, updated, resource, idPh, columns),
		Args: b.args,
	}
}
