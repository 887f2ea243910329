package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/deptsite/deptcms/internal/core/schema"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Dialect reads fields out of the JSONB data column.
type Dialect struct{}

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) Field(name string, t schema.FieldType) string {
	switch t {
	case schema.TypeNumber:
		return fmt.Sprintf("(data->>'%s')::numeric", name)
	case schema.TypeBoolean:
		return fmt.Sprintf("(data->>'%s')::boolean", name)
	case schema.TypeDate:
		return fmt.Sprintf("(data->>'%s')::timestamptz", name)
	case schema.TypeStringArray, schema.TypeObject:
		return fmt.Sprintf("data->'%s'", name)
	}
	return fmt.Sprintf("data->>'%s'", name)
}

func (Dialect) Param(ph string, t schema.FieldType) string { return ph }

func (Dialect) Arg(v any, t schema.FieldType) any {
	if at, ok := v.(time.Time); ok {
		return at.UTC()
	}
	return v
}

func (Dialect) Timestamp(t time.Time) any { return t.UTC() }

func (Dialect) Contains(expr, ph string) string {
	return fmt.Sprintf("%s ILIKE %s", expr, ph)
}

func (Dialect) ArrayContains(name, ph string) string {
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements_text(CASE WHEN jsonb_typeof(data->'%s') = 'array' THEN data->'%s' ELSE '[]'::jsonb END) AS elem(value) WHERE elem.value ILIKE %s)",
		name, name, ph)
}

// OrderBy places missing values first when ascending, as document stores do.
func (Dialect) OrderBy(expr string, desc bool) string {
	if desc {
		return expr + " DESC NULLS LAST"
	}
	return expr + " ASC NULLS FIRST"
}

func (Dialect) Increment(name, ph string) string {
	return fmt.Sprintf("jsonb_set(data, '{%s}', to_jsonb(COALESCE((data->>'%s')::numeric, 0) + %s))", name, name, ph)
}

func (Dialect) UniqueIndex(index, resource, field string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON records ((data->>'%s')) WHERE resource = '%s'", index, field, resource)
}

func (Dialect) UniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
