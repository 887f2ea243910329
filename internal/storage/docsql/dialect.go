// Package docsql stores records as JSON documents in a single SQL table.
// Dialects supply the JSON accessors; query construction is shared.
package docsql

import (
	"strings"
	"time"

	"github.com/deptsite/deptcms/internal/core/schema"
)

// Table is the single table every resource lives in.
const Table = "records"

// Dialect adapts the builder to one SQL engine. Field names passed to it
// have been validated by the schema registry and are safe to embed.
type Dialect interface {
	Placeholder(n int) string

	// Field is the expression reading a declared field of type t.
	Field(name string, t schema.FieldType) string
	// Param wraps a placeholder compared against Field of type t.
	Param(ph string, t schema.FieldType) string
	// Arg converts a filter value into a bind argument for type t.
	Arg(v any, t schema.FieldType) any

	// Timestamp converts a time for the created_at/updated_at columns.
	Timestamp(t time.Time) any

	Contains(expr, ph string) string
	ArrayContains(name, ph string) string
	OrderBy(expr string, desc bool) string

	// Increment is the new value of the data column after adding ph to name.
	Increment(name, ph string) string

	UniqueIndex(index, resource, field string) string
	// UniqueViolation reports whether err is a unique constraint failure
	// and, when the engine says, which index failed.
	UniqueViolation(err error) (index string, ok bool)
}

// IndexName is the name of the unique index backing field on resource.
func IndexName(resource, field string) string {
	return "records_" + strings.ReplaceAll(resource, "-", "_") + "_" + strings.ToLower(field) + "_key"
}

// EscapeLike escapes LIKE wildcards with a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
