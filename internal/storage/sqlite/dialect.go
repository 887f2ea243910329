package sqlite

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/storage/docsql"
)

// lowerFunc folds case for search. SQLite's lower() and LIKE only fold ASCII.
const lowerFunc = "unicode_lower"

func init() {
	if err := msqlite.RegisterDeterministicScalarFunction(lowerFunc, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register %s: %v", lowerFunc, err))
	}
}

func unicodeLower(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// Dialect reads fields with the JSON1 functions. Dates are compared as
// Julian day numbers.
type Dialect struct{}

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) Field(name string, t schema.FieldType) string {
	expr := fmt.Sprintf("json_extract(data, '$.%s')", name)
	if t == schema.TypeDate {
		return "julianday(" + expr + ")"
	}
	return expr
}

func (Dialect) Param(ph string, t schema.FieldType) string {
	if t == schema.TypeDate {
		return "julianday(" + ph + ")"
	}
	return ph
}

func (Dialect) Arg(v any, t schema.FieldType) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case bool:
		// json_extract yields 0 or 1 for JSON booleans
		if val {
			return 1
		}
		return 0
	}
	return v
}

func (Dialect) Timestamp(t time.Time) any {
	return t.UTC().Format(docsql.TimestampLayout)
}

func (Dialect) Contains(expr, ph string) string {
	return fmt.Sprintf(`%s(%s) LIKE %s(%s) ESCAPE '\'`, lowerFunc, expr, lowerFunc, ph)
}

func (Dialect) ArrayContains(name, ph string) string {
	return fmt.Sprintf(`EXISTS (SELECT 1 FROM json_each(data, '$.%s') WHERE %s(json_each.value) LIKE %s(%s) ESCAPE '\')`, name, lowerFunc, lowerFunc, ph)
}

// OrderBy relies on SQLite sorting NULL lowest.
func (Dialect) OrderBy(expr string, desc bool) string {
	if desc {
		return expr + " DESC"
	}
	return expr + " ASC"
}

func (Dialect) Increment(name, ph string) string {
	return fmt.Sprintf("json_set(data, '$.%s', COALESCE(json_extract(data, '$.%s'), 0) + %s)", name, name, ph)
}

func (Dialect) UniqueIndex(index, resource, field string) string {
	return fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON records (json_extract(data, '$.%s')) WHERE resource = '%s'", index, field, resource)
}

func (Dialect) UniqueViolation(err error) (string, bool) {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}
	if se.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE && se.Code() != sqlite3.SQLITE_CONSTRAINT {
		return "", false
	}
	msg := se.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return "", false
	}
	return indexFromMessage(msg), true
}

// indexFromMessage extracts the name from "UNIQUE constraint failed: index 'name'".
func indexFromMessage(msg string) string {
	const marker = "index '"
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.Index(rest, "'"); j >= 0 {
		return rest[:j]
	}
	return ""
}
