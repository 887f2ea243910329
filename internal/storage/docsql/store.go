package docsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

var _ record.Store = (*Store)(nil)

type Store struct {
	DB      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewStore(db *sql.DB, dialect Dialect) *Store {
	return &Store{DB: db, dialect: dialect, now: time.Now}
}

func (s *Store) Insert(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) error {
	data, err := json.Marshal(rec.Document())
	if err != nil {
		return err
	}

	d := s.dialect
	query := fmt.Sprintf(`
		INSERT INTO %s (id, resource, data, is_active, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s)`,
		Table, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3),
		d.Placeholder(4), d.Placeholder(5), d.Placeholder(6))

	_, err = s.DB.ExecContext(ctx, query,
		rec.ID, def.Name, string(data), rec.IsActive,
		d.Timestamp(rec.CreatedAt), d.Timestamp(rec.UpdatedAt),
	)
	return s.mapError(def, "insert", err)
}

func (s *Store) Get(ctx context.Context, def *schema.ResourceDefinition, id string) (*record.Record, error) {
	d := s.dialect
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE resource = %s AND id = %s`,
		columns, Table, d.Placeholder(1), d.Placeholder(2))

	rec, err := scanRecord(def, s.DB.QueryRowContext(ctx, query, def.Name, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapError(def, "get", err)
	}
	return rec, nil
}

func (s *Store) Find(ctx context.Context, def *schema.ResourceDefinition, req *filter.Request) ([]*record.Record, error) {
	q := Select(s.dialect, def, req)
	rows, err := s.DB.QueryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, s.mapError(def, "find", err)
	}
	defer rows.Close()

	var records []*record.Record
	for rows.Next() {
		rec, err := scanRecord(def, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) Replace(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) (bool, error) {
	data, err := json.Marshal(rec.Document())
	if err != nil {
		return false, err
	}

	d := s.dialect
	query := fmt.Sprintf(`
		UPDATE %s
		SET data = %s, is_active = %s, updated_at = %s
		WHERE resource = %s AND id = %s`,
		Table, d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4), d.Placeholder(5))

	res, err := s.DB.ExecContext(ctx, query, string(data), rec.IsActive, d.Timestamp(rec.UpdatedAt), def.Name, rec.ID)
	if err != nil {
		return false, s.mapError(def, "replace", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Delete(ctx context.Context, def *schema.ResourceDefinition, id string) (bool, error) {
	d := s.dialect
	query := fmt.Sprintf(`DELETE FROM %s WHERE resource = %s AND id = %s`, Table, d.Placeholder(1), d.Placeholder(2))

	res, err := s.DB.ExecContext(ctx, query, def.Name, id)
	if err != nil {
		return false, s.mapError(def, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Increment(ctx context.Context, def *schema.ResourceDefinition, id, field string, by int64) (*record.Record, error) {
	q := Increment(s.dialect, def, id, field, by, s.now().UTC())

	rec, err := scanRecord(def, s.DB.QueryRowContext(ctx, q.SQL, q.Args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, s.mapError(def, "increment", err)
	}
	return rec, nil
}

func (s *Store) ExistsWithValue(ctx context.Context, def *schema.ResourceDefinition, field string, value any, excludeID string) (bool, error) {
	q := Exists(s.dialect, def, field, value, excludeID)

	var one int
	err := s.DB.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, s.mapError(def, "exists", err)
	}
	return true, nil
}

// EnsureIndexes creates partial unique indexes for every unique field.
func (s *Store) EnsureIndexes(ctx context.Context, defs []*schema.ResourceDefinition) error {
	for _, def := range defs {
		for _, f := range def.UniqueFields() {
			stmt := s.dialect.UniqueIndex(IndexName(def.Name, f.Name), def.Name, f.Name)
			if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create unique index on %s.%s: %w", def.Name, f.Name, err)
			}
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) mapError(def *schema.ResourceDefinition, op string, err error) error {
	if err == nil {
		return nil
	}
	if index, ok := s.dialect.UniqueViolation(err); ok {
		if f, found := uniqueFieldForIndex(def, index); found {
			return &apperror.DuplicateKeyError{Field: f.Name, Label: f.DisplayName()}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %s %s: %v", apperror.ErrStorageUnavailable, op, def.Name, err)
	}
	return fmt.Errorf("%s %s: %w", op, def.Name, err)
}

// uniqueFieldForIndex maps a failed index back to its field. An unnamed
// index resolves only when the resource has a single unique field.
func uniqueFieldForIndex(def *schema.ResourceDefinition, index string) (schema.FieldSpec, bool) {
	fields := def.UniqueFields()
	for _, f := range fields {
		if strings.EqualFold(index, IndexName(def.Name, f.Name)) {
			return f, true
		}
	}
	if index == "" && len(fields) == 1 {
		return fields[0], true
	}
	return schema.FieldSpec{}, false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(def *schema.ResourceDefinition, row scanner) (*record.Record, error) {
	var (
		id               string
		data             []byte
		active           any
		created, updated any
	)
	if err := row.Scan(&id, &data, &active, &created, &updated); err != nil {
		return nil, err
	}

	raw := make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", def.Name, id, err)
		}
	}

	rec := &record.Record{
		ID:       id,
		Resource: def.Name,
		Fields:   def.FromStorage(raw),
		IsActive: toBool(active),
	}
	var err error
	if rec.CreatedAt, err = toTime(created); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = toTime(updated); err != nil {
		return nil, err
	}
	return rec, nil
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case []byte:
		return string(b) == "true" || string(b) == "1" || string(b) == "t"
	case string:
		return b == "true" || b == "1" || b == "t"
	}
	return false
}

// TimestampLayout is the fixed-width text form used by engines without a
// native timestamp type. It sorts lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestamp(t)
	case []byte:
		return parseTimestamp(string(t))
	}
	return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
