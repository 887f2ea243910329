// Package memory is an in-process record store for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/record"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

var _ record.Store = (*Store)(nil)

type Store struct {
	mu        sync.RWMutex
	resources map[string]*table
	closed    bool
}

type table struct {
	records map[string]*record.Record
	// insertion order, so equal sort keys come back in creation order
	order []string
}

func New() *Store {
	return &Store{resources: make(map[string]*table)}
}

func (s *Store) table(name string) *table {
	t, ok := s.resources[name]
	if !ok {
		t = &table{records: make(map[string]*record.Record)}
		s.resources[name] = t
	}
	return t
}

// peek looks up a table without creating it, for use under the read lock.
func (s *Store) peek(name string) *table {
	if t, ok := s.resources[name]; ok {
		return t
	}
	return &table{records: map[string]*record.Record{}}
}

func (s *Store) Insert(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}

	t := s.table(def.Name)
	if err := t.checkUnique(def, rec); err != nil {
		return err
	}
	t.records[rec.ID] = rec.Clone()
	t.order = append(t.order, rec.ID)
	return nil
}

func (s *Store) Get(ctx context.Context, def *schema.ResourceDefinition, id string) (*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.usable(); err != nil {
		return nil, err
	}

	rec, ok := s.peek(def.Name).records[id]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

func (s *Store) Find(ctx context.Context, def *schema.ResourceDefinition, req *filter.Request) ([]*record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.usable(); err != nil {
		return nil, err
	}

	t := s.peek(def.Name)
	all := make([]*record.Record, 0, len(t.order))
	for _, id := range t.order {
		if rec, ok := t.records[id]; ok {
			all = append(all, rec)
		}
	}

	matched := filter.Apply(req, all)
	out := make([]*record.Record, len(matched))
	for i, rec := range matched {
		out[i] = rec.Clone()
	}
	return out, nil
}

func (s *Store) Replace(ctx context.Context, def *schema.ResourceDefinition, rec *record.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return false, err
	}

	t := s.table(def.Name)
	if _, ok := t.records[rec.ID]; !ok {
		return false, nil
	}
	if err := t.checkUnique(def, rec); err != nil {
		return false, err
	}
	t.records[rec.ID] = rec.Clone()
	return true, nil
}

func (s *Store) Delete(ctx context.Context, def *schema.ResourceDefinition, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return false, err
	}

	t := s.table(def.Name)
	if _, ok := t.records[id]; !ok {
		return false, nil
	}
	delete(t.records, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *Store) Increment(ctx context.Context, def *schema.ResourceDefinition, id, field string, by int64) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return nil, err
	}

	rec, ok := s.table(def.Name).records[id]
	if !ok {
		return nil, nil
	}
	cur, _ := schema.ToFloat(rec.Fields[field])
	rec.Fields[field] = cur + float64(by)
	rec.UpdatedAt = time.Now().UTC()
	return rec.Clone(), nil
}

func (s *Store) ExistsWithValue(ctx context.Context, def *schema.ResourceDefinition, field string, value any, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.usable(); err != nil {
		return false, err
	}

	for id, rec := range s.peek(def.Name).records {
		if id == excludeID {
			continue
		}
		if v, ok := rec.Fields[field]; ok && filter.Compare(v, value) == 0 {
			return true, nil
		}
	}
	return false, nil
}

// EnsureIndexes is a no-op; uniqueness is checked on every write.
func (s *Store) EnsureIndexes(ctx context.Context, defs []*schema.ResourceDefinition) error {
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usable()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) usable() error {
	if s.closed {
		return apperror.ErrStorageUnavailable
	}
	return nil
}

// checkUnique plays the part of a storage unique index.
func (t *table) checkUnique(def *schema.ResourceDefinition, rec *record.Record) error {
	for _, f := range def.UniqueFields() {
		v, ok := rec.Fields[f.Name]
		if !ok {
			continue
		}
		for id, other := range t.records {
			if id == rec.ID {
				continue
			}
			if ov, ok := other.Fields[f.Name]; ok && filter.Compare(ov, v) == 0 {
				return &apperror.DuplicateKeyError{Field: f.Name, Label: f.DisplayName()}
			}
		}
	}
	return nil
}
