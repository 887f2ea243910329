package record

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/deptsite/deptcms/internal/core/filter"
	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/internal/core/validation"
	"github.com/deptsite/deptcms/pkg/apperror"
)

type Service struct {
	registry  *schema.Registry
	store     Store
	validator *validation.Validator
	compiler  *filter.Compiler
	now       func() time.Time
}

func NewService(registry *schema.Registry, store Store, validator *validation.Validator, compiler *filter.Compiler) *Service {
	return &Service{
		registry:  registry,
		store:     store,
		validator: validator,
		compiler:  compiler,
		now:       time.Now,
	}
}

// WithClock sets the time source used for timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Registry() *schema.Registry { return s.registry }

// List compiles params and returns the matching records. Zero matches is
// an empty slice, never an error.
func (s *Service) List(ctx context.Context, resource string, params map[string]string) ([]*Record, error) {
	req, err := s.compiler.Compile(resource, params)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, req)
}

func (s *Service) Find(ctx context.Context, req *filter.Request) ([]*Record, error) {
	def, err := s.registry.Get(req.Resource)
	if err != nil {
		return nil, err
	}
	records, err := s.store.Find(ctx, def, req)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*Record{}
	}
	return records, nil
}

func (s *Service) Featured(ctx context.Context, resource string) ([]*Record, error) {
	req, err := s.compiler.Featured(resource)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, req)
}

func (s *Service) Upcoming(ctx context.Context, resource string) ([]*Record, error) {
	req, err := s.compiler.Upcoming(resource)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, req)
}

func (s *Service) ByCategory(ctx context.Context, resource, category string) ([]*Record, error) {
	req, err := s.compiler.Category(resource, category)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, req)
}

// Grouped buckets the active listing by the resource's group fields, in
// declaration order. Records missing a group value land under "".
func (s *Service) Grouped(ctx context.Context, resource string) (Groups, error) {
	req, err := s.compiler.Grouped(resource)
	if err != nil {
		return nil, err
	}
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	records, err := s.Find(ctx, req)
	if err != nil {
		return nil, err
	}
	return group(records, def.GroupBy), nil
}

func group(records []*Record, fields []string) Groups {
	out := Groups{}
	if len(fields) == 0 {
		return out
	}

	buckets := make(map[string][]*Record)
	var order []string
	for _, rec := range records {
		key := ""
		if v, ok := rec.Fields[fields[0]]; ok {
			key = fmt.Sprint(v)
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], rec)
	}

	for _, key := range order {
		if len(fields) == 1 {
			out[key] = buckets[key]
			continue
		}
		out[key] = group(buckets[key], fields[1:])
	}
	return out
}

// Get returns the record regardless of its active flag.
func (s *Service) Get(ctx context.Context, resource, id string) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, def, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(def, id)
	}
	return rec, nil
}

// Create validates input in full and persists a new active record. Nothing
// is written unless validation and uniqueness checks pass.
func (s *Service) Create(ctx context.Context, resource string, input map[string]any) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	data, _, violations := def.Sanitize(input, false)
	def.ApplyDefaults(data, now)

	if err := s.validator.Validate(def, data); err != nil {
		ve := validation.GetValidationErrors(err)
		if ve == nil {
			return nil, err
		}
		violations = append(violations, ve.Violations...)
	}

	fields, coerceViolations := def.Coerce(data)
	violations = append(violations, coerceViolations...)
	if len(violations) > 0 {
		return nil, newValidationError(def, violations)
	}

	if err := s.checkUnique(ctx, def, fields, nil); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        uuid.New().String(),
		Resource:  def.Name,
		Fields:    fields,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, def, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies a partial payload. Only supplied fields are validated.
// isActive may be set to false; reactivating an inactive record is
// rejected.
func (s *Service) Update(ctx context.Context, resource, id string, input map[string]any) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, def, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, notFound(def, id)
	}

	active, violations := activeChange(existing, input)

	set, unset, sanitizeViolations := def.Sanitize(input, true)
	violations = append(violations, sanitizeViolations...)

	if err := s.validator.ValidatePartial(def, set); err != nil {
		ve := validation.GetValidationErrors(err)
		if ve == nil {
			return nil, err
		}
		violations = append(violations, ve.Violations...)
	}

	changes, coerceViolations := def.Coerce(set)
	violations = append(violations, coerceViolations...)
	if len(violations) > 0 {
		return nil, newValidationError(def, violations)
	}

	if err := s.checkUnique(ctx, def, changes, existing); err != nil {
		return nil, err
	}

	rec := existing.Clone()
	for k, v := range changes {
		rec.Fields[k] = v
	}
	for _, k := range unset {
		delete(rec.Fields, k)
	}
	if active != nil {
		rec.IsActive = *active
	}
	rec.UpdatedAt = s.now().UTC()

	found, err := s.store.Replace(ctx, def, rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound(def, id)
	}
	return rec, nil
}

func activeChange(existing *Record, input map[string]any) (*bool, []apperror.FieldViolation) {
	raw, ok := input[schema.FieldIsActive]
	if !ok || raw == nil {
		return nil, nil
	}
	v, ok := raw.(bool)
	if !ok {
		return nil, []apperror.FieldViolation{{Field: schema.FieldIsActive, Message: "isActive must be true or false"}}
	}
	if v && !existing.IsActive {
		return nil, []apperror.FieldViolation{{Field: schema.FieldIsActive, Message: "Deleted records cannot be reactivated"}}
	}
	return &v, nil
}

// SoftDelete marks the record inactive. It stays retrievable by id.
func (s *Service) SoftDelete(ctx context.Context, resource, id string) (*Record, error) {
	return s.Update(ctx, resource, id, map[string]any{schema.FieldIsActive: false})
}

// HardDelete physically removes the record where the resource allows it.
func (s *Service) HardDelete(ctx context.Context, resource, id string) error {
	def, err := s.registry.Get(resource)
	if err != nil {
		return err
	}
	if !def.HardDelete {
		return &apperror.InvalidFieldError{Resource: def.Name, Field: schema.FieldID, Reason: "permanent deletion is not enabled"}
	}
	if err := checkID(id); err != nil {
		return err
	}

	found, err := s.store.Delete(ctx, def, id)
	if err != nil {
		return err
	}
	if !found {
		return notFound(def, id)
	}
	return nil
}

// Increment atomically adds by to a counter field.
func (s *Service) Increment(ctx context.Context, resource, id, field string, by int64) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	if !def.IsCounter(field) {
		return nil, &apperror.InvalidFieldError{Resource: def.Name, Field: field, Reason: "not a counter"}
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	rec, err := s.store.Increment(ctx, def, id, field, by)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(def, id)
	}
	return rec, nil
}

// Like bumps the resource's like counter by one.
func (s *Service) Like(ctx context.Context, resource, id string) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	return s.Increment(ctx, resource, id, def.LikeCounter, 1)
}

// View bumps the resource's view counter by one. Calls are not
// deduplicated.
func (s *Service) View(ctx context.Context, resource, id string) (*Record, error) {
	def, err := s.registry.Get(resource)
	if err != nil {
		return nil, err
	}
	return s.Increment(ctx, resource, id, def.ViewCounter, 1)
}

// checkUnique rejects values of unique fields already held by another
// record. Unchanged values on update are not rechecked.
func (s *Service) checkUnique(ctx context.Context, def *schema.ResourceDefinition, fields map[string]any, existing *Record) error {
	for _, f := range def.UniqueFields() {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		excludeID := ""
		if existing != nil {
			if cur, ok := existing.Fields[f.Name]; ok && filter.Compare(cur, v) == 0 {
				continue
			}
			excludeID = existing.ID
		}

		taken, err := s.store.ExistsWithValue(ctx, def, f.Name, v, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return &apperror.DuplicateKeyError{Field: f.Name, Label: f.DisplayName()}
		}
	}
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.ErrInvalidID
	}
	return nil
}

func notFound(def *schema.ResourceDefinition, id string) error {
	return &apperror.NotFoundError{Resource: def.Name, Label: def.DisplayName(), ID: id}
}

// newValidationError orders violations by field declaration and drops
// repeats for the same field.
func newValidationError(def *schema.ResourceDefinition, violations []apperror.FieldViolation) error {
	rank := func(field string) int {
		for i, f := range def.Fields {
			if f.Name == field {
				return i
			}
		}
		return -1
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return rank(violations[i].Field) < rank(violations[j].Field)
	})

	out := violations[:0]
	seen := make(map[string]bool)
	for _, v := range violations {
		if seen[v.Field] {
			continue
		}
		seen[v.Field] = true
		out = append(out, v)
	}
	return apperror.NewValidation(out...)
}
