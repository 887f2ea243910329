package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/deptsite/deptcms/internal/core/schema"
	"github.com/deptsite/deptcms/pkg/apperror"
)

type Validator struct {
	mu      sync.Mutex
	schemas map[schemaKey]*gojsonschema.Schema
}

type schemaKey struct {
	resource string
	partial  bool
}

func NewValidator() *Validator {
	return &Validator{schemas: make(map[schemaKey]*gojsonschema.Schema)}
}

// Validate checks data against the JSON Schema derived from def. It
// returns *apperror.ValidationError listing every violation.
func (v *Validator) Validate(def *schema.ResourceDefinition, data map[string]interface{}) error {
	return v.validate(def, data, false)
}

// ValidatePartial validates an update payload. Only supplied fields are
// checked, so the required constraint is dropped.
func (v *Validator) ValidatePartial(def *schema.ResourceDefinition, data map[string]interface{}) error {
	return v.validate(def, data, true)
}

func (v *Validator) validate(def *schema.ResourceDefinition, data map[string]interface{}, partial bool) error {
	compiled, err := v.compiled(def, partial)
	if err != nil {
		return err
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return err
	}

	result, err := compiled.Validate(gojsonschema.NewBytesLoader(dataJSON))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var violations []apperror.FieldViolation
	seen := make(map[string]bool)
	for _, desc := range result.Errors() {
		fv := describe(def, desc)
		key := fv.Field + "\x00" + fv.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		violations = append(violations, fv)
	}
	return apperror.NewValidation(violations...)
}

func (v *Validator) compiled(def *schema.ResourceDefinition, partial bool) (*gojsonschema.Schema, error) {
	key := schemaKey{resource: def.Name, partial: partial}

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[key]; ok {
		return s, nil
	}

	doc := def.JSONSchema()
	if partial {
		// For partial updates, remove required constraint
		delete(doc, "required")
	}

	schemaJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, &apperror.SchemaError{Resource: def.Name, Reason: err.Error()}
	}
	v.schemas[key] = s
	return s, nil
}

func describe(def *schema.ResourceDefinition, desc gojsonschema.ResultError) apperror.FieldViolation {
	field := desc.Field()
	if desc.Type() == "required" {
		if prop, ok := desc.Details()["property"].(string); ok {
			field = prop
		}
	}
	// array items are reported as "tags.0"
	if i := strings.Index(field, "."); i >= 0 {
		field = field[:i]
	}

	spec, ok := def.Field(field)
	if !ok {
		return apperror.FieldViolation{Field: field, Message: desc.Description()}
	}
	label := spec.DisplayName()

	var msg string
	switch desc.Type() {
	case "required":
		msg = fmt.Sprintf("%s is required", label)
	case "enum":
		msg = fmt.Sprintf("%s must be one of: %s", label, strings.Join(spec.Enum, ", "))
	case "invalid_type":
		msg = fmt.Sprintf("%s must be %s", label, typeName(spec.Type))
	case "number_gte":
		msg = fmt.Sprintf("%s must be at least %v", label, *spec.Min)
	case "number_lte":
		msg = fmt.Sprintf("%s must be at most %v", label, *spec.Max)
	default:
		msg = fmt.Sprintf("%s: %s", label, desc.Description())
	}
	return apperror.FieldViolation{Field: field, Message: msg}
}

func typeName(t schema.FieldType) string {
	switch t {
	case schema.TypeNumber:
		return "a number"
	case schema.TypeBoolean:
		return "true or false"
	case schema.TypeDate:
		return "a date"
	case schema.TypeStringArray:
		return "a list of strings"
	case schema.TypeObject:
		return "an object"
	}
	return "a string"
}

func IsValidationError(err error) bool {
	var ve *apperror.ValidationError
	return errors.As(err, &ve)
}

func GetValidationErrors(err error) *apperror.ValidationError {
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
