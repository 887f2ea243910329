package validation

import (
	"strings"
	"testing"

	"github.com/deptsite/deptcms/internal/core/schema"
)

func definition(t *testing.T, name string) *schema.ResourceDefinition {
	t.Helper()
	reg, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}
	def, err := reg.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Courses)

	err := v.Validate(def, map[string]interface{}{
		"courseCode":  "CS101",
		"title":       "Intro",
		"description": "Basics",
		"credits":     float64(3),
		"level":       "Undergraduate",
		"semester":    "Fall",
	})
	if err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidate_RequiredMessagesUseLabels(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Faculty)

	err := v.Validate(def, map[string]interface{}{
		"name":           "Ada",
		"email":          "ada@example.edu",
		"specialization": "Compilers",
	})
	ve := GetValidationErrors(err)
	if ve == nil {
		t.Fatalf("error = %v, want validation error", err)
	}
	if !ve.Has("designation") {
		t.Errorf("violations = %v, want designation", ve.Violations)
	}
	if !strings.Contains(ve.Error(), "Designation is required") {
		t.Errorf("message = %q", ve.Error())
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Courses)

	err := v.Validate(def, map[string]interface{}{
		"courseCode":  "CS101",
		"title":       "Intro",
		"description": "Basics",
		"credits":     float64(9),
		"level":       "Kindergarten",
	})
	ve := GetValidationErrors(err)
	if ve == nil {
		t.Fatalf("error = %v", err)
	}
	for _, field := range []string{"credits", "level", "semester"} {
		if !ve.Has(field) {
			t.Errorf("missing violation for %s in %v", field, ve.Violations)
		}
	}
	if !strings.Contains(ve.Error(), "Credits must be at most 6") {
		t.Errorf("message = %q", ve.Error())
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Events)

	err := v.ValidatePartial(def, map[string]interface{}{"isFeatured": "yes"})
	ve := GetValidationErrors(err)
	if ve == nil || !ve.Has("isFeatured") {
		t.Fatalf("error = %v", err)
	}
}

func TestValidatePartial_IgnoresRequired(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Faculty)

	if err := v.ValidatePartial(def, map[string]interface{}{"phone": "123"}); err != nil {
		t.Errorf("ValidatePartial() error = %v", err)
	}

	// enum is still enforced
	err := v.ValidatePartial(def, map[string]interface{}{"designation": "Wizard"})
	if !IsValidationError(err) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestValidate_ArrayItems(t *testing.T) {
	v := NewValidator()
	def := definition(t, schema.Gallery)

	err := v.ValidatePartial(def, map[string]interface{}{"tags": []interface{}{"ok", float64(1)}})
	ve := GetValidationErrors(err)
	if ve == nil || !ve.Has("tags") {
		t.Fatalf("error = %v, want tags violation", err)
	}
}
