package schema

import (
	"testing"
	"time"
)

func mustGet(t *testing.T, name string) *ResourceDefinition {
	t.Helper()
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	def, err := reg.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return def
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:30", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01T12:30:00+02:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil {
			t.Errorf("ParseDate(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("expected error for free-form date")
	}
}

func TestSanitize_DropsUnknownSystemAndCounters(t *testing.T) {
	def := mustGet(t, Gallery)

	set, unset, violations := def.Sanitize(map[string]any{
		"title":     "  Hackathon  ",
		"views":     float64(99),
		"id":        "abc",
		"createdAt": "2020-01-01",
		"whatever":  true,
	}, false)

	if len(violations) != 0 || len(unset) != 0 {
		t.Fatalf("violations = %v, unset = %v", violations, unset)
	}
	if len(set) != 1 || set["title"] != "Hackathon" {
		t.Errorf("set = %v, want only trimmed title", set)
	}
}

func TestSanitize_CaseNormalization(t *testing.T) {
	faculty := mustGet(t, Faculty)
	set, _, _ := faculty.Sanitize(map[string]any{"email": " Ada@Example.EDU "}, false)
	if set["email"] != "ada@example.edu" {
		t.Errorf("email = %v", set["email"])
	}

	courses := mustGet(t, Courses)
	set, _, _ = courses.Sanitize(map[string]any{"courseCode": "cs101"}, false)
	if set["courseCode"] != "CS101" {
		t.Errorf("courseCode = %v", set["courseCode"])
	}
}

func TestSanitize_NullOnUpdate(t *testing.T) {
	def := mustGet(t, Faculty)

	_, unset, violations := def.Sanitize(map[string]any{"phone": nil, "name": nil}, true)
	if len(unset) != 1 || unset[0] != "phone" {
		t.Errorf("unset = %v, want [phone]", unset)
	}
	if len(violations) != 1 || violations[0].Field != "name" {
		t.Errorf("violations = %v, want name required", violations)
	}
}

func TestSanitize_EmptyRequiredStringOnCreateIsAbsent(t *testing.T) {
	def := mustGet(t, Faculty)

	set, _, violations := def.Sanitize(map[string]any{"designation": "   "}, false)
	if len(violations) != 0 {
		t.Errorf("violations = %v", violations)
	}
	if _, ok := set["designation"]; ok {
		t.Error("blank designation should be treated as absent")
	}
}

func TestApplyDefaults(t *testing.T) {
	def := mustGet(t, News)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	data := map[string]any{"category": "Research"}
	def.ApplyDefaults(data, now)

	if data["category"] != "Research" {
		t.Errorf("explicit value overwritten: %v", data["category"])
	}
	if data["isPublished"] != true {
		t.Errorf("isPublished = %v", data["isPublished"])
	}
	if data["views"] != float64(0) {
		t.Errorf("views = %v", data["views"])
	}
	if data["publishDate"] != now.Format(time.RFC3339Nano) {
		t.Errorf("publishDate = %v", data["publishDate"])
	}
}

func TestCoerce(t *testing.T) {
	def := mustGet(t, Events)

	out, violations := def.Coerce(map[string]any{
		"eventDate":       "2030-01-15",
		"maxParticipants": float64(40),
		"tags":            []any{"ai", "ml"},
	})
	if len(violations) != 0 {
		t.Fatalf("violations = %v", violations)
	}
	if d, ok := out["eventDate"].(time.Time); !ok || d.Year() != 2030 {
		t.Errorf("eventDate = %#v", out["eventDate"])
	}
	if tags, ok := out["tags"].([]string); !ok || len(tags) != 2 {
		t.Errorf("tags = %#v", out["tags"])
	}

	_, violations = def.Coerce(map[string]any{"eventDate": "someday"})
	if len(violations) != 1 || violations[0].Field != "eventDate" {
		t.Errorf("violations = %v", violations)
	}
}

func TestFromStorage_Lenient(t *testing.T) {
	def := mustGet(t, Gallery)

	out := def.FromStorage(map[string]any{
		"title":     "Lab",
		"views":     int64(3),
		"eventDate": "garbage",
		"legacy":    "x",
	})
	if out["views"] != float64(3) {
		t.Errorf("views = %#v", out["views"])
	}
	if _, ok := out["eventDate"]; ok {
		t.Error("unparseable date should be dropped")
	}
	if _, ok := out["legacy"]; ok {
		t.Error("unknown field should be dropped")
	}
}
