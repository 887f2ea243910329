package schema

import (
	"errors"
	"testing"

	"github.com/deptsite/deptcms/pkg/apperror"
)

func TestDefault_RegistersAllResources(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	want := []string{Faculty, Courses, Events, Gallery, Achievements, StudyMaterials, News}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	_, err = reg.Get("widgets")
	var ue *apperror.UnknownResourceError
	if !errors.As(err, &ue) {
		t.Fatalf("Get(widgets) error = %v, want UnknownResourceError", err)
	}
	if ue.Name != "widgets" {
		t.Errorf("Name = %q", ue.Name)
	}
}

func TestDefine_CounterDefaultsToZero(t *testing.T) {
	reg, _ := Default()
	gallery, err := reg.Get(Gallery)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"views", "likes"} {
		f, ok := gallery.Field(name)
		if !ok {
			t.Fatalf("gallery has no %s field", name)
		}
		if f.Default != float64(0) {
			t.Errorf("%s default = %v, want 0", name, f.Default)
		}
	}
}

func TestDefine_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  ResourceDefinition
	}{
		{
			name: "missing name",
			def:  ResourceDefinition{Fields: []FieldSpec{text("title")}},
		},
		{
			name: "unrecognized type",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{{Name: "a", Type: "integer"}}},
		},
		{
			name: "empty enum",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{{Name: "a", Type: TypeString, Enum: []string{}}}},
		},
		{
			name: "enum on number",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{{Name: "a", Type: TypeNumber, Enum: []string{"1"}}}},
		},
		{
			name: "default outside enum",
			def: ResourceDefinition{Name: "x", Fields: []FieldSpec{
				{Name: "a", Type: TypeString, Enum: []string{"A"}, Default: "B"},
			}},
		},
		{
			name: "uniqueness group claimed twice",
			def: ResourceDefinition{Name: "x", Fields: []FieldSpec{
				{Name: "a", Type: TypeString, Unique: "key"},
				{Name: "b", Type: TypeString, Unique: "key"},
			}},
		},
		{
			name: "duplicate field",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{text("a"), text("a")}},
		},
		{
			name: "reserved field",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{{Name: FieldIsActive, Type: TypeBoolean}}},
		},
		{
			name: "string counter",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{{Name: "c", Type: TypeString, Counter: true}}},
		},
		{
			name: "sort on undeclared field",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{text("a")}, DefaultSort: []SortKey{Asc("b")}},
		},
		{
			name: "search on number",
			def: ResourceDefinition{
				Name:       "x",
				Fields:     []FieldSpec{{Name: "n", Type: TypeNumber}},
				SearchKeys: map[string][]string{"search": {"n"}},
			},
		},
		{
			name: "status without Upcoming",
			def: ResourceDefinition{
				Name: "x",
				Fields: []FieldSpec{
					{Name: "when", Type: TypeDate},
					{Name: "status", Type: TypeString, Enum: []string{"Done"}},
				},
				UpcomingField: "when",
				StatusField:   "status",
			},
		},
		{
			name: "field name not an identifier",
			def:  ResourceDefinition{Name: "x", Fields: []FieldSpec{text("a'b")}},
		},
		{
			name: "resource name with spaces",
			def:  ResourceDefinition{Name: "study materials", Fields: []FieldSpec{text("a")}},
		},
		{
			name: "like counter not a counter",
			def: ResourceDefinition{
				Name:        "x",
				Fields:      []FieldSpec{{Name: "likes", Type: TypeNumber}},
				LikeCounter: "likes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Define(tt.def)
			var se *apperror.SchemaError
			if !errors.As(err, &se) {
				t.Errorf("Define() error = %v, want SchemaError", err)
			}
		})
	}
}

func TestNewRegistry_DuplicateResource(t *testing.T) {
	d := ResourceDefinition{Name: "x", Fields: []FieldSpec{text("a")}}
	_, err := NewRegistry(d, d)
	var se *apperror.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
}

func TestDefine_CopiesInput(t *testing.T) {
	in := ResourceDefinition{
		Name: "x",
		Fields: []FieldSpec{
			{Name: "kind", Type: TypeString, Enum: []string{"A", "B"}},
			{Name: "n", Type: TypeNumber, Min: ptr(1)},
			{Name: "featured", Type: TypeBoolean},
			{Name: "title", Type: TypeString},
		},
		DefaultFilters: map[string]any{"kind": "A"},
		DefaultSort:    []SortKey{Asc("title")},
		SearchKeys:     map[string][]string{"search": {"title"}},
		Featured:       &View{Exact: map[string]any{"featured": true}, Sort: []SortKey{Desc("n")}, Limit: 5},
	}
	def, err := Define(in)
	if err != nil {
		t.Fatal(err)
	}

	in.Fields[0].Name = "changed"
	in.Fields[0].Enum[0] = "Z"
	*in.Fields[1].Min = 99
	in.DefaultFilters["kind"] = "B"
	in.DefaultSort[0] = Desc("n")
	in.SearchKeys["search"][0] = "kind"
	in.SearchKeys["other"] = []string{"title"}
	in.Featured.Limit = 50
	in.Featured.Exact["featured"] = false

	f, ok := def.Field("kind")
	if !ok {
		t.Fatal("definition should not share the caller's field slice")
	}
	if f.Enum[0] != "A" {
		t.Errorf("enum = %v", f.Enum)
	}
	if n, _ := def.Field("n"); *n.Min != 1 {
		t.Errorf("min = %v", *n.Min)
	}
	if def.DefaultFilters["kind"] != "A" {
		t.Errorf("default filters = %v", def.DefaultFilters)
	}
	if def.DefaultSort[0] != Asc("title") {
		t.Errorf("default sort = %v", def.DefaultSort)
	}
	if len(def.SearchKeys) != 1 || def.SearchKeys["search"][0] != "title" {
		t.Errorf("search keys = %v", def.SearchKeys)
	}
	if def.Featured == in.Featured || def.Featured.Limit != 5 || def.Featured.Exact["featured"] != true {
		t.Errorf("featured = %+v", def.Featured)
	}
}

func TestFieldType_IncludesSystemFields(t *testing.T) {
	reg, _ := Default()
	def, _ := reg.Get(Courses)

	if typ, ok := def.FieldType(FieldCreatedAt); !ok || typ != TypeDate {
		t.Errorf("FieldType(createdAt) = %v, %v", typ, ok)
	}
	if typ, ok := def.FieldType(FieldIsActive); !ok || typ != TypeBoolean {
		t.Errorf("FieldType(isActive) = %v, %v", typ, ok)
	}
	if _, ok := def.FieldType("nope"); ok {
		t.Error("FieldType(nope) should not resolve")
	}
}

func TestJSONSchema_Required(t *testing.T) {
	reg, _ := Default()
	def, _ := reg.Get(Faculty)

	doc := def.JSONSchema()
	required, ok := doc["required"].([]string)
	if !ok {
		t.Fatalf("required = %T", doc["required"])
	}
	want := map[string]bool{"name": true, "email": true, "designation": true, "specialization": true}
	if len(required) != len(want) {
		t.Fatalf("required = %v", required)
	}
	for _, name := range required {
		if !want[name] {
			t.Errorf("unexpected required field %q", name)
		}
	}
}
