package schema

// FieldType is the storage type of a declared field.
type FieldType string

const (
	TypeString      FieldType = "string"
	TypeNumber      FieldType = "number"
	TypeBoolean     FieldType = "boolean"
	TypeDate        FieldType = "date"
	TypeStringArray FieldType = "string[]"
	TypeObject      FieldType = "object"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeStringArray, TypeObject:
		return true
	}
	return false
}

// Scalar reports whether values of t can be compared for equality in a filter.
func (t FieldType) Scalar() bool {
	return t == TypeString || t == TypeNumber || t == TypeBoolean
}

// Case is a normalization applied to string values before validation.
type Case int

const (
	CaseNone Case = iota
	CaseLower
	CaseUpper
)

// System fields every record carries. They are assigned by the repository.
const (
	FieldID        = "id"
	FieldIsActive  = "isActive"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

var systemFields = map[string]FieldType{
	FieldID:        TypeString,
	FieldIsActive:  TypeBoolean,
	FieldCreatedAt: TypeDate,
	FieldUpdatedAt: TypeDate,
}

// IsSystemField reports whether name is assigned by the repository.
func IsSystemField(name string) bool {
	_, ok := systemFields[name]
	return ok
}

type FieldSpec struct {
	Name     string
	Type     FieldType
	Label    string
	Required bool
	Default  any
	Enum     []string
	// Unique names a uniqueness group. Only single-field groups exist.
	Unique  string
	Min     *float64
	Max     *float64
	Counter bool
	Case    Case
	// DefaultNow sets a date field to the creation time when absent.
	DefaultNow bool
}

// DisplayName is the label used in user-facing messages.
func (f FieldSpec) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func (f FieldSpec) InEnum(v string) bool {
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}

type SortKey struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

func Asc(field string) SortKey  { return SortKey{Field: field} }
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

// View is a preset listing exposed on its own route (featured, upcoming).
type View struct {
	Exact map[string]any
	Sort  []SortKey
	Limit int
}

type ResourceDefinition struct {
	Name  string
	Label string

	Fields []FieldSpec

	// ActiveOnlyByDefault restricts listings to isActive=true unless the
	// caller overrides it.
	ActiveOnlyByDefault bool
	DefaultFilters      map[string]any
	DefaultSort         []SortKey

	// SearchKeys maps a query key to the fields it searches. Fields in one
	// group are OR'ed, groups are AND'ed.
	SearchKeys map[string][]string

	// UpcomingField is the date field compared against now for upcoming=true.
	UpcomingField string
	StatusField   string

	Featured *View
	Upcoming *View

	CategoryField string
	CategorySort  []SortKey

	GroupBy   []string
	GroupSort []SortKey

	HardDelete  bool
	ViewCounter string
	LikeCounter string

	index map[string]int
}

// Field returns the declared spec for name.
func (d *ResourceDefinition) Field(name string) (FieldSpec, bool) {
	i, ok := d.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return d.Fields[i], true
}

// FieldType resolves declared and system fields.
func (d *ResourceDefinition) FieldType(name string) (FieldType, bool) {
	if t, ok := systemFields[name]; ok {
		return t, true
	}
	f, ok := d.Field(name)
	if !ok {
		return "", false
	}
	return f.Type, true
}

func (d *ResourceDefinition) UniqueFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range d.Fields {
		if f.Unique != "" {
			out = append(out, f)
		}
	}
	return out
}

func (d *ResourceDefinition) Counters() []FieldSpec {
	var out []FieldSpec
	for _, f := range d.Fields {
		if f.Counter {
			out = append(out, f)
		}
	}
	return out
}

func (d *ResourceDefinition) IsCounter(name string) bool {
	f, ok := d.Field(name)
	return ok && f.Counter
}

// SupportsUpcoming reports whether upcoming=true is meaningful for d.
func (d *ResourceDefinition) SupportsUpcoming() bool {
	return d.UpcomingField != ""
}

func (d *ResourceDefinition) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.Name
}

func ptr(v float64) *float64 { return &v }
