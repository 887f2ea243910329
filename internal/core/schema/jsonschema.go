package schema

// JSON Schema property types
type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeArray   PropertyType = "array"
	PropertyTypeObject  PropertyType = "object"
)

type SchemaProperty struct {
	Type                 PropertyType    `json:"type"`
	Title                string          `json:"title,omitempty"`
	Enum                 []interface{}   `json:"enum,omitempty"`
	Minimum              *float64        `json:"minimum,omitempty"`
	Maximum              *float64        `json:"maximum,omitempty"`
	Items                *SchemaProperty `json:"items,omitempty"`
	AdditionalProperties *SchemaProperty `json:"additionalProperties,omitempty"`
}

func NewSchema(title string, properties map[string]*SchemaProperty, required []string) map[string]interface{} {
	props := make(map[string]interface{})
	for k, v := range properties {
		props[k] = v
	}

	s := map[string]interface{}{
		"type":       "object",
		"title":      title,
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// JSONSchema renders d as a JSON Schema document. Dates are strings at the
// JSON level and are parsed after validation.
func (d *ResourceDefinition) JSONSchema() map[string]interface{} {
	props := make(map[string]*SchemaProperty, len(d.Fields))
	var required []string

	for _, f := range d.Fields {
		props[f.Name] = property(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return NewSchema(d.DisplayName(), props, required)
}

func property(f FieldSpec) *SchemaProperty {
	p := &SchemaProperty{Title: f.DisplayName()}
	switch f.Type {
	case TypeString, TypeDate:
		p.Type = PropertyTypeString
	case TypeNumber:
		p.Type = PropertyTypeNumber
		p.Minimum = f.Min
		p.Maximum = f.Max
	case TypeBoolean:
		p.Type = PropertyTypeBoolean
	case TypeStringArray:
		p.Type = PropertyTypeArray
		p.Items = &SchemaProperty{Type: PropertyTypeString}
	case TypeObject:
		p.Type = PropertyTypeObject
		p.AdditionalProperties = &SchemaProperty{Type: PropertyTypeString}
	}
	for _, e := range f.Enum {
		p.Enum = append(p.Enum, e)
	}
	return p
}
