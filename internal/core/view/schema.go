package view

import "encoding/json"

// JSON Schema property types
type PropertyType string

const (
	PropertyTypeString  PropertyType = "string"
	PropertyTypeNumber  PropertyType = "number"
	PropertyTypeInteger PropertyType = "integer"
	PropertyTypeBoolean PropertyType = "boolean"
	PropertyTypeArray   PropertyType = "array"
	PropertyTypeObject  PropertyType = "object"
)

// SchemaProperty describes one record field. An empty Type accepts any JSON
// value; Nullable additionally admits null.
type SchemaProperty struct {
	Type        PropertyType               `json:"-"`
	Nullable    bool                       `json:"-"`
	Title       string                     `json:"title,omitempty"`
	Description string                     `json:"description,omitempty"`
	Format      string                     `json:"format,omitempty"`
	Enum        []interface{}              `json:"enum,omitempty"`
	Minimum     *float64                   `json:"minimum,omitempty"`
	Items       *SchemaProperty            `json:"items,omitempty"`
	Properties  map[string]*SchemaProperty `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
}

func (p SchemaProperty) MarshalJSON() ([]byte, error) {
	type plain SchemaProperty
	out := struct {
		plain
		Type interface{} `json:"type,omitempty"`
	}{plain: plain(p)}

	switch {
	case p.Type == "":
	case p.Nullable:
		out.Type = []PropertyType{p.Type, "null"}
	default:
		out.Type = p.Type
	}
	return json.Marshal(out)
}

func NewSchema(title string, properties map[string]*SchemaProperty, required []string) map[string]interface{} {
	props := make(map[string]interface{})
	for k, v := range properties {
		props[k] = v
	}

	schema := map[string]interface{}{
		"type":       "object",
		"title":      title,
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func minimum(v float64) *float64 {
	return &v
}

func text(title string) *SchemaProperty {
	return &SchemaProperty{Type: PropertyTypeString, Title: title}
}

func optionalText(title string) *SchemaProperty {
	return &SchemaProperty{Type: PropertyTypeString, Nullable: true, Title: title}
}

func price(title string) *SchemaProperty {
	return &SchemaProperty{Type: PropertyTypeNumber, Nullable: true, Title: title, Minimum: minimum(0)}
}

func anyValue(title string) *SchemaProperty {
	return &SchemaProperty{Title: title}
}
