// Package jsonschema is a minimal JSON Schema (draft 2020-12) data model used
// to export struct schemas.
package jsonschema

import (
	"github.com/goccy/go-json"
)

// Draft is the $schema URI of exported documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
// Keep this struct small and extend incrementally.
type Schema struct {
	// Document
	Schema string             `json:"$schema,omitempty"`
	ID     string             `json:"$id,omitempty"`
	Ref    string             `json:"$ref,omitempty"`
	Defs   map[string]*Schema `json:"$defs,omitempty"`
	Title  string             `json:"title,omitempty"`

	// Core
	Type    Types  `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Enum    []any  `json:"enum,omitempty"`
	Default any    `json:"default,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Types is the "type" keyword: a single name or a list of names.
type Types []string

// Type builds a Types value.
func Type(names ...string) Types { return Types(names) }

// Has reports whether name is one of the types.
func (t Types) Has(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

// MarshalJSON writes a single type as a string and several as an array.
func (t Types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts both forms.
func (t *Types) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*t = Types{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*t = Types(many)
	return nil
}

// Nullable returns a schema accepting s or null.
func Nullable(s *Schema) *Schema {
	if s.Ref == "" && len(s.Type) > 0 {
		if !s.Type.Has("null") {
			s.Type = append(s.Type, "null")
		}
		return s
	}
	return &Schema{OneOf: []*Schema{s, {Type: Type("null")}}}
}
