package gostruct

import (
	js "github.com/reoring/gostruct/jsonschema"
)

// JSONSchema projects the schema of a struct type, and of every struct type
// reachable from it, into a JSON Schema document. Struct types live under
// $defs and are referenced by name. Every property is nullable; unknown keys
// are accepted since materialization ignores them.
func (r *Registry) JSONSchema(typeName string) (*js.Schema, error) {
	defs := map[string]*js.Schema{}
	if err := r.defineStruct(typeName, defs); err != nil {
		return nil, err
	}
	return &js.Schema{Schema: js.Draft, Ref: defRef(typeName), Defs: defs}, nil
}

func defRef(typeName string) string { return "#/$defs/" + typeName }

func (r *Registry) defineStruct(typeName string, defs map[string]*js.Schema) error {
	if _, ok := defs[typeName]; ok {
		return nil
	}
	sc, err := r.getOrBuild(typeName)
	if err != nil {
		return err
	}
	obj := &js.Schema{
		Title:                typeName,
		Type:                 js.Type("object"),
		Properties:           make(map[string]*js.Schema, len(sc.templates)),
		AdditionalProperties: true,
	}
	// Claim the name before descending so self-references terminate.
	defs[typeName] = obj
	for _, t := range sc.templates {
		ps, err := r.propertySchema(t, defs)
		if err != nil {
			return err
		}
		obj.Properties[t.Name()] = ps
	}
	return nil
}

func (r *Registry) propertySchema(t slot, defs map[string]*js.Schema) (*js.Schema, error) {
	elem, err := r.valueSchema(t.desc(), defs)
	if err != nil {
		return nil, err
	}
	var ps *js.Schema
	if t.IsArray() {
		ps = &js.Schema{Type: js.Type("array", "object", "null"), Items: elem, AdditionalProperties: elem}
	} else {
		ps = elem
	}
	if t.HasDefaultValue() && !t.ContainsStruct() {
		ps.Default = plainValue(t.DefaultValue())
	}
	return ps, nil
}

// valueSchema describes a single value of the property's type.
func (r *Registry) valueSchema(d *descriptor, defs map[string]*js.Schema) (*js.Schema, error) {
	switch d.typ.Kind {
	case KindStruct:
		if err := r.defineStruct(d.typ.Name, defs); err != nil {
			return nil, err
		}
		return js.Nullable(&js.Schema{Ref: defRef(d.typ.Name)}), nil
	case KindEnum:
		values := make([]any, 0, len(d.enumDef.Constants))
		for _, c := range d.enumDef.Constants {
			values = append(values, c.Value)
		}
		return &js.Schema{Title: d.typ.Name, Enum: values}, nil
	case KindObject:
		if d.objectDef != nil && d.objectDef.Codec != nil {
			return &js.Schema{Type: js.Type("string", "null"), Format: d.objectDef.Codec.Format()}, nil
		}
		// Only Go values satisfy a plain object type; JSON can only carry null.
		return &js.Schema{Type: js.Type("null")}, nil
	}
	switch d.typ.Name {
	case TypeBoolean:
		return &js.Schema{Type: js.Type("boolean", "null")}, nil
	case TypeInteger:
		return &js.Schema{Type: js.Type("integer", "null")}, nil
	case TypeDouble:
		return &js.Schema{Type: js.Type("number", "null")}, nil
	case TypeString:
		return &js.Schema{Type: js.Type("string", "null")}, nil
	case TypeArray:
		return &js.Schema{Type: js.Type("array", "object", "null")}, nil
	case TypeCallable:
		return &js.Schema{Type: js.Type("null")}, nil
	}
	return &js.Schema{}, nil
}
