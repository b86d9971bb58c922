// Package schemafile declares struct and enum types from a multi-document
// YAML stream.
//
//	kind: Struct
//	name: shop.Order
//	extends: shop.Base
//	properties:
//	  id: integer
//	  lines: Line[]        # relative to the shop namespace
//	  status: Status
//	defaults:
//	  status: open
//	setters: [withId]
//	---
//	kind: Enum
//	name: shop.Status
//	constants:
//	  OPEN: open
//	  CLOSED: closed
//
// Property and constant order follows the document order.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reoring/gostruct"
)

// Document kinds.
const (
	KindStruct = "Struct"
	KindEnum   = "Enum"
)

type document struct {
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name"`
	Extends    string         `yaml:"extends"`
	Properties yaml.Node      `yaml:"properties"`
	Defaults   map[string]any `yaml:"defaults"`
	Setters    []string       `yaml:"setters"`
	Constants  yaml.Node      `yaml:"constants"`
}

// Load declares every document of r in u. Unknown document fields and
// duplicate keys are errors.
func Load(u *gostruct.Universe, r io.Reader) ([]string, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var names []string
	for i := 0; ; i++ {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return names, nil
			}
			return nil, fmt.Errorf("schemafile: document %d: %w", i, err)
		}
		if doc.Kind == "" && doc.Name == "" {
			continue
		}
		if doc.Name == "" {
			return nil, fmt.Errorf("schemafile: document %d: missing name", i)
		}
		var err error
		switch doc.Kind {
		case KindStruct:
			err = declareStruct(u, &doc)
		case KindEnum:
			err = declareEnum(u, &doc)
		default:
			err = fmt.Errorf("unknown kind %q", doc.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("schemafile: document %d (%s): %w", i, doc.Name, err)
		}
		names = append(names, doc.Name)
	}
}

// LoadBytes is Load over an in-memory document.
func LoadBytes(u *gostruct.Universe, data []byte) ([]string, error) {
	return Load(u, bytes.NewReader(data))
}

// LoadFile is Load over a file.
func LoadFile(u *gostruct.Universe, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	defer f.Close()
	return Load(u, f)
}

func declareStruct(u *gostruct.Universe, doc *document) (err error) {
	// The universe panics when a name is reused across kinds.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	pairs, err := orderedPairs(&doc.Properties)
	if err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	b := u.Struct(doc.Name)
	if doc.Extends != "" {
		b.Extends(doc.Extends)
	}
	for _, p := range pairs {
		token, ok := p.value.(string)
		if !ok {
			return fmt.Errorf("properties: type of %s must be a string", p.key)
		}
		b.Property(p.key, token)
	}
	for k, v := range doc.Defaults {
		b.Default(k, v)
	}
	b.Setter(doc.Setters...)
	return nil
}

func declareEnum(u *gostruct.Universe, doc *document) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	pairs, err := orderedPairs(&doc.Constants)
	if err != nil {
		return fmt.Errorf("constants: %w", err)
	}
	consts := make([]gostruct.EnumConstant, 0, len(pairs))
	for _, p := range pairs {
		consts = append(consts, gostruct.Const(p.key, p.value))
	}
	u.Enum(doc.Name, consts...)
	return nil
}

type pair struct {
	key   string
	value any
}

// orderedPairs reads a mapping node keeping document order. An absent node
// yields no pairs.
func orderedPairs(n *yaml.Node) ([]pair, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		var value any
		if err := v.Decode(&value); err != nil {
			return nil, fmt.Errorf("line %d: %w", v.Line, err)
		}
		out = append(out, pair{key: k.Value, value: value})
	}
	return out, nil
}
