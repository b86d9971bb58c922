package gostruct

// Package gostruct provides:
//
// - Struct types declared at runtime through a Universe (typed properties, inheritance, defaults, enums)
// - A write-once schema Registry that resolves declarations into cached property templates
// - Struct instances with typed get/set and set/dirty tracking that bubbles through nested structs and arrays
// - Materialization from untyped maps and JSON, ordered JSON encoding and serialization
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep public APIs in the root package; codecs under codec/, YAML declarations under schemafile/,
//   JSON Schema validation under validate/ and the CLI under cmd/gostruct.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  u := gostruct.NewUniverse()
//  u.Struct("shop.Child").Property("value1", "string").Property("value2", "string")
//  u.Struct("shop.Parent").Property("child", "Child")
//  reg := gostruct.NewRegistry(u)
//
//  p, err := reg.CreateFromUntyped("shop.Parent", map[string]any{"child": map[string]any{"value1": "foo"}})
//  p.Clean()
//  child, _ := gostruct.GetAs[*gostruct.Struct](p, "child")
//  _ = child.Set("value1", "bar")
//  patch, err := p.WithDirtyPropertiesOnly().ToJSON() // {"child":{"value1":"bar"}}
