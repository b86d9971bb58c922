// Package validate checks raw JSON payloads against the JSON Schema exported
// for a struct type before they are materialized.
package validate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/reoring/gostruct"
)

// Validator validates documents against the schema of one struct type.
type Validator struct {
	typeName string
	schema   *jsonschema.Schema
}

// New compiles the exported schema of typeName.
func New(reg *gostruct.Registry, typeName string) (*Validator, error) {
	doc, err := reg.JSONSchema(typeName)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("validate: encode schema of %s: %w", typeName, err)
	}
	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		return nil, fmt.Errorf("validate: decode schema of %s: %w", typeName, err)
	}
	id := "gostruct://" + typeName + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(id, schemaDoc); err != nil {
		return nil, fmt.Errorf("validate: add schema resource %s: %w", id, err)
	}
	sch, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("validate: compile schema of %s: %w", typeName, err)
	}
	return &Validator{typeName: typeName, schema: sch}, nil
}

// TypeName returns the struct type the validator was compiled for.
func (v *Validator) TypeName() string { return v.typeName }

// ValidateJSON decodes b and validates it. Decoding failures are reported as
// a json_error issue, schema violations as invalid_type issues located at the
// offending instance path.
func (v *Validator) ValidateJSON(b []byte) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return gostruct.Issues{gostruct.RootPath().Issue(gostruct.CodeJSONError, "reason", "empty input")}
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		it := gostruct.RootPath().Issue(gostruct.CodeJSONError, "reason", "malformed input")
		it.Cause = err
		return gostruct.Issues{it}
	}
	return v.ValidateDocument(doc)
}

// ValidateDocument validates an already decoded document (float64 numbers,
// map[string]any objects).
func (v *Validator) ValidateDocument(doc any) error {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		it := gostruct.RootPath().Issue(gostruct.CodeInvalidType, "property", "", "declaring_type", v.typeName, "expected", v.typeName, "actual", "invalid document")
		it.Cause = err
		return gostruct.Issues{it}
	}
	var out gostruct.Issues
	collect(ve, v.typeName, &out)
	return out
}

var printer = message.NewPrinter(language.English)

// collect walks the cause tree and reports leaf errors.
func collect(ve *jsonschema.ValidationError, typeName string, out *gostruct.Issues) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, typeName, out)
		}
		return
	}
	p := gostruct.PathAt("/" + strings.Join(ve.InstanceLocation, "/"))
	property := ""
	if n := len(ve.InstanceLocation); n > 0 {
		property = ve.InstanceLocation[n-1]
	}
	it := p.Issue(gostruct.CodeInvalidType, "property", property, "declaring_type", typeName, "expected", "schema", "actual", "violation")
	it.Message = ve.ErrorKind.LocalizedString(printer)
	*out = gostruct.AppendIssues(*out, it)
}
