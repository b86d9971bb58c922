package gostruct

import (
	"bytes"
	"encoding"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// prettyIndent is the indentation unit of ToJSONIndent and String.
const prettyIndent = "    "

// ToJSON encodes the set properties in declaration order. Unset properties are
// omitted, slashes are not escaped and integral doubles keep a ".0" fraction.
func (s *Struct) ToJSON() ([]byte, error) { return s.encode("") }

// ToJSONIndent is ToJSON with four-space indentation.
func (s *Struct) ToJSONIndent() ([]byte, error) { return s.encode(prettyIndent) }

// MarshalJSON implements json.Marshaler.
func (s *Struct) MarshalJSON() ([]byte, error) { return s.ToJSON() }

// String returns the indented JSON form, or an empty string if the struct
// holds a value that cannot be encoded.
func (s *Struct) String() string {
	b, err := s.ToJSONIndent()
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *Struct) encode(indent string) ([]byte, error) {
	e := &encoder{u: s.reg.u, indent: indent}
	if err := e.value(RootPath(), s, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// encodeJSON encodes a plain value without object codecs.
func encodeJSON(v any, indent string) ([]byte, error) {
	e := &encoder{indent: indent}
	if err := e.value(RootPath(), v, 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf    bytes.Buffer
	u      *Universe
	indent string
}

func jsonError(p PathRef, reason string, cause error) error {
	it := p.Issue(CodeJSONError, "reason", reason)
	it.Cause = cause
	return Issues{it}
}

func (e *encoder) newline(depth int) {
	if e.indent == "" {
		return
	}
	e.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) colon() {
	e.buf.WriteByte(':')
	if e.indent != "" {
		e.buf.WriteByte(' ')
	}
}

func (e *encoder) value(p PathRef, v any, depth int) error {
	if isNil(v) {
		e.buf.WriteString("null")
		return nil
	}
	switch t := v.(type) {
	case *Struct:
		return e.object(p, t, depth)
	case *Enum:
		if !t.isSet {
			return jsonError(p, "cannot encode unset enum of "+t.TypeName(), nil)
		}
		return e.value(p, t.value, depth)
	case bool:
		e.buf.WriteString(strconv.FormatBool(t))
		return nil
	case string:
		return e.str(t)
	case []any:
		return e.list(p, t, depth)
	case map[string]any:
		return e.keyed(p, t, depth)
	}
	if e.u != nil {
		if def, ok := e.u.objectDefFor(v); ok && def.Codec != nil {
			s, err := def.Codec.Encode(v)
			if err != nil {
				return jsonError(p, "cannot encode "+def.Name, err)
			}
			return e.str(s)
		}
	}
	switch runtimeKind(v) {
	case TypeInteger:
		switch n := normalizeScalar(v).(type) {
		case uint64:
			e.buf.WriteString(strconv.FormatUint(n, 10))
		case int64:
			e.buf.WriteString(strconv.FormatInt(n, 10))
		}
		return nil
	case TypeDouble:
		return e.float(p, normalizeScalar(v).(float64))
	case TypeString:
		return e.str(reflect.ValueOf(v).String())
	case TypeArray:
		coll, ok := toCollection(v)
		if ok {
			return e.value(p, coll, depth)
		}
	case TypeCallable:
		return jsonError(p, "cannot encode callable", nil)
	}
	return e.marshal(p, v)
}

// marshal falls back to the value's own JSON or text form.
func (e *encoder) marshal(p PathRef, v any) error {
	if tm, ok := v.(encoding.TextMarshaler); ok {
		if _, isJSON := v.(json.Marshaler); !isJSON {
			b, err := tm.MarshalText()
			if err != nil {
				return jsonError(p, "cannot encode "+runtimeKind(v), err)
			}
			return e.str(string(b))
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return jsonError(p, "cannot encode "+runtimeKind(v), err)
	}
	e.buf.Write(b)
	return nil
}

// str writes a JSON string with HTML and slash escaping disabled.
func (e *encoder) str(s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return jsonError(RootPath(), "cannot encode string", err)
	}
	e.buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
	return nil
}

// float keeps a ".0" fraction on integral values so doubles stay doubles.
func (e *encoder) float(p PathRef, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return jsonError(p, "cannot encode "+strconv.FormatFloat(f, 'g', -1, 64), nil)
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	e.buf.WriteString(s)
	return nil
}

func (e *encoder) object(p PathRef, s *Struct, depth int) error {
	e.buf.WriteByte('{')
	n := 0
	for _, sl := range s.props {
		if !sl.IsSet() {
			continue
		}
		if n > 0 {
			e.buf.WriteByte(',')
		}
		n++
		e.newline(depth + 1)
		if err := e.str(sl.Name()); err != nil {
			return err
		}
		e.colon()
		if err := e.value(p.Field(sl.Name()), sl.Value(), depth+1); err != nil {
			return err
		}
	}
	if n > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) list(p PathRef, l []any, depth int) error {
	e.buf.WriteByte('[')
	for i, v := range l {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := e.value(p.Index(i), v, depth+1); err != nil {
			return err
		}
	}
	if len(l) > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encoder) keyed(p PathRef, m map[string]any, depth int) error {
	e.buf.WriteByte('{')
	for i, k := range sortedKeys(m) {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.newline(depth + 1)
		if err := e.str(k); err != nil {
			return err
		}
		e.colon()
		if err := e.value(p.Field(k), m[k], depth+1); err != nil {
			return err
		}
	}
	if len(m) > 0 {
		e.newline(depth)
	}
	e.buf.WriteByte('}')
	return nil
}

// ---- decoding ----

// unmarshalStrict decodes exactly one JSON value into dst, keeping numbers as
// json.Number. Trailing data is an error.
func unmarshalStrict(b []byte, dst any) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return jsonError(RootPath(), "empty input", nil)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return jsonError(RootPath(), "malformed input", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return jsonError(RootPath(), "unexpected data after top-level value", err)
	}
	return nil
}

// normalizeDecoded turns json.Number into int64 (or float64 when the literal
// has a fraction or exponent) throughout a decoded tree.
func normalizeDecoded(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeDecoded(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeDecoded(t[k])
		}
		return t
	}
	return v
}

// DecodeJSON decodes a JSON document into untyped data. The top-level value
// must be an object or an array; arrays become maps keyed by index.
func DecodeJSON(b []byte) (map[string]any, error) {
	var v any
	if err := unmarshalStrict(b, &v); err != nil {
		return nil, err
	}
	switch t := normalizeDecoded(v).(type) {
	case map[string]any:
		return t, nil
	case []any:
		out := make(map[string]any, len(t))
		for i, e := range t {
			out[strconv.Itoa(i)] = e
		}
		return out, nil
	}
	return nil, jsonError(RootPath(), "top-level value is not an object", nil)
}

// CreateFromJSON decodes a JSON document and materializes it into a new
// instance of typeName.
func (r *Registry) CreateFromJSON(typeName string, b []byte) (*Struct, error) {
	data, err := DecodeJSON(b)
	if err != nil {
		return nil, err
	}
	return r.CreateFromUntyped(typeName, data)
}

// CreateFromJSONOrNil is CreateFromJSON returning a nil struct instead of a
// JSON error. Schema and type errors are still returned.
func (r *Registry) CreateFromJSONOrNil(typeName string, b []byte) (*Struct, error) {
	data, err := DecodeJSON(b)
	if err != nil {
		return nil, nil
	}
	return r.CreateFromUntyped(typeName, data)
}
