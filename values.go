package gostruct

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// runtimeKind names the runtime kind of a value using the scalar type names,
// "NULL" for nil and "object(<type>)" for everything else.
func runtimeKind(v any) string {
	if isNil(v) {
		return "NULL"
	}
	switch t := v.(type) {
	case *Struct:
		return "object(" + t.TypeName() + ")"
	case *Enum:
		return "object(" + t.TypeName() + ")"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return TypeBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInteger
	case reflect.Float32, reflect.Float64:
		return TypeDouble
	case reflect.String:
		return TypeString
	case reflect.Slice, reflect.Array, reflect.Map:
		return TypeArray
	case reflect.Func:
		return TypeCallable
	}
	return "object(" + rv.Type().String() + ")"
}

// scalarAccepts reports whether a non-nil v satisfies the scalar type name.
func scalarAccepts(typeName string, v any) bool {
	switch typeName {
	case TypeMixed:
		return true
	case TypeCallable:
		return reflect.ValueOf(v).Kind() == reflect.Func
	case TypeInteger:
		// integer is the int64 domain; wider unsigned values do not fit.
		if _, wide := normalizeScalar(v).(uint64); wide {
			return false
		}
	}
	return runtimeKind(v) == typeName
}

// isNil reports whether v is nil or a typed nil pointer/map/slice/func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// normalizeScalar widens integers to int64 and floats to float64 so that
// equality does not depend on the Go width of a number. Unsigned values above
// math.MaxInt64 stay uint64.
func normalizeScalar(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return u
		}
		return int64(u)
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}

// strictEqual compares two scalar values without cross-kind coercion.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	na, nb := normalizeScalar(a), normalizeScalar(b)
	if reflect.TypeOf(na) != reflect.TypeOf(nb) || !reflect.TypeOf(na).Comparable() {
		return false
	}
	return na == nb
}

// formatValue renders a value for error messages, truncating long strings.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		if len(t) > 50 {
			t = t[:50] + "..."
		}
		return strconv.Quote(t)
	case bool:
		return strconv.FormatBool(t)
	}
	switch runtimeKind(v) {
	case TypeInteger, TypeDouble:
		return fmt.Sprint(v)
	case TypeArray:
		return "(array)"
	}
	return "(object)"
}

// toCollection normalizes ordered and keyed collections to []any or
// map[string]any. ok is false for anything else.
func toCollection(v any) (any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		return t, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	return nil, false
}

// mapCollection applies fn to every element of a normalized collection and
// returns a new collection of the same shape. Keyed collections are visited in
// key order so errors are deterministic. The first error aborts and nothing of
// the partially built collection escapes.
func mapCollection(base PathRef, coll any, fn func(p PathRef, v any) (any, error)) (any, error) {
	switch t := coll.(type) {
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			nv, err := fn(base.Index(i), v)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range sortedKeys(t) {
			nv, err := fn(base.Field(k), t[k])
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	}
	return coll, nil
}

// eachElement visits every element of a normalized collection.
func eachElement(coll any, fn func(v any)) {
	switch t := coll.(type) {
	case []any:
		for _, v := range t {
			fn(v)
		}
	case map[string]any:
		for _, k := range sortedKeys(t) {
			fn(t[k])
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// deepCopy copies nested slices and maps of any Go type; pointers (structs,
// enums, objects) and other leaves are shared.
func deepCopy(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return v
	}
	return copyValue(rv).Interface()
}

func copyValue(rv reflect.Value) reflect.Value {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Type()).Elem()
		out.Set(copyValue(rv.Elem()))
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(copyValue(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}
		return out
	}
	return rv
}
