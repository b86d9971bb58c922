package gostruct

import "reflect"

// GetAs reads a set property and asserts its Go type. A nil value yields the
// zero T.
func GetAs[T any](s *Struct, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil || v == nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		sl, _ := s.slot(name)
		return zero, Issues{RootPath().Field(name).Issue(CodeInvalidType,
			"property", name,
			"declaring_type", sl.DeclaringType(),
			"expected", reflect.TypeFor[T]().String(),
			"actual", runtimeKind(v),
		)}
	}
	return t, nil
}

// MustGet is like Get but panics on error.
func (s *Struct) MustGet(name string) any {
	v, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// MustSet is like Set but panics on error. It returns the struct for chaining.
func (s *Struct) MustSet(name string, v any) *Struct {
	if err := s.Set(name, v); err != nil {
		panic(err)
	}
	return s
}
