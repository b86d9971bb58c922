package gostruct_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gostruct"
)

func TestSetAndGet_Scalars(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")

	fn := func() {}
	values := map[string]any{
		"bool":     true,
		"int":      1,
		"float":    1.1,
		"string":   "foobar",
		"array":    []any{1, 2, 3},
		"mixed":    struct{}{},
		"callable": fn,
	}
	for name, v := range values {
		require.NoError(t, s.Set(name, v), name)
		set, err := s.IsSet(name)
		require.NoError(t, err)
		assert.True(t, set, name)
	}
	assert.Equal(t, true, s.MustGet("bool"))
	assert.Equal(t, 1, s.MustGet("int"))
	assert.Equal(t, 1.1, s.MustGet("float"))
	assert.Equal(t, []any{1, 2, 3}, s.MustGet("array"))

	n, err := gostruct.GetAs[int](s, "int")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = gostruct.GetAs[string](s, "int")
	assert.True(t, errors.Is(err, gostruct.ErrTypeMismatch))
}

func TestSet_TypeMismatchDoesNotCoerce(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	require.NoError(t, s.Set("int", 5))
	s.Clean()

	cases := map[string]any{
		"int":      "5",
		"float":    5,
		"bool":     1,
		"string":   []byte("x"),
		"callable": "strlen",
	}
	for name, v := range cases {
		err := s.Set(name, v)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, gostruct.ErrTypeMismatch), name)

		iss, _ := gostruct.AsIssues(err)
		assert.Equal(t, "/"+name, iss[0].Path)
		assert.Equal(t, name, iss[0].Params["property"])
		assert.Equal(t, "shop.Simple", iss[0].Params["declaring_type"])
	}

	// A failed set leaves the property untouched.
	assert.Equal(t, 5, s.MustGet("int"))
	assert.False(t, s.IsDirty())
}

func TestSet_NilIsAlwaysValid(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	for _, name := range []string{"bool", "int", "float", "string", "array", "mixed", "callable"} {
		require.NoError(t, s.Set(name, nil), name)
		set, _ := s.IsSet(name)
		assert.True(t, set, "nil is a set value")
		v, err := s.Get(name)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}

func TestGet_UnsetFailsLoudly(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	_, err := s.Get("string")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gostruct.ErrInvalidState))
}

func TestUnset(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	require.NoError(t, s.Set("string", "x"))
	require.NoError(t, s.Unset("string"))

	set, _ := s.IsSet("string")
	assert.False(t, set)
	dirty, _ := s.IsDirtyProperty("string")
	assert.False(t, dirty)

	err := s.Unset("string")
	assert.True(t, errors.Is(err, gostruct.ErrInvalidState))
}

func TestUndefinedProperty_CarriesCallerLocation(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")

	calls := map[string]func() error{
		"get":     func() error { _, err := s.Get("nope"); return err },
		"set":     func() error { return s.Set("nope", 1) },
		"isSet":   func() error { _, err := s.IsSet("nope"); return err },
		"unset":   func() error { return s.Unset("nope") },
		"isDirty": func() error { _, err := s.IsDirtyProperty("nope"); return err },
		"dirty":   func() error { return s.SetDirty("nope") },
		"clean":   func() error { return s.SetClean("nope") },
		"prop":    func() error { _, err := s.GetProperty("nope"); return err },
	}
	for name, call := range calls {
		err := call()
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, gostruct.ErrUndefinedProperty), name)
		iss, _ := gostruct.AsIssues(err)
		assert.True(t, strings.Contains(iss[0].Hint, "struct_test.go:"), "%s hint %q", name, iss[0].Hint)
	}
	assert.False(t, s.Has("nope"))
	assert.True(t, s.Has("string"))
}

func TestSetThenCleanThenSetIsDirty(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	require.NoError(t, s.Set("string", "A"))
	s.Clean()
	dirty, _ := s.IsDirtyProperty("string")
	assert.False(t, dirty)

	require.NoError(t, s.Set("string", "A"))
	dirty, _ = s.IsDirtyProperty("string")
	assert.True(t, dirty, "dirtiness tracks assignment, not change")
}

func TestSetDirtyAndSetClean(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	s.Clean()

	err := s.SetDirty("string")
	assert.True(t, errors.Is(err, gostruct.ErrInvalidState), "unset property cannot become dirty")

	require.NoError(t, s.SetDirty("default"))
	assert.True(t, s.IsDirty())
	require.NoError(t, s.SetClean("default"))
	assert.False(t, s.IsDirty())
	assert.Equal(t, "default value", s.MustGet("default"))
}

func TestPropertyLists(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	require.NoError(t, s.Set("int", 1))
	require.NoError(t, s.Set("string", "x"))
	require.NoError(t, s.SetClean("int"))

	assert.Len(t, s.GetProperties(), 8)
	assert.Equal(t, []string{"int", "string", "default"}, names(s.GetSetProperties()))
	assert.Equal(t, []string{"string", "default"}, names(s.GetDirtyProperties()))
}

func TestWith_FluentSetters(t *testing.T) {
	reg := newRegistry()
	o := mustNew(t, reg, "shop.Order")

	_, err := o.With("withStatus", "open")
	require.NoError(t, err)
	_, err = o.With("tags", []any{"a"})
	require.NoError(t, err)
	// A bare property name works without a declared setter.
	_, err = o.With("level", 1)
	require.NoError(t, err)

	_, err = o.With("withNothing", 1)
	assert.True(t, errors.Is(err, gostruct.ErrUndefinedProperty))

	b, err := o.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"status":"open","level":1,"tags":["a"]}`, string(b))
}

func TestClone_IsDeepAndDetached(t *testing.T) {
	reg := newRegistry()
	p, err := reg.CreateFromUntyped("shop.Parent", map[string]any{
		"child":  map[string]any{"value1": "foo"},
		"childs": []any{map[string]any{"value1": "a"}},
	})
	require.NoError(t, err)
	p.Clean()

	c := p.Clone()
	parent, _ := c.Parent()
	assert.Nil(t, parent)

	cc := child(t, c, "child")
	require.NoError(t, cc.Set("value1", "changed"))
	assert.True(t, c.IsDirty())
	assert.False(t, p.IsDirty(), "mutating the clone must not touch the source")
	assert.Equal(t, "foo", child(t, p, "child").MustGet("value1"))

	owner, name := cc.Parent()
	assert.Same(t, c, owner)
	assert.Equal(t, "child", name)
}

func TestDebugSnapshot(t *testing.T) {
	reg := newRegistry()
	p, err := reg.CreateFromUntyped("shop.Parent", map[string]any{"child": map[string]any{"value1": "foo"}})
	require.NoError(t, err)

	d := child(t, p, "child").Debug()
	assert.Equal(t, "shop.Child", d.Type)
	assert.Equal(t, "shop.Parent", d.ParentType)
	assert.Equal(t, "child", d.NameInParent)
	assert.Equal(t, []string{"value1"}, d.Set)
	assert.Equal(t, []string{"value1"}, d.Dirty)
	assert.Equal(t, map[string]any{"value1": "foo"}, d.Data)
}

func TestMustHelpersPanic(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")
	assert.Panics(t, func() { s.MustGet("string") })
	assert.Panics(t, func() { s.MustSet("int", "x") })
	assert.Panics(t, func() { reg.MustNew("shop.Unknown") })
	assert.NotPanics(t, func() { s.MustSet("int", 2).MustSet("string", "y") })
}
