package gostruct_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/gostruct"
)

func names(props []gostruct.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.Name())
	}
	return out
}

func TestSchema_DeclarationOrderAndTypes(t *testing.T) {
	reg := newRegistry()
	props, err := reg.Schema("shop.Simple")
	require.NoError(t, err)
	assert.Equal(t, []string{"bool", "int", "float", "string", "array", "mixed", "callable", "default"}, names(props))

	types := map[string]string{}
	for _, p := range props {
		types[p.Name()] = p.TypeName()
	}
	assert.Equal(t, "boolean", types["bool"])
	assert.Equal(t, "integer", types["int"])
	assert.Equal(t, "double", types["float"])
}

func TestSchema_InheritanceAncestorFirst(t *testing.T) {
	reg := newRegistry()
	props, err := reg.Schema("shop.Dog")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "bark"}, names(props))
	assert.Equal(t, "shop.Animal", props[0].DeclaringType())
	assert.Equal(t, "shop.Dog", props[1].DeclaringType())
}

func TestSchema_Variants(t *testing.T) {
	reg := newRegistry()
	props, err := reg.Schema("shop.Order")
	require.NoError(t, err)
	got := map[string]gostruct.Variant{}
	for _, p := range props {
		got[p.Name()] = p.Variant()
	}
	assert.Equal(t, gostruct.VariantEnum, got["status"])
	assert.Equal(t, gostruct.VariantArrayOfEnum, got["statuses"])
	assert.Equal(t, gostruct.VariantScalar, got["at"])
	assert.Equal(t, gostruct.VariantArrayOfScalar, got["tags"])

	props, err = reg.Schema("shop.Parent")
	require.NoError(t, err)
	assert.Equal(t, gostruct.VariantStruct, props[0].Variant())
	assert.Equal(t, gostruct.VariantArrayOfStruct, props[1].Variant())
	assert.True(t, props[1].ContainsStruct())
	assert.True(t, props[1].IsArray())
}

func TestSchema_NarrowingRedefinition(t *testing.T) {
	reg := newRegistry()
	cage := mustNew(t, reg, "shop.DogCage")
	p, err := cage.GetProperty("pet")
	require.NoError(t, err)
	assert.Equal(t, "shop.DogCage", p.DeclaringType())
	assert.Equal(t, "shop.Dog", p.TypeName())

	animal := mustNew(t, reg, "shop.Animal")
	err = cage.Set("pet", animal)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gostruct.ErrTypeMismatch))

	require.NoError(t, cage.Set("pet", mustNew(t, reg, "shop.Dog")))

	// The base type keeps the wide declaration.
	base := mustNew(t, reg, "shop.Cage")
	require.NoError(t, base.Set("pet", animal))
}

func TestSchema_NonNarrowingRedefinitionIsSkippedWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reg := newRegistry(gostruct.WithLogger(zap.New(core)))

	cage := mustNew(t, reg, "shop.BadCage")
	p, err := cage.GetProperty("size")
	require.NoError(t, err)
	assert.Equal(t, "integer", p.TypeName())
	assert.Equal(t, "shop.Cage", p.DeclaringType())

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "shop.BadCage", fields["struct"])
	assert.Equal(t, "size", fields["property"])
	assert.Equal(t, "integer", fields["inherited_type"])
	assert.Equal(t, "string", fields["declared_type"])
}

func TestSchema_StrictRedefinitionFails(t *testing.T) {
	reg := newRegistry(gostruct.WithStrictRedefinition())
	_, err := reg.New("shop.BadCage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gostruct.ErrSchema))
	assert.Equal(t, gostruct.CodeInvalidRedefinition, issueCode(t, err))
}

func TestSchema_UnknownTypeIsFatal(t *testing.T) {
	u := newShop()
	u.Struct("shop.Broken").Property("ok", "string").Property("bad", "Missing")
	reg := gostruct.NewRegistry(u)

	_, err := reg.New("shop.Broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gostruct.ErrSchema))
	iss, _ := gostruct.AsIssues(err)
	assert.Equal(t, "/bad", iss[0].Path)
	assert.Equal(t, "Missing", iss[0].Params["token"])

	// Failed builds are not cached: a later declaration fixes the type.
	u.Struct("shop.Missing")
	_, err = reg.New("shop.Broken")
	require.NoError(t, err)
}

func TestSchema_UnknownStructAndAncestor(t *testing.T) {
	u := newShop()
	u.Struct("shop.Orphan").Extends("shop.Nowhere")
	reg := gostruct.NewRegistry(u)
	_, err := reg.New("shop.Nope")
	assert.True(t, errors.Is(err, gostruct.ErrSchema))
	_, err = reg.New("shop.Orphan")
	assert.True(t, errors.Is(err, gostruct.ErrSchema))
}

func TestSchema_InvalidDefaultIsFatal(t *testing.T) {
	u := newShop()
	u.Struct("shop.BadDefault").Property("n", "integer").Default("n", "ten")
	u.Struct("shop.BadEnumDefault").Property("s", "Status").Default("s", "bogus")
	u.Struct("shop.BadStructDefault").Property("c", "Child").Default("c", map[string]any{})
	reg := gostruct.NewRegistry(u)

	for _, name := range []string{"shop.BadDefault", "shop.BadEnumDefault", "shop.BadStructDefault"} {
		_, err := reg.New(name)
		require.Error(t, err, name)
		assert.Equal(t, gostruct.CodeInvalidDefault, issueCode(t, err), name)
	}
}

func TestDefaults_SeedSetAndDirty(t *testing.T) {
	reg := newRegistry()
	s := mustNew(t, reg, "shop.Simple")

	p, err := s.GetProperty("default")
	require.NoError(t, err)
	assert.True(t, p.HasDefaultValue())
	assert.Equal(t, "default value", p.DefaultValue())
	assert.True(t, p.IsSet())
	assert.True(t, p.IsDirty())
	assert.Equal(t, "default value", s.MustGet("default"))

	p, err = s.GetProperty("string")
	require.NoError(t, err)
	assert.False(t, p.HasDefaultValue())
	assert.Nil(t, p.DefaultValue())
}

func TestDefaults_EnumDefaultIsWrapped(t *testing.T) {
	u := newShop()
	u.Struct("shop.Ticket").Property("status", "Status").Default("status", "open")
	reg := gostruct.NewRegistry(u)

	a := mustNew(t, reg, "shop.Ticket")
	b := mustNew(t, reg, "shop.Ticket")
	ea, err := gostruct.GetAs[*gostruct.Enum](a, "status")
	require.NoError(t, err)
	eb, err := gostruct.GetAs[*gostruct.Enum](b, "status")
	require.NoError(t, err)
	assert.NotSame(t, ea, eb)
	assert.True(t, ea.IsDirty())

	require.NoError(t, ea.SetValue("closed"))
	v, _ := eb.Value()
	assert.Equal(t, "open", v)
}

func TestInstances_DoNotShareState(t *testing.T) {
	reg := newRegistry()
	a := mustNew(t, reg, "shop.Simple")
	require.NoError(t, a.Set("array", []any{1, 2}))
	require.NoError(t, a.Set("default", "changed"))

	b := mustNew(t, reg, "shop.Simple")
	set, err := b.IsSet("array")
	require.NoError(t, err)
	assert.False(t, set)
	assert.Equal(t, "default value", b.MustGet("default"))

	props, err := reg.Schema("shop.Simple")
	require.NoError(t, err)
	assert.Equal(t, "default value", props[7].Value())
}

func TestInstances_DoNotShareTypedDefaults(t *testing.T) {
	u := gostruct.NewUniverse()
	u.Struct("shop.Tagged").
		Property("tags", "array").
		Property("meta", "mixed").
		Default("tags", []string{"a"}).
		Default("meta", map[string]string{"k": "v"})
	reg := gostruct.NewRegistry(u)

	a := mustNew(t, reg, "shop.Tagged")
	a.MustGet("tags").([]string)[0] = "changed"
	a.MustGet("meta").(map[string]string)["k"] = "changed"

	b := mustNew(t, reg, "shop.Tagged")
	assert.Equal(t, []string{"a"}, b.MustGet("tags"))
	assert.Equal(t, map[string]string{"k": "v"}, b.MustGet("meta"))

	props, err := reg.Schema("shop.Tagged")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, props[0].Value())
	assert.Equal(t, map[string]string{"k": "v"}, props[1].Value())
}

func TestStructNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{
		"shop.Animal", "shop.BadCage", "shop.Cage", "shop.Child", "shop.Dog", "shop.DogCage",
		"shop.Grand", "shop.Mid", "shop.Order", "shop.Parent", "shop.Root", "shop.Simple",
	}, newShop().StructNames())
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	reg := newRegistry()
	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := reg.New("shop.Parent")
			if err == nil {
				err = s.Set("child", nil)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEmptyStruct(t *testing.T) {
	u := gostruct.NewUniverse()
	u.Struct("Empty")
	reg := gostruct.NewRegistry(u)
	s := mustNew(t, reg, "Empty")
	assert.Empty(t, s.GetProperties())
	assert.False(t, s.IsDirty())
	b, err := s.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}
