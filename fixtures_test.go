package gostruct_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/gostruct"
)

// newShop declares the shared test universe.
func newShop() *gostruct.Universe {
	u := gostruct.NewUniverse()
	u.Enum("shop.Status", gostruct.Const("OPEN", "open"), gostruct.Const("CLOSED", "closed"))
	u.Enum("shop.Level", gostruct.Const("LOW", 1), gostruct.Const("HIGH", 2), gostruct.Const("NONE", nil))

	u.Struct("shop.Child").Property("value1", "string").Property("value2", "string")
	u.Struct("shop.Parent").Property("child", "Child").Property("childs", "Child[]")

	u.Struct("shop.Simple").
		Property("bool", "bool").
		Property("int", "int").
		Property("float", "float").
		Property("string", "string").
		Property("array", "array").
		Property("mixed", "mixed").
		Property("callable", "callable").
		Property("default", "string").
		Default("default", "default value")

	u.Struct("shop.Grand").Property("x", "integer")
	u.Struct("shop.Mid").Property("grand", "Grand").Property("n", "integer")
	u.Struct("shop.Root").Property("mid", "Mid")

	u.Struct("shop.Order").
		Property("status", "Status").
		Property("statuses", "Status[]").
		Property("level", "Level").
		Property("at", "time.Time").
		Property("id", "uuid.UUID").
		Property("tags", "string[]").
		Setter("withStatus", "tags")

	u.Struct("shop.Animal").Property("name", "string")
	u.Struct("shop.Dog").Extends("shop.Animal").Property("bark", "bool")
	u.Struct("shop.Cage").Property("pet", "Animal").Property("size", "integer")
	u.Struct("shop.DogCage").Extends("shop.Cage").Property("pet", "Dog")
	u.Struct("shop.BadCage").Extends("shop.Cage").Property("size", "string")
	return u
}

func newRegistry(opts ...gostruct.Option) *gostruct.Registry {
	return gostruct.NewRegistry(newShop(), opts...)
}

func mustNew(t *testing.T, reg *gostruct.Registry, typeName string) *gostruct.Struct {
	t.Helper()
	s, err := reg.New(typeName)
	require.NoError(t, err)
	return s
}

func child(t *testing.T, s *gostruct.Struct, name string) *gostruct.Struct {
	t.Helper()
	c, err := gostruct.GetAs[*gostruct.Struct](s, name)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func issueCode(t *testing.T, err error) string {
	t.Helper()
	iss, ok := gostruct.AsIssues(err)
	require.True(t, ok, "expected Issues, got %T %v", err, err)
	require.NotEmpty(t, iss)
	return iss[0].Code
}
