package validate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gostruct"
	"github.com/reoring/gostruct/validate"
)

func newRegistry() *gostruct.Registry {
	u := gostruct.NewUniverse()
	u.Enum("crm.Tier", gostruct.Const("FREE", "free"), gostruct.Const("PAID", "paid"))
	u.Struct("crm.Address").Property("city", "string").Property("zip", "string")
	u.Struct("crm.Customer").
		Property("name", "string").
		Property("age", "integer").
		Property("tier", "Tier").
		Property("address", "Address").
		Property("previous", "Address[]").
		Property("since", "time.Time")
	return gostruct.NewRegistry(u)
}

func TestValidateJSON_Accepts(t *testing.T) {
	v, err := validate.New(newRegistry(), "crm.Customer")
	require.NoError(t, err)
	assert.Equal(t, "crm.Customer", v.TypeName())

	docs := []string{
		`{}`,
		`{"name":"Ada","age":36,"tier":"paid"}`,
		`{"address":{"city":"Tokyo"},"previous":[{"zip":"100"},null]}`,
		`{"previous":{"home":{"city":"Osaka"}},"since":"2024-01-02T03:04:05Z"}`,
		`{"name":null,"unknown":[1,2,3]}`,
	}
	for _, doc := range docs {
		assert.NoError(t, v.ValidateJSON([]byte(doc)), doc)
	}
}

func TestValidateJSON_Rejects(t *testing.T) {
	v, err := validate.New(newRegistry(), "crm.Customer")
	require.NoError(t, err)

	err = v.ValidateJSON([]byte(`{"age":"old"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gostruct.ErrTypeMismatch))
	iss, ok := gostruct.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/age", iss[0].Path)
	assert.Equal(t, "age", iss[0].Params["property"])
	assert.NotEmpty(t, iss[0].Message)

	err = v.ValidateJSON([]byte(`{"tier":"gold"}`))
	iss, _ = gostruct.AsIssues(err)
	require.NotEmpty(t, iss)
	assert.Equal(t, "/tier", iss[0].Path)

	err = v.ValidateJSON([]byte(`{"previous":[{"city":7}]}`))
	iss, _ = gostruct.AsIssues(err)
	require.NotEmpty(t, iss)
	assert.Equal(t, "/previous/0/city", iss[0].Path)
}

func TestValidateJSON_MalformedInput(t *testing.T) {
	v, err := validate.New(newRegistry(), "crm.Customer")
	require.NoError(t, err)
	for _, in := range []string{"", "{", "  "} {
		err := v.ValidateJSON([]byte(in))
		assert.True(t, errors.Is(err, gostruct.ErrJSON), in)
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := validate.New(newRegistry(), "crm.Nope")
	assert.True(t, errors.Is(err, gostruct.ErrSchema))
}
