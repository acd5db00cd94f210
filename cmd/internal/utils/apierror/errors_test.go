package apierror

import (
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Email string `validate:"required,email"`
	Name  string `validate:"min=3"`
}

func TestFromValidationError(t *testing.T) {
	err := validator.New().Struct(&payload{Name: "ab"})
	require.Error(t, err)

	se := FromValidationError(err)
	assert.Equal(t, http.StatusBadRequest, se.Code())
	assert.Equal(t, []string{"This field is required"}, se.Errors["email"])
	assert.Equal(t, []string{"Value is too short, min: 3"}, se.Errors["name"])
}

func TestFromValidationErrorWithForeignError(t *testing.T) {
	se := FromValidationError(assert.AnError)
	assert.Contains(t, se.Errors, "body")
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "Missing required permission: 4", NewPermissionError(4).Message)
	assert.Equal(t, http.StatusForbidden, NewPermissionError(4).Code())
	assert.Equal(t, "Missing required parameter 'id'", NewMissingParamError("id").Message)

	d := NewDispatchError([]string{"u1"})
	assert.Equal(t, http.StatusBadGateway, d.Code())
	assert.Equal(t, []string{"u1"}, d.Failed)

	s := NewStructured(http.StatusConflict)
	s.Add("field", "problem")
	assert.Equal(t, []string{"problem"}, s.Errors["field"])
}
