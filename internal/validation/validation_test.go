package validation_test

import (
	"testing"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string `json:"title" validate:"min=5,max=200" message:"Title must be between 5 and 200 characters"`
	Email    string `json:"email" validate:"required,email"`
	Category string `form:"category" validate:"oneof=electrical plumbing cleaning other"`
	Password string `json:"password" validate:"min=6"`
}

func TestStruct_Valid(t *testing.T) {
	err := validation.Struct(&sample{Title: "Leaking tap", Email: "a@b.co", Category: "plumbing", Password: "secret1"})
	assert.NoError(t, err)
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := validation.Struct(sample{Title: "tap", Email: "nope", Category: "carpentry", Password: "123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	fields := apperr.FieldsOf(err)
	require.Len(t, fields, 4)
	assert.Equal(t, apperr.FieldError{Field: "title", Message: "Title must be between 5 and 200 characters"}, fields[0])
	assert.Equal(t, "email", fields[1].Field)
	assert.Equal(t, "Please enter a valid email", fields[1].Message)
	assert.Equal(t, "category", fields[2].Field)
	assert.Equal(t, "category must be one of: electrical, plumbing, cleaning, other", fields[2].Message)
	assert.Equal(t, "password must be at least 6 characters", fields[3].Message)
}

func TestStruct_OneMessagePerField(t *testing.T) {
	err := validation.Struct(sample{Title: "Leaking tap", Email: "", Category: "other", Password: "secret1"})
	require.Error(t, err)

	fields := apperr.FieldsOf(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "email is required", fields[0].Message)
}
