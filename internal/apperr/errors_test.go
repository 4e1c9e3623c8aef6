package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"hostelfix/backend/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{apperr.Validation(apperr.FieldError{Field: "title", Message: "too short"}), http.StatusBadRequest},
		{apperr.New(apperr.KindDuplicateEmail, "User already exists with this email"), http.StatusBadRequest},
		{apperr.New(apperr.KindInvalidCredentials, "Invalid credentials"), http.StatusBadRequest},
		{apperr.New(apperr.KindInvalidStatus, "Invalid status"), http.StatusBadRequest},
		{apperr.New(apperr.KindUploadTooLarge, "File too large"), http.StatusBadRequest},
		{apperr.New(apperr.KindUploadBadType, "Only image files are allowed"), http.StatusBadRequest},
		{apperr.New(apperr.KindTokenMissing, "No token"), http.StatusUnauthorized},
		{apperr.New(apperr.KindTokenInvalid, "Token is not valid"), http.StatusUnauthorized},
		{apperr.Forbidden("Access denied"), http.StatusForbidden},
		{apperr.NotFound("Complaint not found"), http.StatusNotFound},
		{apperr.New(apperr.KindRateLimited, "Too many requests"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
		{apperr.Internal(errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err))
		})
	}
}

func TestErrorsIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", apperr.NotFound("Complaint not found"))

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrForbidden))
}

func TestPublicMessage_HidesInternal(t *testing.T) {
	assert.Equal(t, "Server error", apperr.PublicMessage(apperr.Internal(errors.New("connection refused"))))
	assert.Equal(t, "Server error", apperr.PublicMessage(errors.New("raw")))
	assert.Equal(t, "Complaint not found", apperr.PublicMessage(apperr.NotFound("Complaint not found")))
}

func TestFieldsOf(t *testing.T) {
	err := apperr.Validation(
		apperr.FieldError{Field: "title", Message: "a"},
		apperr.FieldError{Field: "category", Message: "b"},
	)
	assert.Len(t, apperr.FieldsOf(err), 2)
	assert.Nil(t, apperr.FieldsOf(errors.New("x")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := apperr.Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
