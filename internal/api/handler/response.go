package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/apperr"
)

func ok(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail writes the error envelope. Internal causes are logged and only shown
// to clients in development.
func (h *Handler) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["errors"] = fields
	}

	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		if h.development() {
			body["error"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body. An empty body decodes to the zero value
// so that field validation can report every missing field.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.Validation(apperr.FieldError{Field: "body", Message: "Request body must be valid JSON"})
	}
	return nil
}
