package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/uploads"
)

// multipartOverhead leaves room for form fields and part headers next to the file.
const multipartOverhead = 1 << 20

func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Uploads.MaxBytes+multipartOverhead)
}

// discardUpload removes a file saved for a request that failed afterwards.
func (h *Handler) discardUpload(c *gin.Context, name string) {
	if err := h.Uploads.Delete(c.Request.Context(), name); err != nil {
		h.log.Warn("failed to remove orphaned upload", "file", name, "error", err)
	}
}

func bodyError() error {
	return apperr.Validation(apperr.FieldError{Field: "body", Message: "Malformed request body"})
}

// ServeUpload streams a stored photo.
func (h *Handler) ServeUpload(c *gin.Context) {
	rc, obj, err := h.Uploads.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			h.fail(c, apperr.NotFound("File not found"))
			return
		}
		h.fail(c, apperr.Internal(err))
		return
	}
	defer rc.Close()

	headers := map[string]string{
		"Cache-Control":          "public, max-age=86400",
		"X-Content-Type-Options": "nosniff",
	}
	if !obj.ModTime.IsZero() {
		headers["Last-Modified"] = obj.ModTime.UTC().Format(http.TimeFormat)
	}
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, rc, headers)
}
