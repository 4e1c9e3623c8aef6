package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/models"
)

const identityKey = "identity"

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Authenticate verifies the bearer token and stores the identity on the context.
// With allowQuery the token may also come from the "token" query parameter.
func (h *Handler) Authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" && allowQuery {
			raw = c.Query("token")
		}
		id, err := h.Auth.VerifyToken(raw)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (h *Handler) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireRole(identity(c), role); err != nil {
			h.fail(c, err)
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}

// Recovery turns a panic into the 500 envelope.
func (h *Handler) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.log.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		body := gin.H{"success": false, "message": "Something went wrong!"}
		if h.development() {
			body["error"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// NoRoute answers unknown /api paths with a JSON 404.
func (h *Handler) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "API route not found"})
		return
	}
	h.fail(c, apperr.NotFound("Not found"))
}
