package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/models"
)

// Register creates a student account.
func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	session, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Registration successful", gin.H{"token": session.Token, "user": session.User})
}

func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	session, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Login successful", gin.H{"token": session.Token, "user": session.User})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.Auth.Me(c.Request.Context(), identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"user": user})
}

// UpdatePhoto replaces the caller's profile photo with the multipart file "photo".
func (h *Handler) UpdatePhoto(c *gin.Context) {
	h.limitBody(c)
	fh, err := c.FormFile("photo")
	if err != nil {
		if tooLarge(err) {
			h.fail(c, h.Uploads.TooLarge())
			return
		}
		h.fail(c, apperr.New(apperr.KindValidation, "No photo uploaded"))
		return
	}

	ctx := c.Request.Context()
	name, err := h.Uploads.Save(ctx, fh, config.PhotoPrefix)
	if err != nil {
		h.fail(c, err)
		return
	}

	photo, err := h.Auth.UpdatePhoto(ctx, identity(c), name)
	if err != nil {
		h.discardUpload(c, name)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Photo updated successfully", gin.H{"photo": photo})
}

// ListUsers returns the students of the admin's hostel.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Auth.ListStudents(c.Request.Context(), identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	ok(c, http.StatusOK, "", gin.H{"users": users})
}

// CreateDemo seeds the demo accounts. Refused in production.
func (h *Handler) CreateDemo(c *gin.Context) {
	if h.Env == config.EnvProduction {
		h.fail(c, apperr.Forbidden("Not allowed in production"))
		return
	}
	created, err := h.Auth.SeedDemo(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Demo users created", gin.H{"created": created})
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
