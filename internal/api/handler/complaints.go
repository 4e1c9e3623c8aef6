package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelfix/backend/internal/complaint"
	"hostelfix/backend/internal/config"
)

// CreateComplaint accepts multipart (with an optional "problemPhoto" file)
// or a JSON body.
func (h *Handler) CreateComplaint(c *gin.Context) {
	h.limitBody(c)

	var in complaint.CreateInput
	if err := c.ShouldBind(&in); err != nil && !errors.Is(err, io.EOF) {
		if tooLarge(err) {
			h.fail(c, h.Uploads.TooLarge())
			return
		}
		h.fail(c, bodyError())
		return
	}

	// фото береться лише з завантаженого файлу
	in.Photo = nil

	ctx := c.Request.Context()
	var saved string
	fh, err := c.FormFile("problemPhoto")
	switch {
	case err == nil:
		saved, err = h.Uploads.Save(ctx, fh, config.ComplaintPhotoPrefix)
		if err != nil {
			h.fail(c, err)
			return
		}
		in.Photo = &saved
	case tooLarge(err):
		h.fail(c, h.Uploads.TooLarge())
		return
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.fail(c, bodyError())
		return
	}

	view, err := h.Complaints.Create(ctx, identity(c), in)
	if err != nil {
		if saved != "" {
			h.discardUpload(c, saved)
		}
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Complaint submitted successfully", gin.H{"complaint": view})
}

func listQuery(c *gin.Context) complaint.ListQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return complaint.ListQuery{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}
}

// MyComplaints lists the student's own complaints.
func (h *Handler) MyComplaints(c *gin.Context) {
	res, err := h.Complaints.ListMine(c.Request.Context(), identity(c), listQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{
		"complaints": res.Complaints,
		"pagination": res.Pagination,
	})
}

// AllComplaints lists the admin's hostel with hostel-wide statistics.
func (h *Handler) AllComplaints(c *gin.Context) {
	res, err := h.Complaints.ListAll(c.Request.Context(), identity(c), listQuery(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{
		"complaints": res.Complaints,
		"statistics": res.Statistics,
		"pagination": res.Pagination,
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	view, err := h.Complaints.UpdateStatus(c.Request.Context(), identity(c), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Complaint status updated successfully", gin.H{"complaint": view})
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Complaints.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Complaint deleted successfully", nil)
}
