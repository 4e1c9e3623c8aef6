// Package complaint holds the complaint lifecycle: filing by students,
// listing for students and hostel admins, status triage and deletion.
package complaint

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"
	"hostelfix/backend/internal/validation"

	"github.com/google/uuid"
)

const (
	msgNotFound      = "Complaint not found"
	msgInvalidID     = "Invalid complaint ID"
	msgInvalidStatus = "Status must be one of: pending, in progress, resolved"
)

// Publisher receives an event after each successful mutation.
type Publisher interface {
	Publish(ctx context.Context, event models.ComplaintEvent) error
}

// PhotoRemover deletes stored photo files by reference.
type PhotoRemover interface {
	Delete(ctx context.Context, name string) error
}

type CreateInput struct {
	Title       string  `form:"title" json:"title" validate:"min=5,max=200" message:"Title must be between 5 and 200 characters"`
	Description string  `form:"description" json:"description" validate:"min=10,max=1000" message:"Description must be between 10 and 1000 characters"`
	Category    string  `form:"category" json:"category" validate:"oneof=electrical plumbing cleaning other" message:"Category must be one of: electrical, plumbing, cleaning, other"`
	Photo       *string `form:"-" json:"-"`
}

func (in *CreateInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
}

// ListQuery is a page request with optional equality filters.
type ListQuery struct {
	Status   string
	Category string
	Page     int
	Limit    int
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxLimit, and caps
// page so the skip offset cannot overflow.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = config.DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = config.DefaultLimit
	}
	if q.Limit > config.MaxLimit {
		q.Limit = config.MaxLimit
	}
	if q.Page > math.MaxInt/q.Limit {
		q.Page = math.MaxInt / q.Limit
	}
	return q
}

func (q ListQuery) skip() int {
	return (q.Page - 1) * q.Limit
}

type ListResult struct {
	Complaints []models.ComplaintView `json:"complaints"`
	Statistics *models.Statistics     `json:"statistics,omitempty"`
	Pagination models.Pagination      `json:"pagination"`
}

// Options toggles behaviour that is off by default.
type Options struct {
	// StrictScope makes update and delete of another hostel's complaint a NotFound.
	StrictScope bool
	// PurgePhotos removes a complaint's photo file when it is deleted.
	PurgePhotos bool
}

// Service handles the business logic for complaints.
type Service struct {
	Complaints storage.ComplaintStore
	Users      storage.UserStore
	Photos     PhotoRemover
	publishers []Publisher
	opts       Options
	now        func() time.Time
	log        *slog.Logger
}

// NewService creates a new complaint service.
func NewService(complaints storage.ComplaintStore, users storage.UserStore, photos PhotoRemover, opts Options, logger *slog.Logger, publishers ...Publisher) *Service {
	return &Service{
		Complaints: complaints,
		Users:      users,
		Photos:     photos,
		publishers: publishers,
		opts:       opts,
		now:        time.Now,
		log:        logging.Component(logger, "complaint"),
	}
}

// Create files a complaint for the submitting student. The hostel code is
// copied from the submitter.
func (s *Service) Create(ctx context.Context, by *auth.Identity, in CreateInput) (*models.ComplaintView, error) {
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	c := &models.Complaint{
		UserID:      by.UserID,
		HostelCode:  by.HostelCode,
		Title:       in.Title,
		Description: in.Description,
		Category:    models.Category(in.Category),
		Photo:       in.Photo,
		Status:      models.StatusPending,
	}
	c.Prepare(s.now())

	if err := s.Complaints.CreateComplaint(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("complaint created", "complaint_id", c.ID, "hostel", c.HostelCode, "category", c.Category)
	s.publish(ctx, models.EventCreated, c)

	views, err := s.enrich(ctx, []models.Complaint{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListMine lists the caller's own complaints.
func (s *Service) ListMine(ctx context.Context, by *auth.Identity, q ListQuery) (*ListResult, error) {
	q = q.Normalize()
	filter := storage.ComplaintFilter{
		UserID:   by.UserID,
		Status:   models.Status(q.Status),
		Category: models.Category(q.Category),
	}

	complaints, total, err := s.Complaints.ListComplaints(ctx, filter, storage.Page{Skip: q.skip(), Limit: q.Limit})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views, err := s.enrich(ctx, complaints)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Complaints: views,
		Pagination: models.NewPagination(q.Page, q.Limit, len(views), total),
	}, nil
}

// ListAll lists the complaints of the caller's hostel. Statistics are
// always the unfiltered hostel-wide counts.
func (s *Service) ListAll(ctx context.Context, by *auth.Identity, q ListQuery) (*ListResult, error) {
	q = q.Normalize()
	filter := storage.ComplaintFilter{
		HostelCode: by.HostelCode,
		Status:     models.Status(q.Status),
		Category:   models.Category(q.Category),
	}

	complaints, total, err := s.Complaints.ListComplaints(ctx, filter, storage.Page{Skip: q.skip(), Limit: q.Limit})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	counts, err := s.Complaints.CountComplaintsByStatus(ctx, by.HostelCode)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	stats := models.StatisticsFromCounts(counts)

	views, err := s.enrich(ctx, complaints)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Complaints: views,
		Statistics: &stats,
		Pagination: models.NewPagination(q.Page, q.Limit, len(views), total),
	}, nil
}

// Statistics returns the per-status counts of one hostel.
func (s *Service) Statistics(ctx context.Context, hostelCode string) (models.Statistics, error) {
	counts, err := s.Complaints.CountComplaintsByStatus(ctx, models.NormalizeHostelCode(hostelCode))
	if err != nil {
		return models.Statistics{}, apperr.Internal(err)
	}
	return models.StatisticsFromCounts(counts), nil
}

// UpdateStatus sets a new status. updatedAt always moves forward.
func (s *Service) UpdateStatus(ctx context.Context, by *auth.Identity, id string, status string) (*models.ComplaintView, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	next := models.Status(status)
	if !next.Valid() {
		return nil, apperr.New(apperr.KindInvalidStatus, msgInvalidStatus)
	}

	current, err := s.load(ctx, by, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.Complaints.UpdateComplaintStatus(ctx, id, next, models.NextUpdatedAt(current.UpdatedAt, s.now()))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info("complaint status updated", "complaint_id", id, "from", current.Status, "to", updated.Status, "by", by.UserID)
	s.publish(ctx, models.EventStatusUpdated, updated)

	views, err := s.enrich(ctx, []models.Complaint{*updated})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a complaint permanently.
func (s *Service) Delete(ctx context.Context, by *auth.Identity, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if s.opts.StrictScope {
		if _, err := s.load(ctx, by, id); err != nil {
			return err
		}
	}

	removed, err := s.Complaints.DeleteComplaint(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		return apperr.Internal(err)
	}

	if s.opts.PurgePhotos && removed.Photo != nil && *removed.Photo != "" && s.Photos != nil {
		if err := s.Photos.Delete(ctx, *removed.Photo); err != nil {
			s.log.Warn("failed to delete complaint photo", "complaint_id", id, "photo", *removed.Photo, "error", err)
		}
	}

	s.log.Info("complaint deleted", "complaint_id", id, "by", by.UserID)
	s.publish(ctx, models.EventDeleted, removed)
	return nil
}

// load fetches a complaint, hiding other hostels' complaints under StrictScope.
func (s *Service) load(ctx context.Context, by *auth.Identity, id string) (*models.Complaint, error) {
	c, err := s.Complaints.GetComplaint(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}
		return nil, apperr.Internal(err)
	}
	if s.opts.StrictScope && c.HostelCode != by.HostelCode {
		return nil, apperr.NotFound(msgNotFound)
	}
	return c, nil
}

// enrich attaches the submitter's name and email to each complaint.
func (s *Service) enrich(ctx context.Context, complaints []models.Complaint) ([]models.ComplaintView, error) {
	ids := make([]string, len(complaints))
	for i, c := range complaints {
		ids[i] = c.UserID
	}

	summaries, err := s.Users.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	views := make([]models.ComplaintView, len(complaints))
	for i, c := range complaints {
		var owner *models.UserSummary
		if sum, ok := summaries[c.UserID]; ok {
			owner = &sum
		}
		views[i] = models.NewComplaintView(c, owner)
	}
	return views, nil
}

func (s *Service) publish(ctx context.Context, t models.EventType, c *models.Complaint) {
	if len(s.publishers) == 0 {
		return
	}
	event := models.NewComplaintEvent(t, c, s.now())
	for _, p := range s.publishers {
		if err := p.Publish(ctx, event); err != nil {
			s.log.Warn("failed to publish complaint event", "type", t, "complaint_id", c.ID, "error", err)
		}
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation(apperr.FieldError{Field: "id", Message: msgInvalidID})
	}
	return nil
}
