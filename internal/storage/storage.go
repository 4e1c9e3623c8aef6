// Package storage defines the persistence contracts for users and complaints.
// Drivers live in the mongostore, sqlstore and memstore subpackages.
package storage

import (
	"context"
	"errors"
	"time"

	"hostelfix/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("storage: not found")
	ErrDuplicate = errors.New("storage: duplicate key")
)

// UserFilter narrows ListUsers; zero fields are ignored.
type UserFilter struct {
	HostelCode string
	Role       models.Role
}

// ComplaintFilter narrows ListComplaints. Non-empty fields are ANDed
// and compared by equality.
type ComplaintFilter struct {
	UserID     string
	HostelCode string
	Status     models.Status
	Category   models.Category
}

// Page is an offset window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// UserStore is the credential store.
type UserStore interface {
	// CreateUser returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByEmailAndHostel(ctx context.Context, email, hostelCode string) (*models.User, error)
	// UpdateUserPhoto sets the photo reference and returns the previous one.
	UpdateUserPhoto(ctx context.Context, id string, photo *string) (*string, error)
	// ListUsers returns matching users, newest first.
	ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error)
	// GetUserSummaries returns summaries keyed by id; unknown ids are absent.
	GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
}

// ComplaintStore persists complaints.
type ComplaintStore interface {
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	// ListComplaints returns one page ordered by createdAt descending and
	// the total number of matches.
	ListComplaints(ctx context.Context, filter ComplaintFilter, page Page) ([]models.Complaint, int64, error)
	// CountComplaintsByStatus aggregates all complaints of a hostel.
	CountComplaintsByStatus(ctx context.Context, hostelCode string) (map[models.Status]int64, error)
	// UpdateComplaintStatus atomically sets status and updatedAt, returning the new document.
	UpdateComplaintStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) (*models.Complaint, error)
	// DeleteComplaint removes the complaint and returns what was removed.
	DeleteComplaint(ctx context.Context, id string) (*models.Complaint, error)
}

// Store is a complete driver.
type Store interface {
	UserStore
	ComplaintStore
	Ping(ctx context.Context) error
	Close() error
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
