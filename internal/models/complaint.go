package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryElectrical Category = "electrical"
	CategoryPlumbing   Category = "plumbing"
	CategoryCleaning   Category = "cleaning"
	CategoryOther      Category = "other"
)

var Categories = []Category{CategoryElectrical, CategoryPlumbing, CategoryCleaning, CategoryOther}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in progress"
	StatusResolved   Status = "resolved"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Complaint is a maintenance issue filed by a student.
// HostelCode is copied from the submitter and never changes.
type Complaint struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID      string    `gorm:"type:varchar(36);not null;index" bson:"userId" json:"userId"`
	HostelCode  string    `gorm:"size:10;not null;index;index:idx_complaints_hostel_status,priority:1" bson:"hostelCode" json:"hostelCode"`
	Title       string    `gorm:"size:200;not null" bson:"title" json:"title"`
	Description string    `gorm:"size:1000;not null" bson:"description" json:"description"`
	Category    Category  `gorm:"size:16;not null;index" bson:"category" json:"category"`
	Photo       *string   `bson:"photo" json:"photo"`
	Status      Status    `gorm:"size:16;not null;default:pending;index;index:idx_complaints_hostel_status,priority:2" bson:"status" json:"status"`
	CreatedAt   time.Time `gorm:"not null;index:,sort:desc" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	c.Prepare(time.Now())
	return
}

// Prepare assigns id, default status and timestamps when missing.
func (c *Complaint) Prepare(now time.Time) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	now = now.UTC().Truncate(time.Millisecond)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
}

// NextUpdatedAt returns a timestamp strictly after prev, normally now.
// Store timestamps have millisecond resolution.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = now.UTC().Truncate(time.Millisecond)
	if !now.After(prev) {
		return prev.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return now
}

// ComplaintView is a complaint with userId populated by the owner summary.
type ComplaintView struct {
	Complaint
	User *UserSummary `json:"userId"`
}

func NewComplaintView(c Complaint, owner *UserSummary) ComplaintView {
	if owner == nil {
		owner = &UserSummary{ID: c.UserID}
	}
	return ComplaintView{Complaint: c, User: owner}
}

// Statistics are the hostel-wide per-status counts.
type Statistics struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
}

// StatisticsFromCounts folds a status -> count map into Statistics.
func StatisticsFromCounts(counts map[Status]int64) Statistics {
	s := Statistics{
		Pending:    counts[StatusPending],
		InProgress: counts[StatusInProgress],
		Resolved:   counts[StatusResolved],
	}
	for _, n := range counts {
		s.Total += n
	}
	return s
}

type Pagination struct {
	Current         int   `json:"current"`
	Total           int   `json:"total"`
	Count           int   `json:"count"`
	TotalComplaints int64 `json:"totalComplaints"`
}

func NewPagination(page, limit, count int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Current: page, Total: pages, Count: count, TotalComplaints: total}
}
