package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is a student or hostel admin account.
// Password holds the bcrypt hash and never leaves the server.
type User struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name       string    `gorm:"size:100;not null" bson:"name" json:"name"`
	Email      string    `gorm:"size:254;uniqueIndex;not null" bson:"email" json:"email"`
	Password   string    `gorm:"not null" bson:"password" json:"-"`
	Role       Role      `gorm:"size:16;not null;default:student;index:idx_users_hostel_role,priority:2" bson:"role" json:"role"`
	HostelCode string    `gorm:"size:10;not null;index;index:idx_users_hostel_role,priority:1" bson:"hostelCode" json:"hostelCode"`
	HostelName string    `gorm:"size:100;not null" bson:"hostelName" json:"hostelName"`
	Photo      *string   `bson:"photo" json:"photo"`
	CreatedAt  time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
}

// BeforeCreate: GORM хук: генерує UUID, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.Prepare(time.Now())
	return
}

// Prepare fills the store-assigned fields that are still empty.
func (u *User) Prepare(now time.Time) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now.UTC().Truncate(time.Millisecond)
	}
}

// Summary is the read-only name/email join attached to complaints.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the populated form of Complaint.UserID.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeHostelCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
