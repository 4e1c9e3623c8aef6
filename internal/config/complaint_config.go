package config

import "time"

const (
	// Pagination
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// Auth
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "hostelfix"
	MinPasswordLen  = 6

	// User fields
	NameMinLen       = 2
	NameMaxLen       = 100
	HostelCodeMinLen = 2
	HostelCodeMaxLen = 10
	HostelNameMinLen = 2
	HostelNameMaxLen = 100

	// Complaint fields
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 1000

	// Uploads
	DefaultUploadMaxBytes = 5 << 20
	PhotoPrefix           = "photo"
	ComplaintPhotoPrefix  = "complaint"
)

// AllowedPhotoExtensions are matched against the lower-cased file extension.
var AllowedPhotoExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// AllowedPhotoContentTypes are matched against the declared part content type.
var AllowedPhotoContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// Demo accounts seeded by create-demo / admin seed-demo.
const (
	DemoHostelCode      = "HST001"
	DemoHostelName      = "Demo Hostel"
	DemoStudentName     = "John Student"
	DemoStudentEmail    = "john.student@example.com"
	DemoStudentPassword = "password123"
	DemoAdminName       = "Admin User"
	DemoAdminEmail      = "admin@hostel.com"
	DemoAdminPassword   = "admin123"
)
