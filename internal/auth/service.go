// Package auth registers and authenticates users and issues session tokens.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/config"
	"hostelfix/backend/internal/logging"
	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"
	"hostelfix/backend/internal/validation"
)

const invalidCredentials = "Invalid email or password"

// PhotoRemover deletes stored photo files by reference.
type PhotoRemover interface {
	Delete(ctx context.Context, name string) error
}

type RegisterInput struct {
	Name       string `json:"name" validate:"min=2,max=100" message:"Name must be between 2 and 100 characters"`
	Email      string `json:"email" validate:"required,email" message:"Please enter a valid email"`
	Password   string `json:"password" validate:"min=6,max=72" message:"Password must be between 6 and 72 characters"`
	HostelCode string `json:"hostelCode" validate:"min=2,max=10" message:"Hostel code must be between 2 and 10 characters"`
	HostelName string `json:"hostelName" validate:"min=2,max=100" message:"Hostel name must be between 2 and 100 characters"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	in.HostelCode = models.NormalizeHostelCode(in.HostelCode)
	in.HostelName = strings.TrimSpace(in.HostelName)
}

type LoginInput struct {
	Email      string `json:"email" validate:"required,email" message:"Please enter a valid email"`
	Password   string `json:"password" validate:"required" message:"Password is required"`
	HostelCode string `json:"hostelCode" validate:"min=2,max=10" message:"Hostel code must be between 2 and 10 characters"`
}

func (in *LoginInput) normalize() {
	in.Email = models.NormalizeEmail(in.Email)
	in.HostelCode = models.NormalizeHostelCode(in.HostelCode)
}

// Session is the result of register and login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	Users  storage.UserStore
	Tokens *Tokens
	Hasher Hasher
	Photos PhotoRemover
	log    *slog.Logger
}

func NewService(users storage.UserStore, tokens *Tokens, hasher Hasher, photos PhotoRemover, logger *slog.Logger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{
		Users:  users,
		Tokens: tokens,
		Hasher: hasher,
		Photos: photos,
		log:    logging.Component(logger, "auth"),
	}
}

// Register creates a student account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	user, err := s.CreateAccount(ctx, in, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	return s.session(user)
}

// CreateAccount validates and stores a new account with the given role.
// Role never changes afterwards.
func (s *Service) CreateAccount(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Validation(apperr.FieldError{Field: "role", Message: "Role must be either student or admin"})
	}

	if _, err := s.Users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, duplicateEmail()
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   hash,
		Role:       role,
		HostelCode: in.HostelCode,
		HostelName: in.HostelName,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, duplicateEmail()
		}
		return nil, apperr.Internal(err)
	}

	s.log.Info("user registered", "user_id", user.ID, "role", user.Role, "hostel", user.HostelCode)
	return user, nil
}

// Login does not tell an unknown account apart from a wrong password.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.normalize()
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	user, err := s.Users.GetUserByEmailAndHostel(ctx, in.Email, in.HostelCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.KindInvalidCredentials, invalidCredentials)
		}
		return nil, apperr.Internal(err)
	}
	if !s.Hasher.Compare(user.Password, in.Password) {
		return nil, apperr.New(apperr.KindInvalidCredentials, invalidCredentials)
	}

	return s.session(user)
}

// VerifyToken checks a raw bearer token.
func (s *Service) VerifyToken(raw string) (*Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperr.New(apperr.KindTokenMissing, "No token, authorization denied")
	}
	id, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindTokenInvalid, "Token is not valid", err)
	}
	return id, nil
}

// RequireRole fails with Forbidden unless the identity has the role.
func RequireRole(id *Identity, role models.Role) error {
	if id == nil {
		return apperr.New(apperr.KindTokenMissing, "No token, authorization denied")
	}
	if id.Role != role {
		switch role {
		case models.RoleAdmin:
			return apperr.Forbidden("Access denied. Admin privileges required.")
		case models.RoleStudent:
			return apperr.Forbidden("Access denied. Student access only.")
		}
		return apperr.Forbidden("Access denied")
	}
	return nil
}

// Me returns the current account without the password hash.
func (s *Service) Me(ctx context.Context, id *Identity) (*models.User, error) {
	user, err := s.Users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	return sanitize(user), nil
}

// UpdatePhoto stores a new photo reference and removes the old file.
// Removing the old file is best-effort.
func (s *Service) UpdatePhoto(ctx context.Context, id *Identity, photo string) (string, error) {
	prev, err := s.Users.UpdateUserPhoto(ctx, id.UserID, &photo)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", apperr.NotFound("User not found")
		}
		return "", apperr.Internal(err)
	}

	if prev != nil && *prev != "" && *prev != photo && s.Photos != nil {
		if err := s.Photos.Delete(ctx, *prev); err != nil {
			s.log.Warn("failed to delete old photo", "user_id", id.UserID, "photo", *prev, "error", err)
		}
	}
	return photo, nil
}

// ListStudents returns the students of the caller's hostel.
func (s *Service) ListStudents(ctx context.Context, id *Identity) ([]models.User, error) {
	users, err := s.Users.ListUsers(ctx, storage.UserFilter{HostelCode: id.HostelCode, Role: models.RoleStudent})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// SeedDemo creates the demo student and admin when absent and reports how many were created.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	demo := []struct {
		in   RegisterInput
		role models.Role
	}{
		{RegisterInput{
			Name:       config.DemoStudentName,
			Email:      config.DemoStudentEmail,
			Password:   config.DemoStudentPassword,
			HostelCode: config.DemoHostelCode,
			HostelName: config.DemoHostelName,
		}, models.RoleStudent},
		{RegisterInput{
			Name:       config.DemoAdminName,
			Email:      config.DemoAdminEmail,
			Password:   config.DemoAdminPassword,
			HostelCode: config.DemoHostelCode,
			HostelName: config.DemoHostelName,
		}, models.RoleAdmin},
	}

	created := 0
	for _, d := range demo {
		_, err := s.CreateAccount(ctx, d.in, d.role)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperr.ErrDuplicateEmail):
		default:
			return created, err
		}
	}
	return created, nil
}

func (s *Service) session(user *models.User) (*Session, error) {
	token, err := s.Tokens.Issue(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, User: sanitize(user)}, nil
}

func sanitize(u *models.User) *models.User {
	out := *u
	out.Password = ""
	return &out
}

func duplicateEmail() error {
	return apperr.New(apperr.KindDuplicateEmail, "User already exists with this email")
}
