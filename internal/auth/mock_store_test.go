package auth_test

import (
	"context"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetUserByEmailAndHostel(ctx context.Context, email, hostelCode string) (*models.User, error) {
	args := m.Called(ctx, email, hostelCode)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) UpdateUserPhoto(ctx context.Context, id string, photo *string) (*string, error) {
	args := m.Called(ctx, id, photo)
	p, _ := args.Get(0).(*string)
	return p, args.Error(1)
}

func (m *MockUserStore) ListUsers(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	u, _ := args.Get(0).([]models.User)
	return u, args.Error(1)
}

func (m *MockUserStore) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	s, _ := args.Get(0).(map[string]models.UserSummary)
	return s, args.Error(1)
}

type MockPhotoRemover struct {
	mock.Mock
}

func (m *MockPhotoRemover) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
