package sqlstore

import (
	"context"
	"errors"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateUser зберігає користувача; BeforeCreate заповнює ID та CreatedAt.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return wrapError(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmailAndHostel(ctx context.Context, email, hostelCode string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("email = ? AND hostel_code = ?", email, hostelCode).
		First(&user).Error
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUserPhoto locks the row so the returned previous photo matches what was replaced.
func (s *Store) UpdateUserPhoto(ctx context.Context, id string, photo *string) (*string, error) {
	var prev *string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		prev = user.Photo
		return tx.Model(&models.User{}).Where("id = ?", id).Update("photo", photo).Error
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return prev, nil
}

func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	q := s.DB.WithContext(ctx).Model(&models.User{})
	if filter.HostelCode != "" {
		q = q.Where("hostel_code = ?", filter.HostelCode)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	users := []models.User{}
	if err := q.Order("created_at desc").Order("id desc").Find(&users).Error; err != nil {
		return nil, wrapError(err)
	}
	return users, nil
}

func (s *Store) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	ids = storage.UniqueIDs(ids)
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	err := s.DB.WithContext(ctx).Select("id", "name", "email").Where("id IN ?", ids).Find(&users).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapError(err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}
