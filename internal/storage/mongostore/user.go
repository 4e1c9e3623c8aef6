package mongostore

import (
	"context"
	"time"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Prepare(time.Now())
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), byID(id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByEmailAndHostel(ctx context.Context, email, hostelCode string) (*models.User, error) {
	return findOne[models.User](ctx, s.col(ColUsers), bson.D{
		{Key: "email", Value: email},
		{Key: "hostelCode", Value: hostelCode},
	})
}

func (s *Store) UpdateUserPhoto(ctx context.Context, id string, photo *string) (*string, error) {
	prev, err := findOneAndSet[models.User](ctx, s.col(ColUsers), id, bson.D{{Key: "photo", Value: photo}}, false)
	if err != nil {
		return nil, err
	}
	return prev.Photo, nil
}

func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	f := bson.D{}
	if filter.HostelCode != "" {
		f = append(f, bson.E{Key: "hostelCode", Value: filter.HostelCode})
	}
	if filter.Role != "" {
		f = append(f, bson.E{Key: "role", Value: filter.Role})
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return findMany[models.User](ctx, s.col(ColUsers), f, opts)
}

func (s *Store) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	ids = storage.UniqueIDs(ids)
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}})
	users, err := findMany[models.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = users[i].Summary()
	}
	return out, nil
}
