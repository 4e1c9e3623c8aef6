package mongostore

import (
	"context"
	"time"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// ComplaintStore
// ============================================================================

func (s *Store) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	complaint.Prepare(time.Now())
	return insertOne(ctx, s.col(ColComplaints), complaint)
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	return findOne[models.Complaint](ctx, s.col(ColComplaints), byID(id))
}

func complaintFilter(cf storage.ComplaintFilter) bson.D {
	filter := bson.D{}
	if cf.UserID != "" {
		filter = append(filter, bson.E{Key: "userId", Value: cf.UserID})
	}
	if cf.HostelCode != "" {
		filter = append(filter, bson.E{Key: "hostelCode", Value: cf.HostelCode})
	}
	if cf.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: cf.Status})
	}
	if cf.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: cf.Category})
	}
	return filter
}

func (s *Store) ListComplaints(ctx context.Context, cf storage.ComplaintFilter, page storage.Page) ([]models.Complaint, int64, error) {
	filter := complaintFilter(cf)

	total, err := s.col(ColComplaints).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	if page.Skip > 0 {
		opts.SetSkip(int64(page.Skip))
	}

	complaints, err := findMany[models.Complaint](ctx, s.col(ColComplaints), filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func (s *Store) CountComplaintsByStatus(ctx context.Context, hostelCode string) (map[models.Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "hostelCode", Value: hostelCode}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.col(ColComplaints).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.Status `bson:"_id"`
		Count  int64         `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) (*models.Complaint, error) {
	return findOneAndSet[models.Complaint](ctx, s.col(ColComplaints), id, bson.D{
		{Key: "status", Value: status},
		{Key: "updatedAt", Value: updatedAt},
	}, true)
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	return findOneAndDelete[models.Complaint](ctx, s.col(ColComplaints), id)
}
