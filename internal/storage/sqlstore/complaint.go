package sqlstore

import (
	"context"
	"time"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	return wrapError(s.DB.WithContext(ctx).Create(complaint).Error)
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

func applyFilter(q *gorm.DB, f storage.ComplaintFilter) *gorm.DB {
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.HostelCode != "" {
		q = q.Where("hostel_code = ?", f.HostelCode)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

func (s *Store) ListComplaints(ctx context.Context, f storage.ComplaintFilter, page storage.Page) ([]models.Complaint, int64, error) {
	db := s.DB.WithContext(ctx)

	var total int64
	if err := applyFilter(db.Model(&models.Complaint{}), f).Count(&total).Error; err != nil {
		return nil, 0, wrapError(err)
	}

	q := applyFilter(db.Model(&models.Complaint{}), f).Order("created_at desc")
	if page.Skip > 0 {
		q = q.Offset(page.Skip)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}

	complaints := []models.Complaint{}
	if err := q.Find(&complaints).Error; err != nil {
		return nil, 0, wrapError(err)
	}
	return complaints, total, nil
}

func (s *Store) CountComplaintsByStatus(ctx context.Context, hostelCode string) (map[models.Status]int64, error) {
	var rows []struct {
		Status models.Status
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Select("status, count(*) AS count").
		Where("hostel_code = ?", hostelCode).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapError(err)
	}

	counts := make(map[models.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// UpdateComplaintStatus is a single UPDATE ... RETURNING.
func (s *Store) UpdateComplaintStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) (*models.Complaint, error) {
	var c models.Complaint
	res := s.DB.WithContext(ctx).Model(&c).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": updatedAt})
	if res.Error != nil {
		return nil, wrapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	res := s.DB.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&c)
	if res.Error != nil {
		return nil, wrapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}
