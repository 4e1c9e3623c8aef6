// Package storetest is a behavioural suite every storage.Store driver must pass.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store; it may t.Skip when the backend is unavailable.
type Factory func(t *testing.T) storage.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("UserCRUD", func(t *testing.T) { testUserCRUD(t, newStore(t)) })
	t.Run("DuplicateEmail", func(t *testing.T) { testDuplicateEmail(t, newStore(t)) })
	t.Run("UpdateUserPhoto", func(t *testing.T) { testUpdateUserPhoto(t, newStore(t)) })
	t.Run("ListUsers", func(t *testing.T) { testListUsers(t, newStore(t)) })
	t.Run("ComplaintCRUD", func(t *testing.T) { testComplaintCRUD(t, newStore(t)) })
	t.Run("ListComplaints", func(t *testing.T) { testListComplaints(t, newStore(t)) })
	t.Run("CountByStatus", func(t *testing.T) { testCountByStatus(t, newStore(t)) })
}

func ts(minute int) time.Time {
	return time.Date(2024, 6, 1, 12, minute, 0, 0, time.UTC)
}

func newUser(email, hostel string, role models.Role, created time.Time) *models.User {
	return &models.User{
		ID:         uuid.New().String(),
		Name:       "User " + email,
		Email:      email,
		Password:   "$2a$10$hash",
		Role:       role,
		HostelCode: hostel,
		HostelName: "Hostel " + hostel,
		CreatedAt:  created,
	}
}

func newComplaint(userID, hostel string, status models.Status, category models.Category, created time.Time) *models.Complaint {
	return &models.Complaint{
		ID:          uuid.New().String(),
		UserID:      userID,
		HostelCode:  hostel,
		Title:       "Broken fan in room",
		Description: "The ceiling fan stopped working yesterday",
		Category:    category,
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func testUserCRUD(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser("asha@example.com", "HST001", models.RoleStudent, ts(0))
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Password, got.Password, "stores keep the hash")
	assert.Equal(t, models.RoleStudent, got.Role)
	assert.Nil(t, got.Photo)

	got, err = s.GetUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetUserByEmailAndHostel(ctx, "asha@example.com", "HST001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUserByEmailAndHostel(ctx, "asha@example.com", "HST002")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	summaries, err := s.GetUserSummaries(ctx, []string{u.ID, u.ID, uuid.New().String()})
	require.NoError(t, err)
	assert.Equal(t, map[string]models.UserSummary{u.ID: u.Summary()}, summaries)
}

func testDuplicateEmail(t *testing.T, s storage.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newUser("dup@example.com", "HST001", models.RoleStudent, ts(0))))

	err := s.CreateUser(ctx, newUser("dup@example.com", "HST999", models.RoleAdmin, ts(1)))
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func testUpdateUserPhoto(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser("photo@example.com", "HST001", models.RoleStudent, ts(0))
	require.NoError(t, s.CreateUser(ctx, u))

	first := "photo-1.png"
	prev, err := s.UpdateUserPhoto(ctx, u.ID, &first)
	require.NoError(t, err)
	assert.Nil(t, prev)

	second := "photo-2.png"
	prev, err = s.UpdateUserPhoto(ctx, u.ID, &second)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, first, *prev)

	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Photo)
	assert.Equal(t, second, *got.Photo)

	_, err = s.UpdateUserPhoto(ctx, uuid.New().String(), &second)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	older := newUser("s1@example.com", "HST001", models.RoleStudent, ts(1))
	newer := newUser("s2@example.com", "HST001", models.RoleStudent, ts(2))
	admin := newUser("a1@example.com", "HST001", models.RoleAdmin, ts(3))
	other := newUser("s3@example.com", "HST002", models.RoleStudent, ts(4))
	for _, u := range []*models.User{older, newer, admin, other} {
		require.NoError(t, s.CreateUser(ctx, u))
	}

	users, err := s.ListUsers(ctx, storage.UserFilter{HostelCode: "HST001", Role: models.RoleStudent})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, newer.ID, users[0].ID)
	assert.Equal(t, older.ID, users[1].ID)

	users, err = s.ListUsers(ctx, storage.UserFilter{HostelCode: "NOPE"})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func testComplaintCRUD(t *testing.T, s storage.Store) {
	ctx := context.Background()
	c := newComplaint(uuid.New().String(), "HST001", models.StatusPending, models.CategoryPlumbing, ts(0))
	require.NoError(t, s.CreateComplaint(ctx, c))

	got, err := s.GetComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(c.CreatedAt))

	later := ts(5)
	updated, err := s.UpdateComplaintStatus(ctx, c.ID, models.StatusResolved, later)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(c.CreatedAt), "createdAt is immutable")
	assert.Equal(t, "HST001", updated.HostelCode)

	_, err = s.UpdateComplaintStatus(ctx, uuid.New().String(), models.StatusResolved, later)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	removed, err := s.DeleteComplaint(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, removed.ID)

	_, err = s.GetComplaint(ctx, c.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.DeleteComplaint(ctx, c.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListComplaints(t *testing.T, s storage.Store) {
	ctx := context.Background()
	owner := uuid.New().String()
	stranger := uuid.New().String()

	var mine []*models.Complaint
	for i := 0; i < 15; i++ {
		status := models.StatusPending
		if i%3 == 0 {
			status = models.StatusResolved
		}
		c := newComplaint(owner, "HST001", status, models.CategoryElectrical, ts(i))
		c.Title = fmt.Sprintf("Complaint number %02d", i)
		require.NoError(t, s.CreateComplaint(ctx, c))
		mine = append(mine, c)
	}
	require.NoError(t, s.CreateComplaint(ctx, newComplaint(stranger, "HST002", models.StatusPending, models.CategoryCleaning, ts(30))))

	page1, total, err := s.ListComplaints(ctx, storage.ComplaintFilter{UserID: owner}, storage.Page{Skip: 0, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page1, 10)
	assert.Equal(t, mine[14].ID, page1[0].ID, "newest first")

	page2, total, err := s.ListComplaints(ctx, storage.ComplaintFilter{UserID: owner}, storage.Page{Skip: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 15, total)
	require.Len(t, page2, 5)
	assert.Equal(t, mine[0].ID, page2[4].ID)
	for _, c := range append(page1, page2...) {
		assert.Equal(t, owner, c.UserID)
	}

	resolved, total, err := s.ListComplaints(ctx, storage.ComplaintFilter{HostelCode: "HST001", Status: models.StatusResolved, Category: models.CategoryElectrical}, storage.Page{Limit: 100})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	for _, c := range resolved {
		assert.Equal(t, models.StatusResolved, c.Status)
		assert.Equal(t, "HST001", c.HostelCode)
	}

	none, total, err := s.ListComplaints(ctx, storage.ComplaintFilter{HostelCode: "HST001", Category: models.CategoryCleaning}, storage.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, none)
}

func testCountByStatus(t *testing.T, s storage.Store) {
	ctx := context.Background()
	user := uuid.New().String()
	seed := []struct {
		hostel string
		status models.Status
	}{
		{"HST001", models.StatusPending},
		{"HST001", models.StatusPending},
		{"HST001", models.StatusInProgress},
		{"HST001", models.StatusResolved},
		{"HST002", models.StatusPending},
	}
	for i, sd := range seed {
		require.NoError(t, s.CreateComplaint(ctx, newComplaint(user, sd.hostel, sd.status, models.CategoryOther, ts(i))))
	}

	counts, err := s.CountComplaintsByStatus(ctx, "HST001")
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[models.StatusPending])
	assert.EqualValues(t, 1, counts[models.StatusInProgress])
	assert.EqualValues(t, 1, counts[models.StatusResolved])

	counts, err = s.CountComplaintsByStatus(ctx, "EMPTY")
	require.NoError(t, err)
	assert.Empty(t, counts)
}
