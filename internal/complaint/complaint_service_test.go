package complaint_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"hostelfix/backend/internal/apperr"
	"hostelfix/backend/internal/auth"
	"hostelfix/backend/internal/complaint"
	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ComplaintEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e models.ComplaintEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type MockPhotoRemover struct {
	mock.Mock
}

func (m *MockPhotoRemover) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type fixture struct {
	store   *memstore.Store
	svc     *complaint.Service
	pub     *recordingPublisher
	photos  *MockPhotoRemover
	studA   *auth.Identity
	studB   *auth.Identity
	admin   *auth.Identity
	admin2  *auth.Identity
	clockMu sync.Mutex
	clock   time.Time
}

func newFixture(t *testing.T, opts complaint.Options) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:  memstore.New(),
		pub:    &recordingPublisher{},
		photos: new(MockPhotoRemover),
		clock:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = complaint.NewService(f.store, f.store, f.photos, opts, nil, f.pub)
	f.svc.SetClock(f.now)

	mk := func(name, email, hostel string, role models.Role) *auth.Identity {
		u := &models.User{Name: name, Email: email, Password: "x", Role: role, HostelCode: hostel, HostelName: "Hostel"}
		require.NoError(t, f.store.CreateUser(ctx, u))
		return &auth.Identity{UserID: u.ID, Role: role, HostelCode: hostel}
	}
	f.studA = mk("Student A", "a@example.com", "HST001", models.RoleStudent)
	f.studB = mk("Student B", "b@example.com", "HST001", models.RoleStudent)
	f.admin = mk("Admin One", "admin1@example.com", "HST001", models.RoleAdmin)
	f.admin2 = mk("Admin Two", "admin2@example.com", "HST002", models.RoleAdmin)
	return f
}

// now advances one second per call so createdAt values are distinct.
func (f *fixture) now() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fixture) file(t *testing.T, by *auth.Identity, title string, category models.Category) *models.ComplaintView {
	t.Helper()
	c, err := f.svc.Create(context.Background(), by, complaint.CreateInput{
		Title:       title,
		Description: "Something in the room needs fixing soon",
		Category:    string(category),
	})
	require.NoError(t, err)
	return c
}

func TestCreate_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})

	created, err := f.svc.Create(ctx, f.studA, complaint.CreateInput{
		Title:       "Leaking tap",
		Description: "Tap in room 204 is leaking constantly",
		Category:    "plumbing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "HST001", created.HostelCode)
	assert.Equal(t, f.studA.UserID, created.UserID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.NotNil(t, created.User)
	assert.Equal(t, "Student A", created.User.Name)
	assert.Equal(t, "a@example.com", created.User.Email)

	all, err := f.svc.ListAll(ctx, f.admin, complaint.ListQuery{})
	require.NoError(t, err)
	require.Len(t, all.Complaints, 1)
	assert.GreaterOrEqual(t, all.Statistics.Pending, int64(1))

	updated, err := f.svc.UpdateStatus(ctx, f.admin, created.ID, "resolved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	mine, err := f.svc.ListMine(ctx, f.studA, complaint.ListQuery{Status: "resolved"})
	require.NoError(t, err)
	require.Len(t, mine.Complaints, 1)
	assert.Equal(t, created.ID, mine.Complaints[0].ID)
}

func TestCreate_TrimsAndValidatesEveryField(t *testing.T) {
	f := newFixture(t, complaint.Options{})

	_, err := f.svc.Create(context.Background(), f.studA, complaint.CreateInput{
		Title:       "   abc    ",
		Description: "short",
		Category:    "carpentry",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	fields := apperr.FieldsOf(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "title", fields[0].Field)
	assert.Equal(t, "Title must be between 5 and 200 characters", fields[0].Message)
	assert.Equal(t, "description", fields[1].Field)
	assert.Equal(t, "category", fields[2].Field)
	assert.Empty(t, f.pub.events, "nothing is published on failure")
}

func TestCreate_KeepsPhotoReference(t *testing.T) {
	f := newFixture(t, complaint.Options{})
	photo := "complaint-abc.png"

	c, err := f.svc.Create(context.Background(), f.studA, complaint.CreateInput{
		Title:       "Broken window",
		Description: "Glass cracked after the storm last night",
		Category:    "other",
		Photo:       &photo,
	})
	require.NoError(t, err)
	require.NotNil(t, c.Photo)
	assert.Equal(t, photo, *c.Photo)
}

func TestListMine_OnlyOwnComplaints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	f.file(t, f.studA, "Fan not working", models.CategoryElectrical)
	f.file(t, f.studB, "Dirty corridor", models.CategoryCleaning)
	f.file(t, f.studA, "Blocked drain", models.CategoryPlumbing)

	res, err := f.svc.ListMine(ctx, f.studA, complaint.ListQuery{})
	require.NoError(t, err)
	require.Len(t, res.Complaints, 2)
	for _, c := range res.Complaints {
		assert.Equal(t, f.studA.UserID, c.UserID)
	}
	assert.Equal(t, "Blocked drain", res.Complaints[0].Title, "newest first")
	assert.Nil(t, res.Statistics)

	res, err = f.svc.ListMine(ctx, f.studA, complaint.ListQuery{Category: "plumbing", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, res.Complaints, 1)
	assert.Equal(t, "Blocked drain", res.Complaints[0].Title)
}

func TestListMine_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	for i := 0; i < 15; i++ {
		f.file(t, f.studA, fmt.Sprintf("Complaint %02d title", i), models.CategoryOther)
	}

	res, err := f.svc.ListMine(ctx, f.studA, complaint.ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Complaints, 5)
	assert.Equal(t, models.Pagination{Current: 2, Total: 2, Count: 5, TotalComplaints: 15}, res.Pagination)
}

func TestListQuery_Normalize(t *testing.T) {
	assert.Equal(t, complaint.ListQuery{Page: 1, Limit: 10}, complaint.ListQuery{}.Normalize())
	assert.Equal(t, complaint.ListQuery{Page: 1, Limit: 10}, complaint.ListQuery{Page: -3, Limit: -1}.Normalize())
	assert.Equal(t, complaint.ListQuery{Page: 4, Limit: 100}, complaint.ListQuery{Page: 4, Limit: 5000}.Normalize())
}

func TestListMine_HugePageIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	f.file(t, f.studA, "Broken window latch", models.CategoryOther)

	q := complaint.ListQuery{Page: math.MaxInt, Limit: 10}.Normalize()
	assert.Equal(t, math.MaxInt/10, q.Page)

	res, err := f.svc.ListMine(ctx, f.studA, complaint.ListQuery{Page: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Complaints)
	assert.Equal(t, math.MaxInt/10, res.Pagination.Current)
	assert.Equal(t, int64(1), res.Pagination.TotalComplaints)
}

func TestListAll_HostelScopeAndUnfilteredStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})

	a := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)
	f.file(t, f.studB, "Dirty corridor", models.CategoryCleaning)
	c := f.file(t, f.studA, "Blocked drain", models.CategoryPlumbing)
	f.file(t, &auth.Identity{UserID: uuid.New().String(), Role: models.RoleStudent, HostelCode: "HST002"}, "Other hostel issue", models.CategoryOther)

	_, err := f.svc.UpdateStatus(ctx, f.admin, a.ID, "in progress")
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, f.admin, c.ID, "resolved")
	require.NoError(t, err)

	want := models.Statistics{Total: 3, Pending: 1, InProgress: 1, Resolved: 1}
	for _, q := range []complaint.ListQuery{
		{},
		{Status: "resolved"},
		{Category: "cleaning"},
		{Status: "pending", Category: "electrical"},
		{Page: 9, Limit: 1},
	} {
		res, err := f.svc.ListAll(ctx, f.admin, q)
		require.NoError(t, err)
		assert.Equal(t, want, *res.Statistics, "query %+v", q)
		for _, v := range res.Complaints {
			assert.Equal(t, "HST001", v.HostelCode)
		}
	}

	res, err := f.svc.ListAll(ctx, f.admin, complaint.ListQuery{Status: "resolved"})
	require.NoError(t, err)
	require.Len(t, res.Complaints, 1)
	assert.Equal(t, "Student A", res.Complaints[0].User.Name)
	assert.Equal(t, int64(1), res.Pagination.TotalComplaints)

	other, err := f.svc.ListAll(ctx, f.admin2, complaint.ListQuery{})
	require.NoError(t, err)
	require.Len(t, other.Complaints, 1)
	assert.Equal(t, "HST002", other.Complaints[0].HostelCode)
}

func TestListAll_UnknownFilterValueMatchesNothing(t *testing.T) {
	f := newFixture(t, complaint.Options{})
	f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	res, err := f.svc.ListAll(context.Background(), f.admin, complaint.ListQuery{Status: "closed"})
	require.NoError(t, err)
	assert.Empty(t, res.Complaints)
	assert.Equal(t, int64(1), res.Statistics.Total)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	f := newFixture(t, complaint.Options{})
	c := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	for _, s := range []string{"done", "", "Resolved", "in_progress"} {
		_, err := f.svc.UpdateStatus(context.Background(), f.admin, c.ID, s)
		assert.ErrorIs(t, err, apperr.ErrInvalidStatus, s)
	}
}

func TestUpdateStatus_NotFoundAndBadID(t *testing.T) {
	f := newFixture(t, complaint.Options{})

	_, err := f.svc.UpdateStatus(context.Background(), f.admin, uuid.New().String(), "resolved")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.UpdateStatus(context.Background(), f.admin, "not-an-id", "resolved")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Invalid complaint ID", apperr.FieldsOf(err)[0].Message)
}

func TestUpdateStatus_UpdatedAtStrictlyIncreases(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	c := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	frozen := c.UpdatedAt
	f.svc.SetClock(func() time.Time { return frozen })

	prev := c.UpdatedAt
	for _, s := range []string{"in progress", "in progress", "resolved", "pending"} {
		u, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, s)
		require.NoError(t, err)
		assert.Equal(t, models.Status(s), u.Status)
		assert.True(t, u.UpdatedAt.After(prev), "updatedAt must increase")
		assert.True(t, u.CreatedAt.Equal(c.CreatedAt))
		prev = u.UpdatedAt
	}
}

func TestUpdateStatus_CrossHostelAllowedByDefault(t *testing.T) {
	f := newFixture(t, complaint.Options{})
	c := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	u, err := f.svc.UpdateStatus(context.Background(), f.admin2, c.ID, "resolved")
	require.NoError(t, err)
	assert.Equal(t, "HST001", u.HostelCode, "hostel code never changes")
}

func TestStrictScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{StrictScope: true})
	c := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	_, err := f.svc.UpdateStatus(ctx, f.admin2, c.ID, "resolved")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin2, c.ID), apperr.ErrNotFound)

	_, err = f.svc.UpdateStatus(ctx, f.admin, c.ID, "resolved")
	assert.NoError(t, err)
	assert.NoError(t, f.svc.Delete(ctx, f.admin, c.ID))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	photo := "complaint-1.png"
	c, err := f.svc.Create(ctx, f.studA, complaint.CreateInput{
		Title: "Broken window", Description: "Glass cracked after the storm", Category: "other", Photo: &photo,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.admin, c.ID))
	f.photos.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.admin, c.ID), apperr.ErrNotFound)

	res, err := f.svc.ListAll(ctx, f.admin, complaint.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Complaints)
	assert.Equal(t, int64(0), res.Statistics.Total)
}

func TestDelete_PurgesPhotoWhenEnabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{PurgePhotos: true})
	photo := "complaint-1.png"
	c, err := f.svc.Create(ctx, f.studA, complaint.CreateInput{
		Title: "Broken window", Description: "Glass cracked after the storm", Category: "other", Photo: &photo,
	})
	require.NoError(t, err)

	f.photos.On("Delete", mock.Anything, photo).Return(errors.New("already gone"))
	require.NoError(t, f.svc.Delete(ctx, f.admin, c.ID), "photo removal is best-effort")
	f.photos.AssertExpectations(t)
}

func TestEventsArePublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, complaint.Options{})
	f.pub.err = errors.New("redis down")

	c := f.file(t, f.studA, "Fan not working", models.CategoryElectrical)
	_, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "resolved")
	require.NoError(t, err, "publish failures do not fail the request")
	require.NoError(t, f.svc.Delete(ctx, f.admin, c.ID))

	require.Len(t, f.pub.events, 3)
	assert.Equal(t, models.EventCreated, f.pub.events[0].Type)
	assert.Equal(t, models.EventStatusUpdated, f.pub.events[1].Type)
	assert.Equal(t, models.StatusResolved, f.pub.events[1].Status)
	assert.Equal(t, models.EventDeleted, f.pub.events[2].Type)
	for _, e := range f.pub.events {
		assert.Equal(t, c.ID, e.ComplaintID)
		assert.Equal(t, "HST001", e.HostelCode)
	}
}

func TestStatistics(t *testing.T) {
	f := newFixture(t, complaint.Options{})
	f.file(t, f.studA, "Fan not working", models.CategoryElectrical)

	stats, err := f.svc.Statistics(context.Background(), "hst001")
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{Total: 1, Pending: 1}, stats)
}
