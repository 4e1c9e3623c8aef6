// Package memstore is an in-process storage.Store for tests and local runs.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type record[T any] struct {
	seq uint64
	val T
}

type Store struct {
	mu         sync.RWMutex
	seq        uint64
	users      map[string]record[models.User]
	emails     map[string]string
	complaints map[string]record[models.Complaint]
}

func New() *Store {
	return &Store{
		users:      make(map[string]record[models.User]),
		emails:     make(map[string]string),
		complaints: make(map[string]record[models.Complaint]),
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Prepare(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[user.Email]; ok {
		return storage.ErrDuplicate
	}
	if _, ok := s.users[user.ID]; ok {
		return storage.ErrDuplicate
	}
	s.users[user.ID] = record[models.User]{seq: s.next(), val: *user}
	s.emails[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := r.val
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByEmailAndHostel(ctx context.Context, email, hostelCode string) (*models.User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.HostelCode != hostelCode {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdateUserPhoto(ctx context.Context, id string, photo *string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	prev := r.val.Photo
	r.val.Photo = photo
	s.users[id] = r
	return prev, nil
}

func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	matched := make([]record[models.User], 0)
	for _, r := range s.users {
		if filter.HostelCode != "" && r.val.HostelCode != filter.HostelCode {
			continue
		}
		if filter.Role != "" && r.val.Role != filter.Role {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].val.CreatedAt, matched[i].seq, matched[j].val.CreatedAt, matched[j].seq)
	})

	out := make([]models.User, len(matched))
	for i, r := range matched {
		out[i] = r.val
	}
	return out, nil
}

func (s *Store) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range storage.UniqueIDs(ids) {
		if r, ok := s.users[id]; ok {
			out[id] = r.val.Summary()
		}
	}
	return out, nil
}

// ============================================================================
// ComplaintStore
// ============================================================================

func (s *Store) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	complaint.Prepare(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.complaints[complaint.ID]; ok {
		return storage.ErrDuplicate
	}
	s.complaints[complaint.ID] = record[models.Complaint]{seq: s.next(), val: *complaint}
	return nil
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.complaints[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := r.val
	return &c, nil
}

func (s *Store) ListComplaints(ctx context.Context, filter storage.ComplaintFilter, page storage.Page) ([]models.Complaint, int64, error) {
	s.mu.RLock()
	matched := make([]record[models.Complaint], 0)
	for _, r := range s.complaints {
		if matches(r.val, filter) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return newer(matched[i].val.CreatedAt, matched[i].seq, matched[j].val.CreatedAt, matched[j].seq)
	})

	total := int64(len(matched))
	start := min(max(page.Skip, 0), len(matched))
	end := len(matched)
	if page.Limit > 0 {
		end = min(start+page.Limit, len(matched))
	}

	out := make([]models.Complaint, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, r.val)
	}
	return out, total, nil
}

func (s *Store) CountComplaintsByStatus(ctx context.Context, hostelCode string) (map[models.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Status]int64)
	for _, r := range s.complaints {
		if r.val.HostelCode == hostelCode {
			counts[r.val.Status]++
		}
	}
	return counts, nil
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.complaints[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	r.val.Status = status
	r.val.UpdatedAt = updatedAt
	s.complaints[id] = r
	c := r.val
	return &c, nil
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.complaints[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	delete(s.complaints, id)
	c := r.val
	return &c, nil
}

func matches(c models.Complaint, f storage.ComplaintFilter) bool {
	if f.UserID != "" && c.UserID != f.UserID {
		return false
	}
	if f.HostelCode != "" && c.HostelCode != f.HostelCode {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Category != "" && c.Category != f.Category {
		return false
	}
	return true
}

// newer orders by timestamp descending, then by insertion descending.
func newer(at time.Time, seq uint64, otherAt time.Time, otherSeq uint64) bool {
	if !at.Equal(otherAt) {
		return at.After(otherAt)
	}
	return seq > otherSeq
}
