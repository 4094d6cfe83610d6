// Package store persists notifications.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"hiretrack/internal/notification/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/platform/tx"
)

type InMemory struct {
	mu     sync.RWMutex
	byID   map[domain.NotificationID]*models.Notification
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.NotificationID]*models.Notification)}
}

func clone(n *models.Notification) *models.Notification {
	cp := *n
	if n.JobID != nil {
		v := *n.JobID
		cp.JobID = &v
	}
	if n.ApplicationID != nil {
		v := *n.ApplicationID
		cp.ApplicationID = &v
	}
	if n.ReadAt != nil {
		v := *n.ReadAt
		cp.ReadAt = &v
	}
	return &cp
}

// CreateMany inserts all notifications and assigns their ids in order.
func (s *InMemory) CreateMany(ctx context.Context, ns []*models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]domain.NotificationID, 0, len(ns))
	for _, n := range ns {
		s.nextID++
		n.ID = domain.NotificationID(s.nextID)
		s.byID[n.ID] = clone(n)
		ids = append(ids, n.ID)
	}
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		for _, id := range ids {
			delete(s.byID, id)
		}
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(n), nil
}

// ListByUser returns a user's notifications newest first.
func (s *InMemory) ListByUser(_ context.Context, userID domain.UserID, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.byID {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, clone(n))
	}
	slices.SortFunc(out, func(a, b *models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *InMemory) CountUnread(_ context.Context, userID domain.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.byID {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) Execute(ctx context.Context, id domain.NotificationID, validate func(*models.Notification) error, mutate func(*models.Notification)) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	working := clone(current)
	if err := validate(working); err != nil {
		return nil, err
	}
	mutate(working)
	s.byID[id] = working
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID[id] = current
		s.mu.Unlock()
	})
	return clone(working), nil
}

// MarkAllRead flags every unread notification of userID and returns how
// many changed.
func (s *InMemory) MarkAllRead(ctx context.Context, userID domain.UserID, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed []*models.Notification
	for id, n := range s.byID {
		if n.UserID != userID || n.IsRead {
			continue
		}
		changed = append(changed, n)
		updated := clone(n)
		updated.MarkRead(now)
		s.byID[id] = updated
	}
	if len(changed) > 0 {
		tx.JournalFrom(ctx).Record(func() {
			s.mu.Lock()
			for _, n := range changed {
				s.byID[n.ID] = n
			}
			s.mu.Unlock()
		})
	}
	return len(changed), nil
}

func (s *InMemory) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.byID
	s.byID = make(map[domain.NotificationID]*models.Notification)
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID = prev
		s.mu.Unlock()
	})
	return nil
}
