// Package store persists user accounts.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"hiretrack/internal/identity/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/platform/tx"
)

// InMemory is a map-backed user store. Writes inside a transaction record
// undo steps on the context's journal.
type InMemory struct {
	mu     sync.RWMutex
	users  map[domain.UserID]*models.User
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[domain.UserID]*models.User)}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.CandidateID != nil {
		linked := *u.CandidateID
		c.CandidateID = &linked
	}
	return &c
}

func (s *InMemory) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.nextID++
	u.ID = domain.UserID(s.nextID)
	s.users[u.ID] = clone(u)

	id := u.ID
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		delete(s.users, id)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(u), nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return clone(u), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) SetCandidate(ctx context.Context, id domain.UserID, candidateID *domain.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	prev := u.CandidateID
	if candidateID == nil {
		u.CandidateID = nil
	} else {
		linked := *candidateID
		u.CandidateID = &linked
	}
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		u.CandidateID = prev
		s.mu.Unlock()
	})
	return nil
}

// UnlinkCandidate clears every link to candidateID and returns how many
// accounts changed.
func (s *InMemory) UnlinkCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed []*models.User
	for _, u := range s.users {
		if u.CandidateID != nil && *u.CandidateID == candidateID {
			u.CandidateID = nil
			changed = append(changed, u)
		}
	}
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		for _, u := range changed {
			linked := candidateID
			u.CandidateID = &linked
		}
		s.mu.Unlock()
	})
	return len(changed), nil
}

func (s *InMemory) ListIDsByRole(_ context.Context, role domain.Role) ([]domain.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []domain.UserID
	for _, u := range s.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *InMemory) ListIDsByCandidate(_ context.Context, candidateID domain.CandidateID) ([]domain.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []domain.UserID
	for _, u := range s.users {
		if u.CandidateID != nil && *u.CandidateID == candidateID {
			ids = append(ids, u.ID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
