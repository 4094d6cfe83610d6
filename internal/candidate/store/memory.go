// Package store persists candidates.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"hiretrack/internal/candidate/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/platform/tx"
)

// InMemory is a map-backed candidate store with a case-insensitive email index.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[domain.CandidateID]*models.Candidate
	byEmail map[string]domain.CandidateID
	nextID  int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[domain.CandidateID]*models.Candidate),
		byEmail: make(map[string]domain.CandidateID),
	}
}

func clone(c *models.Candidate) *models.Candidate {
	cp := *c
	if c.ResumeRef != nil {
		ref := *c.ResumeRef
		cp.ResumeRef = &ref
	}
	return &cp
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *InMemory) Create(ctx context.Context, c *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(c.Email)
	if _, taken := s.byEmail[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	s.nextID++
	c.ID = domain.CandidateID(s.nextID)
	s.byID[c.ID] = clone(c)
	s.byEmail[key] = c.ID

	id := c.ID
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		delete(s.byID, id)
		delete(s.byEmail, key)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.CandidateID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemory) FindByIDs(_ context.Context, ids []domain.CandidateID) (map[domain.CandidateID]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.CandidateID]*models.Candidate, len(ids))
	for _, id := range ids {
		if c, ok := s.byID[id]; ok {
			out[id] = clone(c)
		}
	}
	return out, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *InMemory) Exists(_ context.Context, id domain.CandidateID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

// List returns all candidates by ascending id.
func (s *InMemory) List(_ context.Context) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Candidate, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, clone(c))
	}
	slices.SortFunc(out, func(a, b *models.Candidate) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// First returns the candidate with the lowest id.
func (s *InMemory) First(ctx context.Context) (*models.Candidate, error) {
	all, _ := s.List(ctx)
	if len(all) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return all[0], nil
}

// Execute loads a candidate, validates it and applies mutate under the store
// lock. validate errors are returned unchanged.
func (s *InMemory) Execute(ctx context.Context, id domain.CandidateID, validate func(*models.Candidate) error, mutate func(*models.Candidate)) (*models.Candidate, error) {
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

func (s *InMemory) Delete(ctx context.Context, id domain.CandidateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	key := emailKey(c.Email)
	delete(s.byID, id)
	delete(s.byEmail, key)

	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID[id] = c
		s.byEmail[key] = id
		s.mu.Unlock()
	})
	return nil
}

// DeleteAll removes every candidate. Used by the bulk importer's clear step.
func (s *InMemory) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevID, prevEmail := s.byID, s.byEmail
	s.byID = make(map[domain.CandidateID]*models.Candidate)
	s.byEmail = make(map[string]domain.CandidateID)
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID, s.byEmail = prevID, prevEmail
		s.mu.Unlock()
	})
	return nil
}
