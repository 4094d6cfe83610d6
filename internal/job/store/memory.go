// Package store persists job openings.
package store

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"hiretrack/internal/job/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/platform/tx"
)

type InMemory struct {
	mu     sync.RWMutex
	byID   map[domain.JobID]*models.Job
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.JobID]*models.Job)}
}

func clone(j *models.Job) *models.Job {
	cp := *j
	if j.CreatedBy != nil {
		by := *j.CreatedBy
		cp.CreatedBy = &by
	}
	return &cp
}

func (s *InMemory) Create(ctx context.Context, j *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	j.ID = domain.JobID(s.nextID)
	s.byID[j.ID] = clone(j)

	id := j.ID
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		delete(s.byID, id)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.JobID) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(j), nil
}

func (s *InMemory) FindByIDs(_ context.Context, ids []domain.JobID) (map[domain.JobID]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.JobID]*models.Job, len(ids))
	for _, id := range ids {
		if j, ok := s.byID[id]; ok {
			out[id] = clone(j)
		}
	}
	return out, nil
}

// List returns jobs newest first. A non-empty department matches
// case-insensitively.
func (s *InMemory) List(_ context.Context, department string) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	department = strings.TrimSpace(department)
	out := make([]*models.Job, 0, len(s.byID))
	for _, j := range s.byID {
		if department != "" && !strings.EqualFold(j.Department, department) {
			continue
		}
		out = append(out, clone(j))
	}
	slices.SortFunc(out, func(a, b *models.Job) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (s *InMemory) Execute(ctx context.Context, id domain.JobID, validate func(*models.Job) error, mutate func(*models.Job)) (*models.Job, error) {
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

func (s *InMemory) Delete(ctx context.Context, id domain.JobID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID[id] = j
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.byID
	s.byID = make(map[domain.JobID]*models.Job)
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID = prev
		s.mu.Unlock()
	})
	return nil
}
