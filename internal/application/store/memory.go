// Package store persists applications.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"hiretrack/internal/application/models"
	"hiretrack/pkg/domain"
	"hiretrack/pkg/platform/sentinel"
	"hiretrack/pkg/platform/tx"
)

type InMemory struct {
	mu     sync.RWMutex
	byID   map[domain.ApplicationID]*models.Application
	nextID int64
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.ApplicationID]*models.Application)}
}

func clone(a *models.Application) *models.Application {
	cp := *a
	return &cp
}

func (s *InMemory) Create(ctx context.Context, a *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = domain.ApplicationID(s.nextID)
	s.byID[a.ID] = clone(a)

	id := a.ID
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		delete(s.byID, id)
		s.mu.Unlock()
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

// List returns matching applications, latest application date first, then
// by ascending id.
func (s *InMemory) List(_ context.Context, f models.Filter) ([]*models.Application, error) {
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, a := range s.byID {
		if f.CandidateID != nil && a.CandidateID != *f.CandidateID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if f.JobIDs != nil && !slices.Contains(f.JobIDs, a.JobID) {
			continue
		}
		out = append(out, clone(a))
	}
	slices.SortFunc(out, func(a, b *models.Application) int {
		if c := b.ApplicationDate.Compare(a.ApplicationDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Exists reports whether an application with the same candidate, job and
// date is already stored.
func (s *InMemory) Exists(_ context.Context, candidateID domain.CandidateID, jobID domain.JobID, date time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	date = models.DateOf(date)
	for _, a := range s.byID {
		if a.CandidateID == candidateID && a.JobID == jobID && a.ApplicationDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

// Execute runs validate and mutate while holding the store lock, so two
// concurrent transitions of one application cannot both pass validate.
func (s *InMemory) Execute(ctx context.Context, id domain.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
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

func (s *InMemory) DeleteByCandidate(ctx context.Context, candidateID domain.CandidateID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []*models.Application
	for id, a := range s.byID {
		if a.CandidateID == candidateID {
			removed = append(removed, a)
			delete(s.byID, id)
		}
	}
	if len(removed) > 0 {
		tx.JournalFrom(ctx).Record(func() {
			s.mu.Lock()
			for _, a := range removed {
				s.byID[a.ID] = a
			}
			s.mu.Unlock()
		})
	}
	return len(removed), nil
}

// DeleteByJob removes every application to a job.
func (s *InMemory) DeleteByJob(ctx context.Context, jobID domain.JobID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []*models.Application
	for id, a := range s.byID {
		if a.JobID == jobID {
			removed = append(removed, a)
			delete(s.byID, id)
		}
	}
	if len(removed) > 0 {
		tx.JournalFrom(ctx).Record(func() {
			s.mu.Lock()
			for _, a := range removed {
				s.byID[a.ID] = a
			}
			s.mu.Unlock()
		})
	}
	return len(removed), nil
}

func (s *InMemory) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.byID
	s.byID = make(map[domain.ApplicationID]*models.Application)
	tx.JournalFrom(ctx).Record(func() {
		s.mu.Lock()
		s.byID = prev
		s.mu.Unlock()
	})
	return nil
}
