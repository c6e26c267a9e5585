// Package draw provides persistence for Draw records. The InMemory
// implementation backs unit tests and single-node development; Postgres is
// the production store.
package draw

import (
	"context"
	"sync"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. Execute holds the lock across
// validate and mutate, giving the same atomicity as FOR UPDATE in Postgres.
type InMemory struct {
	mu    sync.RWMutex
	draws map[id.DrawID]*models.Draw
}

func NewInMemory() *InMemory {
	return &InMemory{draws: make(map[id.DrawID]*models.Draw)}
}

func (s *InMemory) Create(_ context.Context, d *models.Draw) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.draws[d.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *d
	s.draws[d.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, drawID id.DrawID) (*models.Draw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.draws[drawID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// Execute runs validate and mutate on the draw while holding the store lock,
// so a winner-is-null check and the commit that depends on it are one atomic
// step. Mutations are discarded when validate fails.
func (s *InMemory) Execute(_ context.Context, drawID id.DrawID, validate func(*models.Draw) error, mutate func(*models.Draw)) (*models.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.draws[drawID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)
	cp := *d
	return &cp, nil
}

func (s *InMemory) Delete(_ context.Context, drawID id.DrawID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.draws[drawID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.draws, drawID)
	return nil
}
