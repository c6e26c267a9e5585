// Package registration provides the append-only registration ledger. The
// dedup key is (draw, registrant); the check-then-insert must be atomic so
// two concurrent attempts by the same user cannot both land.
package registration

import (
	"context"
	"sort"
	"sync"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

type ledgerKey struct {
	draw id.DrawID
	user id.UserID
}

// InMemory keeps ledger entries under a single mutex; Append performs the
// dedup check and insert while holding it.
type InMemory struct {
	mu      sync.RWMutex
	entries map[id.DrawID][]models.RegistrationEntry
	index   map[ledgerKey]struct{}
	nextSeq int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[id.DrawID][]models.RegistrationEntry),
		index:   make(map[ledgerKey]struct{}),
	}
}

// Append inserts an entry if no (draw, registrant) pair exists yet, returning
// sentinel.ErrConflict otherwise. Seq is assigned from a store-wide counter
// so insertion order breaks RegisteredAt ties.
func (s *InMemory) Append(_ context.Context, entry models.RegistrationEntry) (models.RegistrationEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ledgerKey{draw: entry.DrawID, user: entry.Registrant}
	if _, dup := s.index[key]; dup {
		return models.RegistrationEntry{}, sentinel.ErrConflict
	}
	s.nextSeq++
	entry.Seq = s.nextSeq
	s.index[key] = struct{}{}
	s.entries[entry.DrawID] = append(s.entries[entry.DrawID], entry)
	return entry, nil
}

// ListByDraw returns the ledger in canonical order: RegisteredAt ascending,
// Seq breaking ties.
func (s *InMemory) ListByDraw(_ context.Context, drawID id.DrawID) ([]models.RegistrationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]models.RegistrationEntry(nil), s.entries[drawID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}

func (s *InMemory) CountByDraw(_ context.Context, drawID id.DrawID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[drawID]), nil
}

func (s *InMemory) FindByDrawAndUser(_ context.Context, drawID id.DrawID, userID id.UserID) (*models.RegistrationEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries[drawID] {
		if e.Registrant == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// DeleteByDraw removes a draw's ledger as part of the administrative cascade.
func (s *InMemory) DeleteByDraw(_ context.Context, drawID id.DrawID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries[drawID] {
		delete(s.index, ledgerKey{draw: drawID, user: e.Registrant})
	}
	delete(s.entries, drawID)
	return nil
}
