package notify

import (
	"context"
	"sync"

	"luckydraw/internal/draw/models"
)

// MemoryEmitter records emitted events in memory. Used in tests and when no
// brokers are configured.
type MemoryEmitter struct {
	mu     sync.Mutex
	events []models.WinnerSelected

	// FailWith, when set, makes every emission fail. Tests use it to verify
	// that emission failures never roll back a resolution.
	FailWith error
}

func NewMemoryEmitter() *MemoryEmitter {
	return &MemoryEmitter{}
}

func (e *MemoryEmitter) EmitWinnerSelected(_ context.Context, event models.WinnerSelected) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FailWith != nil {
		return e.FailWith
	}
	e.events = append(e.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (e *MemoryEmitter) Events() []models.WinnerSelected {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.WinnerSelected(nil), e.events...)
}
