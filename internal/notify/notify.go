// Package notify is the boundary to the notification dispatcher. The engine
// emits a winner-selected event after each resolution commit; delivery
// (email/SMS) is the dispatcher's concern, and emission failures never roll
// back the commit.
package notify

import (
	"context"

	"luckydraw/internal/draw/models"
)

// Emitter hands a winner-selected event to the dispatcher.
type Emitter interface {
	EmitWinnerSelected(ctx context.Context, event models.WinnerSelected) error
}
