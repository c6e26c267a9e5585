package models

import (
	"time"

	id "luckydraw/pkg/domain"
)

// WinnerSelected is emitted to the notification collaborator once a draw
// resolves. The resolution is authoritative regardless of whether delivery
// succeeds downstream.
type WinnerSelected struct {
	DrawID     id.DrawID        `json:"draw_id"`
	Winner     id.UserID        `json:"winner_id"`
	Method     ResolutionMethod `json:"method"`
	ResolvedAt time.Time        `json:"resolved_at"`
}
