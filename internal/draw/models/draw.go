// Package models holds the draw domain types and the pure state rules the
// rest of the engine enforces.
package models

import (
	"time"

	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
)

// WindowState is the derived state of a registration window. It is never
// stored: every read computes it from the window bounds and the
// request-scoped clock.
type WindowState string

const (
	WindowUpcoming WindowState = "upcoming"
	WindowActive   WindowState = "active"
	WindowClosed   WindowState = "closed"
)

// EvaluateWindow maps (start, end, now) to a window state. Pure function, no
// side effects. All call sites within one logical operation must share the
// same now (requestcontext.Now).
func EvaluateWindow(start, end, now time.Time) WindowState {
	switch {
	case now.Before(start):
		return WindowUpcoming
	case now.After(end):
		return WindowClosed
	default:
		return WindowActive
	}
}

// ResolutionMethod records how a draw's winner was chosen.
type ResolutionMethod string

const (
	ResolutionRandom ResolutionMethod = "random"
	ResolutionManual ResolutionMethod = "manual"
	ResolutionEmail  ResolutionMethod = "email"
)

// Draw is a single lucky-draw instance bound to one property. Winner,
// Method, and ResolvedAt are set together, exactly once; a resolved draw is
// terminal.
type Draw struct {
	ID          id.DrawID
	PropertyRef id.PropertyID
	WindowStart time.Time
	WindowEnd   time.Time
	Winner      *id.UserID
	Method      *ResolutionMethod
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}

// NewDraw validates window bounds and constructs an unresolved draw.
func NewDraw(drawID id.DrawID, propertyRef id.PropertyID, windowStart, windowEnd, now time.Time) (*Draw, error) {
	if propertyRef.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "property reference is required")
	}
	if windowStart.IsZero() || windowEnd.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "window bounds are required")
	}
	if !windowStart.Before(windowEnd) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "window start must precede window end")
	}
	return &Draw{
		ID:          drawID,
		PropertyRef: propertyRef,
		WindowStart: windowStart.UTC(),
		WindowEnd:   windowEnd.UTC(),
		CreatedAt:   now.UTC(),
	}, nil
}

// WindowState evaluates the draw's window against now.
func (d *Draw) WindowState(now time.Time) WindowState {
	return EvaluateWindow(d.WindowStart, d.WindowEnd, now)
}

// Resolved reports whether a winner has been committed.
func (d *Draw) Resolved() bool {
	return d.Winner != nil
}

// CanResolve checks the resolution preconditions against now. It must run
// under the store's lock so the winner-is-null check and the commit are one
// atomic step.
func (d *Draw) CanResolve(now time.Time) error {
	if d.Resolved() {
		return dErrors.New(dErrors.CodeWinnerAlreadySelected, "winner has already been selected")
	}
	if d.WindowState(now) != WindowClosed {
		return dErrors.New(dErrors.CodeWindowNotClosed, "registration window has not closed")
	}
	return nil
}

// ApplyResolution commits the winner. Callers must have validated with
// CanResolve under the same lock.
func (d *Draw) ApplyResolution(winner id.UserID, method ResolutionMethod, now time.Time) {
	resolvedAt := now.UTC()
	d.Winner = &winner
	d.Method = &method
	d.ResolvedAt = &resolvedAt
}
