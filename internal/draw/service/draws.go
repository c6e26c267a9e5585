package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/requestcontext"
)

// DrawDetail is the administrative view: the draw plus its full ledger in
// canonical order.
type DrawDetail struct {
	Draw          *models.Draw
	Registrations []models.RegistrationEntry
}

// CreateDraw enrolls a property into the lucky draw with the given
// registration window.
func (s *DrawService) CreateDraw(ctx context.Context, propertyRef id.PropertyID, windowStart, windowEnd time.Time) (*models.Draw, error) {
	now := requestcontext.Now(ctx)
	d, err := models.NewDraw(id.DrawID(uuid.New()), propertyRef, windowStart, windowEnd, now)
	if err != nil {
		return nil, err
	}

	_, err = withRetry(ctx, s.retryAttempts, func() (struct{}, error) {
		return struct{}{}, s.draws.Create(ctx, d)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create draw")
	}

	s.logger.InfoContext(ctx, "draw created",
		"draw_id", d.ID,
		"property_ref", d.PropertyRef,
		"window_start", d.WindowStart,
		"window_end", d.WindowEnd,
	)
	return d, nil
}

// Get returns the draw and its full registration list.
func (s *DrawService) Get(ctx context.Context, drawID id.DrawID) (*DrawDetail, error) {
	d, err := withRetry(ctx, s.retryAttempts, func() (*models.Draw, error) {
		return s.draws.FindByID(ctx, drawID)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "draw not found")
	}

	entries, err := withRetry(ctx, s.retryAttempts, func() ([]models.RegistrationEntry, error) {
		return s.ledger.ListByDraw(ctx, drawID)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "draw not found")
	}
	return &DrawDetail{Draw: d, Registrations: entries}, nil
}

// Delete removes a draw and cascades its ledger so no orphaned entries
// remain. The ledger and cache cleanups are idempotent; re-running a
// partially failed delete converges.
func (s *DrawService) Delete(ctx context.Context, drawID id.DrawID) error {
	_, err := withRetry(ctx, s.retryAttempts, func() (struct{}, error) {
		return struct{}{}, s.draws.Delete(ctx, drawID)
	})
	if err != nil {
		return wrapStoreErr(err, "draw not found")
	}

	_, err = withRetry(ctx, s.retryAttempts, func() (struct{}, error) {
		return struct{}{}, s.ledger.DeleteByDraw(ctx, drawID)
	})
	if err != nil {
		return wrapStoreErr(err, "draw not found")
	}

	if err := s.winners.Invalidate(ctx, drawID); err != nil {
		s.logger.WarnContext(ctx, "winner cache invalidation failed",
			"draw_id", drawID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "draw deleted", "draw_id", drawID)
	return nil
}
