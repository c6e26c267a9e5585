package service

import (
	"context"
	"errors"
	"io"

	"luckydraw/internal/draw/cache"
	"luckydraw/internal/draw/export"
	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
)

// Export streams the draw's ledger as CSV in canonical order. The row data is
// deterministic; transport framing (headers, filename) is the handler's job.
func (s *DrawService) Export(ctx context.Context, drawID id.DrawID, w io.Writer) error {
	if _, err := withRetry(ctx, s.retryAttempts, func() (*models.Draw, error) {
		return s.draws.FindByID(ctx, drawID)
	}); err != nil {
		return wrapStoreErr(err, "draw not found")
	}

	entries, err := withRetry(ctx, s.retryAttempts, func() ([]models.RegistrationEntry, error) {
		return s.ledger.ListByDraw(ctx, drawID)
	})
	if err != nil {
		return wrapStoreErr(err, "draw not found")
	}

	if err := export.WriteCSV(w, entries); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render export")
	}
	return nil
}

// Winner returns the public-safe resolution view. Resolved draws are served
// from the cache when possible; resolution is terminal, so a hit can never be
// stale.
func (s *DrawService) Winner(ctx context.Context, drawID id.DrawID) (*cache.WinnerAnnouncement, error) {
	if ann, err := s.winners.Get(ctx, drawID); err == nil {
		return ann, nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "winner cache read failed",
			"draw_id", drawID,
			"error", err,
		)
	}

	d, err := withRetry(ctx, s.retryAttempts, func() (*models.Draw, error) {
		return s.draws.FindByID(ctx, drawID)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "draw not found")
	}

	ann := announcementFor(d)
	if ann.Resolved {
		if err := s.winners.Set(ctx, drawID, ann); err != nil {
			s.logger.WarnContext(ctx, "winner cache set failed",
				"draw_id", drawID,
				"error", err,
			)
		}
	}
	return &ann, nil
}
