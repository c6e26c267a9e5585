package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
	"luckydraw/pkg/requestcontext"
)

// Register appends the authenticated caller to a draw's ledger.
//
// The window check and the insert use the same request-scoped now, and the
// window depends only on the draw's immutable bounds, so the state cannot
// shift between check and insert within one call. The only race that matters
// is two registrations by the same user, and the store's unique constraint
// settles that one atomically.
func (s *DrawService) Register(ctx context.Context, drawID id.DrawID, contactPhone string) (*models.RegistrationEntry, error) {
	ctx, span := s.tracer.Start(ctx, "DrawService.Register")
	defer span.End()
	start := time.Now()

	registrant := requestcontext.UserID(ctx)
	if registrant.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	contactPhone = strings.TrimSpace(contactPhone)
	if contactPhone == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "contact phone is required")
	}

	now := requestcontext.Now(ctx)
	d, err := withRetry(ctx, s.retryAttempts, func() (*models.Draw, error) {
		return s.draws.FindByID(ctx, drawID)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "draw not found")
	}

	if state := d.WindowState(now); state != models.WindowActive {
		return nil, dErrors.New(dErrors.CodeWindowNotActive, "registration window is "+string(state))
	}

	entry, err := withRetry(ctx, s.retryAttempts, func() (models.RegistrationEntry, error) {
		return s.ledger.Append(ctx, models.RegistrationEntry{
			DrawID:       drawID,
			Registrant:   registrant,
			ContactPhone: contactPhone,
			RegisteredAt: now.UTC(),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.RegistrationConflicts.Inc()
			}
			return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "already registered for this draw")
		}
		return nil, wrapStoreErr(err, "draw not found")
	}

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
		s.metrics.ObserveRegister(start)
	}
	s.logger.InfoContext(ctx, "registration accepted",
		"draw_id", drawID,
		"registrant", registrant,
	)
	return &entry, nil
}
