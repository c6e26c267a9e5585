package service

import (
	"context"
	"errors"
	"time"

	"luckydraw/internal/draw/cache"
	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
	"luckydraw/pkg/requestcontext"
)

// SelectWinner resolves a draw to exactly one winner.
//
// All collaborator work (email resolution, ledger snapshot, random index)
// happens before the commit begins, so the store's Execute lock is held only
// for the precondition check and the write. Preconditions run in priority
// order under that lock: winner is null, window closed at commit-time now,
// ledger non-empty, then membership for targeted modes. Two racing calls therefore
// see exactly one success; the loser observes winner_already_selected.
func (s *DrawService) SelectWinner(ctx context.Context, drawID id.DrawID, req models.SelectionRequest) (*models.Draw, error) {
	ctx, span := s.tracer.Start(ctx, "DrawService.SelectWinner")
	defer span.End()
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	target, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	entries, err := withRetry(ctx, s.retryAttempts, func() ([]models.RegistrationEntry, error) {
		return s.ledger.ListByDraw(ctx, drawID)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "draw not found")
	}

	// The pick can fail (empty ledger, non-member target), but those are
	// resolution preconditions: they must be reported under the lock, after
	// winner_already_selected and window_not_closed have had their say.
	winner, pickErr := s.pickWinner(entries, req.Mode, target)

	method := req.Method()
	resolved, err := withRetry(ctx, s.retryAttempts, func() (*models.Draw, error) {
		return s.draws.Execute(ctx, drawID,
			func(d *models.Draw) error {
				if err := d.CanResolve(now); err != nil {
					return err
				}
				// Ledger emptiness and membership are reported only once the
				// draw itself is resolvable, matching the precondition order.
				return pickErr
			},
			func(d *models.Draw) {
				d.ApplyResolution(winner, method, now)
			},
		)
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.SelectionRejections.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
		}
		return nil, wrapStoreErr(err, "draw not found")
	}

	if s.metrics != nil {
		s.metrics.WinnersSelectedTotal.WithLabelValues(string(method)).Inc()
		s.metrics.ObserveSelectWinner(start)
	}
	s.logger.InfoContext(ctx, "winner selected",
		"draw_id", drawID,
		"winner", winner,
		"method", method,
	)

	s.announce(ctx, resolved)
	return resolved, nil
}

// resolveTarget completes the email lookup before the commit so no lock is
// held across a network call. Random mode has no target.
func (s *DrawService) resolveTarget(ctx context.Context, req models.SelectionRequest) (id.UserID, error) {
	switch req.Mode {
	case models.SelectManual:
		return req.UserID, nil
	case models.SelectEmail:
		if s.resolver == nil {
			return id.UserID{}, dErrors.New(dErrors.CodeNotARegistrant, "identity lookup is not configured")
		}
		userID, err := s.resolver.ResolveEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "email does not resolve to a known identity")
			}
			// Resolution cannot proceed, so the call fails the same way an
			// unresolvable registrant would. Never block the commit on a
			// flaky collaborator.
			s.logger.WarnContext(ctx, "identity lookup unavailable",
				"error", err,
			)
			return id.UserID{}, dErrors.New(dErrors.CodeNotARegistrant, "identity lookup unavailable; cannot verify registrant")
		}
		return userID, nil
	default:
		return id.UserID{}, nil
	}
}

// pickWinner chooses the winning registrant from a ledger snapshot.
func (s *DrawService) pickWinner(entries []models.RegistrationEntry, mode models.SelectionMode, target id.UserID) (id.UserID, error) {
	if len(entries) == 0 {
		return id.UserID{}, dErrors.New(dErrors.CodeNoRegistrants, "draw has no registrants")
	}
	switch mode {
	case models.SelectRandom:
		return entries[s.randIntN(len(entries))].Registrant, nil
	default:
		for _, e := range entries {
			if e.Registrant == target {
				return target, nil
			}
		}
		return id.UserID{}, dErrors.New(dErrors.CodeNotARegistrant, "user is not registered for this draw")
	}
}

// announce emits the winner-selected event and warms the public cache. The
// resolution is already committed; neither step can fail the call.
func (s *DrawService) announce(ctx context.Context, d *models.Draw) {
	event := models.WinnerSelected{
		DrawID:     d.ID,
		Winner:     *d.Winner,
		Method:     *d.Method,
		ResolvedAt: *d.ResolvedAt,
	}
	if err := s.notifier.EmitWinnerSelected(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.NotifyEmitFailures.Inc()
		}
		s.logger.ErrorContext(ctx, "winner-selected emission failed; resolution stands",
			"draw_id", d.ID,
			"error", err,
		)
	}

	if err := s.winners.Set(ctx, d.ID, announcementFor(d)); err != nil {
		s.logger.WarnContext(ctx, "winner cache set failed",
			"draw_id", d.ID,
			"error", err,
		)
	}
}

func announcementFor(d *models.Draw) cache.WinnerAnnouncement {
	ann := cache.WinnerAnnouncement{Resolved: d.Resolved()}
	if d.Resolved() {
		ann.Winner = d.Winner
		ann.Method = d.Method
		ann.ResolvedAt = d.ResolvedAt
	}
	return ann
}
