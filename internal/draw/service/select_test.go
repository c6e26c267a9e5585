package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"luckydraw/internal/draw/models"
	"luckydraw/internal/draw/service/mocks"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
)

// TestSelectWinnerRandom covers the random strategy end to end.
func (s *DrawServiceSuite) TestSelectWinnerRandom() {
	s.Run("commits a registrant and stamps method and time", func() {
		d := s.createDraw()
		users := s.registerUsers(d, 3)
		s.svc.randIntN = func(n int) int {
			s.Equal(3, n)
			return 2
		}

		resolved, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
		s.Require().NoError(err)
		s.Require().NotNil(resolved.Winner)
		s.Equal(users[2], *resolved.Winner)
		s.Equal(models.ResolutionRandom, *resolved.Method)
		s.True(resolved.ResolvedAt.Equal(afterClose))
	})

	s.Run("emits exactly one winner-selected event", func() {
		s.SetupTest() // the previous subtest's resolution left an event behind
		d := s.createDraw()
		users := s.registerUsers(d, 2)
		s.svc.randIntN = func(int) int { return 0 }

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
		s.Require().NoError(err)

		events := s.emitter.Events()
		s.Require().Len(events, 1)
		s.Equal(d.ID, events[0].DrawID)
		s.Equal(users[0], events[0].Winner)
		s.Equal(models.ResolutionRandom, events[0].Method)
	})

	s.Run("emission failure does not roll back the resolution", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		s.emitter.FailWith = errors.New("broker down")

		resolved, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
		s.Require().NoError(err)
		s.True(resolved.Resolved())

		detail, err := s.svc.Get(ctxAt(afterClose), d.ID)
		s.Require().NoError(err)
		s.True(detail.Draw.Resolved())
	})
}

// TestSelectWinnerPreconditions covers the rejection taxonomy and its
// ordering.
func (s *DrawServiceSuite) TestSelectWinnerPreconditions() {
	random := models.SelectionRequest{Mode: models.SelectRandom}

	s.Run("rejects while the window is still open", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		_, err := s.svc.SelectWinner(ctxAt(duringOpen), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotClosed))
	})

	s.Run("rejects at the exact window end", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		_, err := s.svc.SelectWinner(ctxAt(windowEnd), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotClosed))
	})

	s.Run("rejects an empty ledger", func() {
		d := s.createDraw()

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNoRegistrants))
	})

	s.Run("rejects a second selection", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, random)
		s.Require().NoError(err)

		_, err = s.svc.SelectWinner(ctxAt(afterClose), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWinnerAlreadySelected))
	})

	s.Run("already-selected outranks open window", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, random)
		s.Require().NoError(err)

		_, err = s.svc.SelectWinner(ctxAt(duringOpen), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWinnerAlreadySelected))
	})

	s.Run("open window outranks empty ledger", func() {
		d := s.createDraw()

		_, err := s.svc.SelectWinner(ctxAt(duringOpen), d.ID, random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotClosed))
	})

	s.Run("returns not_found for an unknown draw", func() {
		_, err := s.svc.SelectWinner(ctxAt(afterClose), id.DrawID(uuid.New()), random)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects a malformed selection request", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom, Email: "a@b.c"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestSelectWinnerManual covers the manual strategy's membership check.
func (s *DrawServiceSuite) TestSelectWinnerManual() {
	s.Run("commits the designated registrant", func() {
		d := s.createDraw()
		users := s.registerUsers(d, 3)

		resolved, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectManual, UserID: users[1]})
		s.Require().NoError(err)
		s.Equal(users[1], *resolved.Winner)
		s.Equal(models.ResolutionManual, *resolved.Method)
	})

	s.Run("rejects a non-registrant and leaves the draw unresolved", func() {
		d := s.createDraw()
		s.registerUsers(d, 3)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectManual, UserID: id.UserID(uuid.New())})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotARegistrant))

		detail, err := s.svc.Get(ctxAt(afterClose), d.ID)
		s.Require().NoError(err)
		s.False(detail.Draw.Resolved())
	})
}

// TestSelectWinnerEmail covers the email strategy against a mocked identity
// collaborator.
func (s *DrawServiceSuite) TestSelectWinnerEmail() {
	newResolver := func() *mocks.MockResolver {
		ctrl := gomock.NewController(s.T())
		resolver := mocks.NewMockResolver(ctrl)
		s.svc.resolver = resolver
		return resolver
	}

	s.Run("resolves the email and commits the registrant", func() {
		d := s.createDraw()
		users := s.registerUsers(d, 3)
		resolver := newResolver()
		resolver.EXPECT().
			ResolveEmail(gomock.Any(), "second@example.com").
			Return(users[1], nil)

		resolved, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectEmail, Email: "second@example.com"})
		s.Require().NoError(err)
		s.Equal(users[1], *resolved.Winner)
		s.Equal(models.ResolutionEmail, *resolved.Method)
	})

	s.Run("rejects an email that resolves to a non-registrant", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		resolver := newResolver()
		resolver.EXPECT().
			ResolveEmail(gomock.Any(), "stranger@example.com").
			Return(id.UserID(uuid.New()), nil)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectEmail, Email: "stranger@example.com"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotARegistrant))
	})

	s.Run("rejects an email with no known identity", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		resolver := newResolver()
		resolver.EXPECT().
			ResolveEmail(gomock.Any(), "ghost@example.com").
			Return(id.UserID{}, sentinel.ErrNotFound)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectEmail, Email: "ghost@example.com"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("fails membership when the identity service is unavailable", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		resolver := newResolver()
		resolver.EXPECT().
			ResolveEmail(gomock.Any(), "anyone@example.com").
			Return(id.UserID{}, sentinel.ErrUnavailable)

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectEmail, Email: "anyone@example.com"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotARegistrant))

		detail, getErr := s.svc.Get(ctxAt(afterClose), d.ID)
		s.Require().NoError(getErr)
		s.False(detail.Draw.Resolved())
	})

	s.Run("fails membership when no resolver is configured", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)
		s.svc.resolver = nil

		_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectEmail, Email: "anyone@example.com"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotARegistrant))
	})
}

// TestSelectWinnerRace drives concurrent selections at one draw and checks
// that exactly one commit lands.
func (s *DrawServiceSuite) TestSelectWinnerRace() {
	d := s.createDraw()
	s.registerUsers(d, 5)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, alreadySelected int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case dErrors.HasCode(err, dErrors.CodeWinnerAlreadySelected):
			alreadySelected++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, successes)
	s.Equal(attempts-1, alreadySelected)
	s.Len(s.emitter.Events(), 1)
}

// TestRandomSelectionFairness checks the default generator spreads picks
// roughly uniformly across the ledger.
func (s *DrawServiceSuite) TestRandomSelectionFairness() {
	entries := make([]models.RegistrationEntry, 4)
	counts := make(map[id.UserID]int, len(entries))
	for i := range entries {
		entries[i] = models.RegistrationEntry{Registrant: id.UserID(uuid.New()), RegisteredAt: duringOpen, Seq: int64(i)}
	}

	svc := New(s.draws, s.ledger) // default runtime-seeded generator
	const rounds = 8000
	for range rounds {
		winner, err := svc.pickWinner(entries, models.SelectRandom, id.UserID{})
		s.Require().NoError(err)
		counts[winner]++
	}

	s.Require().Len(counts, len(entries), "every registrant should win at least once")
	expected := rounds / len(entries)
	for registrant, count := range counts {
		s.InDelta(expected, count, float64(expected)/4, "registrant %s drawn disproportionately", registrant)
	}
}

// TestSelectWinnerTimestamp pins the resolution timestamp to the
// request-scoped clock, not the wall clock.
func (s *DrawServiceSuite) TestSelectWinnerTimestamp() {
	d := s.createDraw()
	s.registerUsers(d, 1)
	at := afterClose.Add(73 * time.Minute)

	resolved, err := s.svc.SelectWinner(ctxAt(at), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
	s.Require().NoError(err)
	s.True(resolved.ResolvedAt.Equal(at))
}
