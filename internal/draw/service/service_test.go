package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"luckydraw/internal/draw/models"
	drawstore "luckydraw/internal/draw/store/draw"
	regstore "luckydraw/internal/draw/store/registration"
	"luckydraw/internal/notify"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/sentinel"
	"luckydraw/pkg/requestcontext"
)

var (
	windowStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	beforeOpen  = windowStart.Add(-time.Hour)
	duringOpen  = windowStart.Add(time.Hour)
	afterClose  = windowEnd.Add(time.Hour)
)

type DrawServiceSuite struct {
	suite.Suite
	draws   *drawstore.InMemory
	ledger  *regstore.InMemory
	emitter *notify.MemoryEmitter
	svc     *DrawService
}

func (s *DrawServiceSuite) SetupTest() {
	s.draws = drawstore.NewInMemory()
	s.ledger = regstore.NewInMemory()
	s.emitter = notify.NewMemoryEmitter()
	s.svc = New(s.draws, s.ledger,
		WithNotifier(s.emitter),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestDrawServiceSuite(t *testing.T) {
	suite.Run(t, new(DrawServiceSuite))
}

func ctxAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}

func ctxAs(user id.UserID, now time.Time) context.Context {
	return requestcontext.WithUserID(ctxAt(now), user)
}

func (s *DrawServiceSuite) createDraw() *models.Draw {
	d, err := s.svc.CreateDraw(ctxAt(beforeOpen), id.PropertyID(uuid.New()), windowStart, windowEnd)
	s.Require().NoError(err)
	return d
}

func (s *DrawServiceSuite) registerUsers(d *models.Draw, n int) []id.UserID {
	users := make([]id.UserID, n)
	for i := range users {
		users[i] = id.UserID(uuid.New())
		_, err := s.svc.Register(ctxAs(users[i], duringOpen.Add(time.Duration(i)*time.Minute)), d.ID, "+1-555-0100")
		s.Require().NoError(err)
	}
	return users
}

// TestCreateDraw verifies the administrative enrollment operation.
func (s *DrawServiceSuite) TestCreateDraw() {
	s.Run("creates an unresolved draw with UTC window bounds", func() {
		d := s.createDraw()
		s.False(d.Resolved())
		s.True(d.WindowStart.Equal(windowStart))
		s.True(d.WindowEnd.Equal(windowEnd))

		detail, err := s.svc.Get(ctxAt(duringOpen), d.ID)
		s.Require().NoError(err)
		s.Equal(d.ID, detail.Draw.ID)
		s.Empty(detail.Registrations)
	})

	s.Run("rejects an inverted window", func() {
		_, err := s.svc.CreateDraw(ctxAt(beforeOpen), id.PropertyID(uuid.New()), windowEnd, windowStart)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects a missing property reference", func() {
		_, err := s.svc.CreateDraw(ctxAt(beforeOpen), id.PropertyID{}, windowStart, windowEnd)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestRegister covers the registration path: the happy case, input
// validation, and window gating.
func (s *DrawServiceSuite) TestRegister() {
	s.Run("accepts a registration during the active window", func() {
		d := s.createDraw()
		user := id.UserID(uuid.New())

		entry, err := s.svc.Register(ctxAs(user, duringOpen), d.ID, "+1-555-0142")
		s.Require().NoError(err)
		s.Equal(user, entry.Registrant)
		s.Equal("+1-555-0142", entry.ContactPhone)
		s.True(entry.RegisteredAt.Equal(duringOpen))
	})

	s.Run("rejects an unauthenticated caller", func() {
		d := s.createDraw()
		_, err := s.svc.Register(ctxAt(duringOpen), d.ID, "+1-555-0100")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects a blank contact phone", func() {
		d := s.createDraw()
		_, err := s.svc.Register(ctxAs(id.UserID(uuid.New()), duringOpen), d.ID, "   ")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("rejects before the window opens", func() {
		d := s.createDraw()
		_, err := s.svc.Register(ctxAs(id.UserID(uuid.New()), beforeOpen), d.ID, "+1-555-0100")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotActive))
		s.Contains(dErrors.MessageOf(err), "upcoming")
	})

	s.Run("rejects after the window closes", func() {
		d := s.createDraw()
		_, err := s.svc.Register(ctxAs(id.UserID(uuid.New()), afterClose), d.ID, "+1-555-0100")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeWindowNotActive))
		s.Contains(dErrors.MessageOf(err), "closed")
	})

	s.Run("accepts at the exact window boundaries", func() {
		d := s.createDraw()
		_, err := s.svc.Register(ctxAs(id.UserID(uuid.New()), windowStart), d.ID, "+1-555-0100")
		s.Require().NoError(err)
		_, err = s.svc.Register(ctxAs(id.UserID(uuid.New()), windowEnd), d.ID, "+1-555-0100")
		s.Require().NoError(err)
	})

	s.Run("returns not_found for an unknown draw", func() {
		_, err := s.svc.Register(ctxAs(id.UserID(uuid.New()), duringOpen), id.DrawID(uuid.New()), "+1-555-0100")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("rejects a repeat registration and keeps one ledger entry", func() {
		d := s.createDraw()
		user := id.UserID(uuid.New())

		_, err := s.svc.Register(ctxAs(user, duringOpen), d.ID, "+1-555-0100")
		s.Require().NoError(err)

		_, err = s.svc.Register(ctxAs(user, duringOpen.Add(time.Minute)), d.ID, "+1-555-0999")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))

		detail, err := s.svc.Get(ctxAt(duringOpen), d.ID)
		s.Require().NoError(err)
		s.Require().Len(detail.Registrations, 1)
		s.Equal("+1-555-0100", detail.Registrations[0].ContactPhone)
	})
}

// TestWinnerView verifies the public resolution view before and after
// resolution.
func (s *DrawServiceSuite) TestWinnerView() {
	s.Run("reports unresolved before selection", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		ann, err := s.svc.Winner(ctxAt(duringOpen), d.ID)
		s.Require().NoError(err)
		s.False(ann.Resolved)
		s.Nil(ann.Winner)
	})

	s.Run("reports the committed winner after selection", func() {
		d := s.createDraw()
		users := s.registerUsers(d, 3)

		s.svc.randIntN = func(int) int { return 1 }
		resolved, err := s.svc.SelectWinner(ctxAt(afterClose), d.ID, models.SelectionRequest{Mode: models.SelectRandom})
		s.Require().NoError(err)
		s.Equal(users[1], *resolved.Winner)

		ann, err := s.svc.Winner(ctxAt(afterClose), d.ID)
		s.Require().NoError(err)
		s.True(ann.Resolved)
		s.Equal(users[1], *ann.Winner)
		s.Equal(models.ResolutionRandom, *ann.Method)
	})

	s.Run("returns not_found for an unknown draw", func() {
		_, err := s.svc.Winner(ctxAt(duringOpen), id.DrawID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestDelete verifies the administrative cascade.
func (s *DrawServiceSuite) TestDelete() {
	s.Run("removes the draw and its ledger", func() {
		d := s.createDraw()
		s.registerUsers(d, 2)

		s.Require().NoError(s.svc.Delete(ctxAt(duringOpen), d.ID))

		_, err := s.svc.Get(ctxAt(duringOpen), d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		count, err := s.ledger.CountByDraw(context.Background(), d.ID)
		s.Require().NoError(err)
		s.Zero(count)
	})

	s.Run("returns not_found for an unknown draw", func() {
		err := s.svc.Delete(ctxAt(duringOpen), id.DrawID(uuid.New()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestExport verifies the CSV export carries every ledger entry in canonical
// order and is stable across repeated runs.
func (s *DrawServiceSuite) TestExport() {
	s.Run("exports every entry in registration order", func() {
		d := s.createDraw()
		users := s.registerUsers(d, 3)

		var buf strings.Builder
		s.Require().NoError(s.svc.Export(ctxAt(afterClose), d.ID, &buf))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		s.Require().Len(lines, 4)
		s.Equal("registrant_id,contact_phone,registered_at", lines[0])
		for i, user := range users {
			s.Contains(lines[i+1], user.String())
		}
	})

	s.Run("repeated exports of an unchanged ledger are byte-identical", func() {
		d := s.createDraw()
		s.registerUsers(d, 4)

		var first, second strings.Builder
		s.Require().NoError(s.svc.Export(ctxAt(afterClose), d.ID, &first))
		s.Require().NoError(s.svc.Export(ctxAt(afterClose), d.ID, &second))
		s.Equal(first.String(), second.String())
	})

	s.Run("exports header only for an empty ledger", func() {
		d := s.createDraw()

		var buf strings.Builder
		s.Require().NoError(s.svc.Export(ctxAt(duringOpen), d.ID, &buf))
		s.Equal("registrant_id,contact_phone,registered_at\n", buf.String())
	})

	s.Run("returns not_found for an unknown draw", func() {
		var buf strings.Builder
		err := s.svc.Export(ctxAt(duringOpen), id.DrawID(uuid.New()), &buf)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestWrapStoreErr verifies that coded rejections coming out of store
// callbacks keep their codes while raw storage errors are translated.
func (s *DrawServiceSuite) TestWrapStoreErr() {
	s.Run("passes a coded error through unchanged", func() {
		coded := dErrors.New(dErrors.CodeWinnerAlreadySelected, "winner has already been selected")
		err := wrapStoreErr(coded, "draw not found")
		s.Equal(dErrors.CodeWinnerAlreadySelected, dErrors.CodeOf(err))
		s.Equal(coded.Error(), err.Error())
	})

	s.Run("passes a wrapped coded error through unchanged", func() {
		coded := dErrors.New(dErrors.CodeNoRegistrants, "draw has no registrants")
		err := wrapStoreErr(fmt.Errorf("execute: %w", coded), "draw not found")
		s.Equal(dErrors.CodeNoRegistrants, dErrors.CodeOf(err))
	})

	s.Run("maps the not-found sentinel", func() {
		err := wrapStoreErr(sentinel.ErrNotFound, "draw not found")
		s.Equal(dErrors.CodeNotFound, dErrors.CodeOf(err))
	})

	s.Run("maps the unavailable sentinel", func() {
		err := wrapStoreErr(sentinel.ErrUnavailable, "draw not found")
		s.Equal(dErrors.CodeUnavailable, dErrors.CodeOf(err))
	})

	s.Run("hides unknown errors behind internal", func() {
		err := wrapStoreErr(errors.New("connection reset by peer"), "draw not found")
		s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))
	})
}
