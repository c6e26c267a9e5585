//go:build integration

package draw_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"luckydraw/internal/draw/models"
	"luckydraw/internal/draw/store/draw"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
	"luckydraw/pkg/testutil/containers"
)

type PostgresDrawStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *draw.Postgres
}

func TestPostgresDrawStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDrawStoreSuite))
}

func (s *PostgresDrawStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = draw.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresDrawStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "draws"))
}

func newTestDraw(s *PostgresDrawStoreSuite) *models.Draw {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	d, err := models.NewDraw(id.DrawID(uuid.New()), id.PropertyID(uuid.New()), start, start.AddDate(0, 0, 7), start.Add(-time.Hour))
	s.Require().NoError(err)
	return d
}

// TestRoundTrip verifies rows survive the write-read cycle with nullable
// resolution fields intact.
func (s *PostgresDrawStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))

	found, err := s.store.FindByID(ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.PropertyRef, found.PropertyRef)
	s.True(found.WindowStart.Equal(d.WindowStart))
	s.True(found.WindowEnd.Equal(d.WindowEnd))
	s.False(found.Resolved())
	s.Nil(found.Method)
	s.Nil(found.ResolvedAt)
}

// TestCreateConflict verifies the primary key rejects duplicate draws.
func (s *PostgresDrawStoreSuite) TestCreateConflict() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))
	s.Require().ErrorIs(s.store.Create(ctx, d), sentinel.ErrConflict)
}

// TestExecuteCommitsWinner verifies the FOR UPDATE transaction persists the
// resolution fields.
func (s *PostgresDrawStoreSuite) TestExecuteCommitsWinner() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))

	winner := id.UserID(uuid.New())
	resolvedAt := d.WindowEnd.Add(time.Hour)
	updated, err := s.store.Execute(ctx, d.ID,
		func(cur *models.Draw) error { return cur.CanResolve(resolvedAt) },
		func(cur *models.Draw) { cur.ApplyResolution(winner, models.ResolutionManual, resolvedAt) },
	)
	s.Require().NoError(err)
	s.Require().NotNil(updated.Winner)
	s.Equal(winner, *updated.Winner)

	found, err := s.store.FindByID(ctx, d.ID)
	s.Require().NoError(err)
	s.Require().True(found.Resolved())
	s.Equal(winner, *found.Winner)
	s.Equal(models.ResolutionManual, *found.Method)
	s.True(found.ResolvedAt.Equal(resolvedAt))
}

// TestExecuteRollsBackOnValidationFailure verifies a failed precondition
// leaves the row untouched.
func (s *PostgresDrawStoreSuite) TestExecuteRollsBackOnValidationFailure() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))

	// Window still open at this instant, so CanResolve fails.
	_, err := s.store.Execute(ctx, d.ID,
		func(cur *models.Draw) error { return cur.CanResolve(d.WindowStart.Add(time.Hour)) },
		func(cur *models.Draw) {
			cur.ApplyResolution(id.UserID(uuid.New()), models.ResolutionRandom, d.WindowEnd.Add(time.Hour))
		},
	)
	s.Require().Error(err)

	found, err := s.store.FindByID(ctx, d.ID)
	s.Require().NoError(err)
	s.False(found.Resolved())
}

// TestConcurrentExecute drives racing commits through FOR UPDATE and checks
// exactly one lands.
func (s *PostgresDrawStoreSuite) TestConcurrentExecute() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))
	resolvedAt := d.WindowEnd.Add(time.Hour)

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Execute(ctx, d.ID,
				func(cur *models.Draw) error { return cur.CanResolve(resolvedAt) },
				func(cur *models.Draw) {
					cur.ApplyResolution(id.UserID(uuid.New()), models.ResolutionRandom, resolvedAt)
				},
			)
			if err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), successCount.Load())
}

// TestDelete verifies removal and the not-found result.
func (s *PostgresDrawStoreSuite) TestDelete() {
	ctx := context.Background()
	d := newTestDraw(s)
	s.Require().NoError(s.store.Create(ctx, d))

	s.Require().NoError(s.store.Delete(ctx, d.ID))
	_, err := s.store.FindByID(ctx, d.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().ErrorIs(s.store.Delete(ctx, d.ID), sentinel.ErrNotFound)
}
