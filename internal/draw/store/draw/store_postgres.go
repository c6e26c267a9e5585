package draw

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

// Schema creates the draws table. Applied at startup; safe to re-run.
const Schema = `
CREATE TABLE IF NOT EXISTS draws (
	id                UUID PRIMARY KEY,
	property_ref      UUID NOT NULL,
	window_start      TIMESTAMPTZ NOT NULL,
	window_end        TIMESTAMPTZ NOT NULL,
	winner_id         UUID,
	resolution_method TEXT,
	resolved_at       TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL,
	CHECK (window_start < window_end)
)`

// Postgres persists draws in PostgreSQL via database/sql.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema applies the table definition.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure draws schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, d *models.Draw) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO draws (id, property_ref, window_start, window_end, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID.String(), d.PropertyRef.String(), d.WindowStart, d.WindowEnd, d.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create draw: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, drawID id.DrawID) (*models.Draw, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, property_ref, window_start, window_end,
		       winner_id, resolution_method, resolved_at, created_at
		FROM draws WHERE id = $1`, drawID.String())
	return scanDraw(row)
}

// Execute loads the draw FOR UPDATE, runs validate, applies mutate, and
// writes the result within one transaction. Concurrent callers serialize on
// the row lock, so exactly one of two racing resolutions can succeed.
func (s *Postgres) Execute(ctx context.Context, drawID id.DrawID, validate func(*models.Draw) error, mutate func(*models.Draw)) (*models.Draw, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin draw tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, property_ref, window_start, window_end,
		       winner_id, resolution_method, resolved_at, created_at
		FROM draws WHERE id = $1 FOR UPDATE`, drawID.String())
	d, err := scanDraw(row)
	if err != nil {
		return nil, err
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)

	var winner, method sql.NullString
	var resolvedAt sql.NullTime
	if d.Winner != nil {
		winner = sql.NullString{String: d.Winner.String(), Valid: true}
	}
	if d.Method != nil {
		method = sql.NullString{String: string(*d.Method), Valid: true}
	}
	if d.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: *d.ResolvedAt, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE draws
		SET winner_id = $2, resolution_method = $3, resolved_at = $4
		WHERE id = $1`,
		drawID.String(), winner, method, resolvedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update draw: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit draw tx: %w", err)
	}
	return d, nil
}

func (s *Postgres) Delete(ctx context.Context, drawID id.DrawID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM draws WHERE id = $1`, drawID.String())
	if err != nil {
		return fmt.Errorf("delete draw: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete draw rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraw(row rowScanner) (*models.Draw, error) {
	var (
		d                  models.Draw
		drawID, propRef    string
		winner, method     sql.NullString
		resolvedAt         sql.NullTime
		start, end, create time.Time
	)
	err := row.Scan(&drawID, &propRef, &start, &end, &winner, &method, &resolvedAt, &create)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan draw: %w", err)
	}

	parsedID, err := id.ParseDrawID(drawID)
	if err != nil {
		return nil, fmt.Errorf("scan draw id: %w", err)
	}
	parsedRef, err := id.ParsePropertyID(propRef)
	if err != nil {
		return nil, fmt.Errorf("scan draw property ref: %w", err)
	}
	d.ID = parsedID
	d.PropertyRef = parsedRef
	d.WindowStart = start
	d.WindowEnd = end
	d.CreatedAt = create

	if winner.Valid {
		w, err := id.ParseUserID(winner.String)
		if err != nil {
			return nil, fmt.Errorf("scan draw winner: %w", err)
		}
		d.Winner = &w
	}
	if method.Valid {
		m := models.ResolutionMethod(method.String)
		d.Method = &m
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		d.ResolvedAt = &t
	}
	return &d, nil
}
