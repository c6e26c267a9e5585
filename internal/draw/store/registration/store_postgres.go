package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	"luckydraw/pkg/platform/sentinel"
)

// Schema creates the registrations table. The unique index is what makes the
// check-then-insert atomic; the seq column fixes insertion order for
// registered_at ties.
const Schema = `
CREATE TABLE IF NOT EXISTS registrations (
	seq           BIGSERIAL PRIMARY KEY,
	draw_id       UUID NOT NULL,
	registrant_id UUID NOT NULL,
	contact_phone TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL,
	UNIQUE (draw_id, registrant_id)
)`

// Postgres persists the registration ledger in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema applies the table definition.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure registrations schema: %w", err)
	}
	return nil
}

// Append inserts an entry; the unique constraint rejects duplicates, which
// surface as sentinel.ErrConflict.
func (s *Postgres) Append(ctx context.Context, entry models.RegistrationEntry) (models.RegistrationEntry, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO registrations (draw_id, registrant_id, contact_phone, registered_at)
		VALUES ($1, $2, $3, $4)
		RETURNING seq`,
		entry.DrawID.String(), entry.Registrant.String(), entry.ContactPhone, entry.RegisteredAt,
	).Scan(&entry.Seq)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.RegistrationEntry{}, sentinel.ErrConflict
		}
		return models.RegistrationEntry{}, fmt.Errorf("append registration: %w", err)
	}
	return entry, nil
}

func (s *Postgres) ListByDraw(ctx context.Context, drawID id.DrawID) ([]models.RegistrationEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, draw_id, registrant_id, contact_phone, registered_at
		FROM registrations
		WHERE draw_id = $1
		ORDER BY registered_at ASC, seq ASC`, drawID.String())
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []models.RegistrationEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations rows: %w", err)
	}
	return out, nil
}

func (s *Postgres) CountByDraw(ctx context.Context, drawID id.DrawID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE draw_id = $1`, drawID.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (s *Postgres) FindByDrawAndUser(ctx context.Context, drawID id.DrawID, userID id.UserID) (*models.RegistrationEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, draw_id, registrant_id, contact_phone, registered_at
		FROM registrations
		WHERE draw_id = $1 AND registrant_id = $2`,
		drawID.String(), userID.String())

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (s *Postgres) DeleteByDraw(ctx context.Context, drawID id.DrawID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE draw_id = $1`, drawID.String()); err != nil {
		return fmt.Errorf("delete registrations: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (models.RegistrationEntry, error) {
	var (
		entry          models.RegistrationEntry
		drawID, userID string
	)
	err := row.Scan(&entry.Seq, &drawID, &userID, &entry.ContactPhone, &entry.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RegistrationEntry{}, err
		}
		return models.RegistrationEntry{}, fmt.Errorf("scan registration: %w", err)
	}

	parsedDraw, err := id.ParseDrawID(drawID)
	if err != nil {
		return models.RegistrationEntry{}, fmt.Errorf("scan registration draw id: %w", err)
	}
	parsedUser, err := id.ParseUserID(userID)
	if err != nil {
		return models.RegistrationEntry{}, fmt.Errorf("scan registration user id: %w", err)
	}
	entry.DrawID = parsedDraw
	entry.Registrant = parsedUser
	return entry, nil
}
