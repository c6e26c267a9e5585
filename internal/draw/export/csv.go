// Package export renders a ledger snapshot into deterministic CSV. Two
// exports of an unchanged ledger are byte-identical; any generation timestamp
// belongs in the filename, never in the row data.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
)

var header = []string{"registrant_id", "contact_phone", "registered_at"}

// WriteCSV streams entries to w in their given (canonical) order, one row per
// ledger entry. Timestamps are RFC 3339 in UTC.
func WriteCSV(w io.Writer, entries []models.RegistrationEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Registrant.String(),
			e.ContactPhone,
			e.RegisteredAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename returns the download filename for a draw's export.
func Filename(drawID id.DrawID) string {
	return fmt.Sprintf("draw-registrations-%s.csv", drawID)
}
