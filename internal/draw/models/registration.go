package models

import (
	"time"

	id "luckydraw/pkg/domain"
)

// RegistrationEntry is one row in a draw's append-only ledger. Entries are
// never mutated or deleted individually; removing a draw cascades its ledger.
//
// (DrawID, Registrant) is the dedup key. Seq breaks RegisteredAt ties and
// fixes the canonical iteration order used by List and Export.
type RegistrationEntry struct {
	DrawID       id.DrawID
	Registrant   id.UserID
	ContactPhone string
	RegisteredAt time.Time
	Seq          int64
}
