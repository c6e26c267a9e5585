// Package identity is the boundary to the external identity collaborator.
// The engine only needs one capability from it: resolving an email address to
// a user ID for email-mode winner selection. Authentication itself happens in
// middleware against tokens the collaborator issued.
package identity

import (
	"context"

	id "luckydraw/pkg/domain"
)

// Resolver maps an email address to the user ID it belongs to.
//
// Implementations return sentinel.ErrNotFound when the address resolves to no
// identity and sentinel.ErrUnavailable when the collaborator cannot be
// reached. The lookup always completes before the winner commit begins; no
// lock is held across it.
type Resolver interface {
	ResolveEmail(ctx context.Context, email string) (id.UserID, error)
}
