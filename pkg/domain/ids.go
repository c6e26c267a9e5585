// Package domain holds typed identifiers and domain primitives shared across
// the engine. Typed IDs prevent cross-type assignment at compile time; Parse
// functions enforce validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "luckydraw/pkg/domainerrors"
)

// DrawID identifies a single lucky-draw instance.
type DrawID uuid.UUID

// UserID identifies a registrant (owned by the identity collaborator).
type UserID uuid.UUID

// PropertyID is an opaque reference to the external listing a draw is bound
// to. The engine never dereferences or mutates it.
type PropertyID uuid.UUID

// ParseDrawID constructs a DrawID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseDrawID(s string) (DrawID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return DrawID{}, err
	}
	return DrawID(u), nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParsePropertyID constructs a PropertyID from external input.
func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PropertyID{}, err
	}
	return PropertyID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func (d DrawID) String() string     { return uuid.UUID(d).String() }
func (u UserID) String() string     { return uuid.UUID(u).String() }
func (p PropertyID) String() string { return uuid.UUID(p).String() }

// IsNil reports whether the ID is the zero value.
func (d DrawID) IsNil() bool     { return uuid.UUID(d) == uuid.Nil }
func (u UserID) IsNil() bool     { return uuid.UUID(u) == uuid.Nil }
func (p PropertyID) IsNil() bool { return uuid.UUID(p) == uuid.Nil }

// Text marshalling so typed IDs serialize as UUID strings in JSON payloads.

func (d DrawID) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DrawID) UnmarshalText(b []byte) error {
	id, err := ParseDrawID(string(b))
	if err != nil {
		return err
	}
	*d = id
	return nil
}

func (u UserID) MarshalText() ([]byte, error) { return []byte(u.String()), nil }
func (u *UserID) UnmarshalText(b []byte) error {
	id, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

func (p PropertyID) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *PropertyID) UnmarshalText(b []byte) error {
	id, err := ParsePropertyID(string(b))
	if err != nil {
		return err
	}
	*p = id
	return nil
}
