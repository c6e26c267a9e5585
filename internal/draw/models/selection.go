package models

import (
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
)

// SelectionMode discriminates how a winner is chosen. The mode is explicit:
// there is no field-presence inference, so a request can never silently slide
// from one strategy into another.
type SelectionMode string

const (
	SelectRandom SelectionMode = "random"
	SelectManual SelectionMode = "manual"
	SelectEmail  SelectionMode = "email"
)

// SelectionRequest is the tagged winner-selection request. Exactly the fields
// the mode requires may be set.
type SelectionRequest struct {
	Mode   SelectionMode
	UserID id.UserID // manual mode only
	Email  string    // email mode only
}

// Validate enforces the mode/payload pairing.
func (r SelectionRequest) Validate() error {
	switch r.Mode {
	case SelectRandom:
		if !r.UserID.IsNil() || r.Email != "" {
			return dErrors.New(dErrors.CodeBadRequest, "random selection takes no target")
		}
	case SelectManual:
		if r.UserID.IsNil() {
			return dErrors.New(dErrors.CodeBadRequest, "manual selection requires a user id")
		}
		if r.Email != "" {
			return dErrors.New(dErrors.CodeBadRequest, "manual selection takes no email")
		}
	case SelectEmail:
		if r.Email == "" {
			return dErrors.New(dErrors.CodeBadRequest, "email selection requires an address")
		}
		if !r.UserID.IsNil() {
			return dErrors.New(dErrors.CodeBadRequest, "email selection takes no user id")
		}
	default:
		return dErrors.New(dErrors.CodeBadRequest, "unknown selection mode")
	}
	return nil
}

// Method maps the selection mode to the resolution method recorded on the
// draw.
func (r SelectionRequest) Method() ResolutionMethod {
	switch r.Mode {
	case SelectManual:
		return ResolutionManual
	case SelectEmail:
		return ResolutionEmail
	default:
		return ResolutionRandom
	}
}
