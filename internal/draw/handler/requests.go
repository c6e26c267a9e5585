package handler

import (
	"time"

	"luckydraw/internal/draw/models"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
)

// CreateDrawRequest enrolls a property into the lucky draw.
type CreateDrawRequest struct {
	PropertyRef string    `json:"propertyRef"`
	WindowStart time.Time `json:"windowStart"`
	WindowEnd   time.Time `json:"windowEnd"`
}

func (r CreateDrawRequest) propertyRef() (id.PropertyID, error) {
	ref, err := id.ParsePropertyID(r.PropertyRef)
	if err != nil {
		return id.PropertyID{}, dErrors.New(dErrors.CodeBadRequest, "propertyRef must be a valid UUID")
	}
	return ref, nil
}

// RegisterRequest is the registrant-facing entry body. Identity comes from
// the session, never the body.
type RegisterRequest struct {
	ContactPhone string `json:"contactPhone"`
}

// ManualSelectRequest targets a specific registered user.
type ManualSelectRequest struct {
	UserID string `json:"userId"`
}

func (r ManualSelectRequest) selection() (models.SelectionRequest, error) {
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return models.SelectionRequest{}, dErrors.New(dErrors.CodeBadRequest, "userId must be a valid UUID")
	}
	return models.SelectionRequest{Mode: models.SelectManual, UserID: userID}, nil
}

// EmailSelectRequest targets a registrant by the email the identity
// collaborator knows them under.
type EmailSelectRequest struct {
	Email string `json:"email"`
}

func (r EmailSelectRequest) selection() (models.SelectionRequest, error) {
	if r.Email == "" {
		return models.SelectionRequest{}, dErrors.New(dErrors.CodeBadRequest, "email is required")
	}
	return models.SelectionRequest{Mode: models.SelectEmail, Email: r.Email}, nil
}
