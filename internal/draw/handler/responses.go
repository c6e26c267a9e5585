package handler

import (
	"time"

	"luckydraw/internal/draw/cache"
	"luckydraw/internal/draw/models"
	"luckydraw/internal/draw/service"
)

// DrawResponse is the administrative draw view.
type DrawResponse struct {
	ID          string     `json:"id"`
	PropertyRef string     `json:"propertyRef"`
	WindowStart time.Time  `json:"windowStart"`
	WindowEnd   time.Time  `json:"windowEnd"`
	WindowState string     `json:"windowState"`
	Winner      *string    `json:"winner,omitempty"`
	Method      *string    `json:"resolutionMethod,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// RegistrationResponse is one ledger row in the administrative view. Contact
// phones appear here and in the export only; public views never carry them.
type RegistrationResponse struct {
	Registrant   string    `json:"registrant"`
	ContactPhone string    `json:"contactPhone"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// DrawDetailResponse is the draw plus its full registration list.
type DrawDetailResponse struct {
	DrawResponse
	Registrations []RegistrationResponse `json:"registrations"`
}

// WinnerResponse is the public-safe resolution view.
type WinnerResponse struct {
	Resolved bool           `json:"resolved"`
	Winner   *WinnerDetails `json:"winner,omitempty"`
}

// WinnerDetails carries only fields safe for unauthenticated callers.
type WinnerDetails struct {
	UserID     string    `json:"userId"`
	Method     string    `json:"method"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

func fromDraw(d *models.Draw, now time.Time) DrawResponse {
	resp := DrawResponse{
		ID:          d.ID.String(),
		PropertyRef: d.PropertyRef.String(),
		WindowStart: d.WindowStart,
		WindowEnd:   d.WindowEnd,
		WindowState: string(d.WindowState(now)),
	}
	if d.Resolved() {
		winner := d.Winner.String()
		method := string(*d.Method)
		resp.Winner = &winner
		resp.Method = &method
		resp.ResolvedAt = d.ResolvedAt
	}
	return resp
}

func fromDetail(detail *service.DrawDetail, now time.Time) DrawDetailResponse {
	resp := DrawDetailResponse{
		DrawResponse:  fromDraw(detail.Draw, now),
		Registrations: make([]RegistrationResponse, 0, len(detail.Registrations)),
	}
	for _, e := range detail.Registrations {
		resp.Registrations = append(resp.Registrations, RegistrationResponse{
			Registrant:   e.Registrant.String(),
			ContactPhone: e.ContactPhone,
			RegisteredAt: e.RegisteredAt,
		})
	}
	return resp
}

func fromAnnouncement(ann *cache.WinnerAnnouncement) WinnerResponse {
	resp := WinnerResponse{Resolved: ann.Resolved}
	if ann.Resolved && ann.Winner != nil {
		resp.Winner = &WinnerDetails{
			UserID:     ann.Winner.String(),
			Method:     string(*ann.Method),
			ResolvedAt: *ann.ResolvedAt,
		}
	}
	return resp
}
