// Package handler is the thin HTTP layer over the draw service. It decodes,
// delegates, and writes envelopes; the invariants live below it.
package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"luckydraw/internal/draw/cache"
	"luckydraw/internal/draw/export"
	"luckydraw/internal/draw/models"
	"luckydraw/internal/draw/service"
	"luckydraw/internal/platform/middleware"
	id "luckydraw/pkg/domain"
	dErrors "luckydraw/pkg/domainerrors"
	"luckydraw/pkg/platform/httputil"
	"luckydraw/pkg/requestcontext"
)

// Service defines the engine operations the handler delegates to.
type Service interface {
	CreateDraw(ctx context.Context, propertyRef id.PropertyID, windowStart, windowEnd time.Time) (*models.Draw, error)
	Get(ctx context.Context, drawID id.DrawID) (*service.DrawDetail, error)
	Delete(ctx context.Context, drawID id.DrawID) error
	Register(ctx context.Context, drawID id.DrawID, contactPhone string) (*models.RegistrationEntry, error)
	SelectWinner(ctx context.Context, drawID id.DrawID, req models.SelectionRequest) (*models.Draw, error)
	Winner(ctx context.Context, drawID id.DrawID) (*cache.WinnerAnnouncement, error)
	Export(ctx context.Context, drawID id.DrawID, w io.Writer) error
}

// Handler wires draw endpoints to the draw service.
type Handler struct {
	service   Service
	logger    *slog.Logger
	validator middleware.JWTValidator
}

// New constructs a draw handler.
func New(svc Service, logger *slog.Logger, validator middleware.JWTValidator) *Handler {
	return &Handler{service: svc, logger: logger, validator: validator}
}

// Register mounts the draw routes. Admin routes require the admin capability
// from the caller's token; registration requires any authenticated caller;
// the winner view is public.
func (h *Handler) Register(r chi.Router) {
	auth := middleware.RequireAuth(h.validator, h.logger)

	r.Route("/draws", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireAdmin)
			r.Post("/", h.handleCreateDraw)
			r.Get("/{id}", h.handleGetDraw)
			r.Delete("/{id}", h.handleDeleteDraw)
			r.Post("/{id}/select-winner/random", h.handleSelectRandom)
			r.Post("/{id}/select-winner/manual", h.handleSelectManual)
			r.Post("/{id}/select-winner/email", h.handleSelectEmail)
			r.Get("/{id}/export", h.handleExport)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/{id}/register", h.handleRegister)
		})

		r.Get("/{id}/winner", h.handleWinner)
	})
}

func drawIDFromPath(r *http.Request) (id.DrawID, error) {
	drawID, err := id.ParseDrawID(chi.URLParam(r, "id"))
	if err != nil {
		return id.DrawID{}, dErrors.New(dErrors.CodeBadRequest, "draw id must be a valid UUID")
	}
	return drawID, nil
}

func (h *Handler) handleCreateDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDrawRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyRef, err := req.propertyRef()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.CreateDraw(ctx, propertyRef, req.WindowStart, req.WindowEnd)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromDraw(d, requestcontext.Now(ctx)))
}

func (h *Handler) handleGetDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.Get(ctx, drawID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDetail(detail, requestcontext.Now(ctx)))
}

func (h *Handler) handleDeleteDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, drawID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req RegisterRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Register(ctx, drawID, req.ContactPhone)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegistrationResponse{
		Registrant:   entry.Registrant.String(),
		ContactPhone: entry.ContactPhone,
		RegisteredAt: entry.RegisteredAt,
	})
}

func (h *Handler) handleSelectRandom(w http.ResponseWriter, r *http.Request) {
	h.selectWinner(w, r, func(*http.Request) (models.SelectionRequest, error) {
		// Random takes no body: there is no field whose presence could
		// silently switch the strategy.
		return models.SelectionRequest{Mode: models.SelectRandom}, nil
	})
}

func (h *Handler) handleSelectManual(w http.ResponseWriter, r *http.Request) {
	h.selectWinner(w, r, func(r *http.Request) (models.SelectionRequest, error) {
		var req ManualSelectRequest
		if err := httputil.Decode(r, &req); err != nil {
			return models.SelectionRequest{}, err
		}
		return req.selection()
	})
}

func (h *Handler) handleSelectEmail(w http.ResponseWriter, r *http.Request) {
	h.selectWinner(w, r, func(r *http.Request) (models.SelectionRequest, error) {
		var req EmailSelectRequest
		if err := httputil.Decode(r, &req); err != nil {
			return models.SelectionRequest{}, err
		}
		return req.selection()
	})
}

func (h *Handler) selectWinner(w http.ResponseWriter, r *http.Request, parse func(*http.Request) (models.SelectionRequest, error)) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	selection, err := parse(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	d, err := h.service.SelectWinner(ctx, drawID, selection)
	if err != nil {
		h.logger.WarnContext(ctx, "winner selection rejected",
			"request_id", requestcontext.RequestID(ctx),
			"draw_id", drawID,
			"mode", selection.Mode,
			"code", dErrors.CodeOf(err),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDraw(d, requestcontext.Now(ctx)))
}

func (h *Handler) handleWinner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ann, err := h.service.Winner(ctx, drawID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAnnouncement(ann))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	drawID, err := drawIDFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// Render to a buffer first so a failed export still gets a proper error
	// envelope instead of truncated CSV.
	var buf bytes.Buffer
	if err := h.service.Export(ctx, drawID, &buf); err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(drawID)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(ctx, "export write failed",
			"request_id", requestcontext.RequestID(ctx),
			"draw_id", drawID,
			"error", err,
		)
	}
}
