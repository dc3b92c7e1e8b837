// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ecoplagas/backend/internal/core"
	"github.com/ecoplagas/backend/internal/middleware"
	"github.com/ecoplagas/backend/internal/session"
)

type SessionManager interface {
	Refresh(ctx context.Context, identity session.Identity) error
	DestroyAllForUser(
		ctx context.Context,
		w http.ResponseWriter,
		userID int64,
		keep string,
	) error
}

type Handler struct {
	service   *Service
	sessions  SessionManager
	validator *validator.Validate
}

func NewHandler(service *Service, sessions SessionManager) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	requireSession func(http.Handler) http.Handler,
) {
	r.Route("/api/usuario", func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
		r.Delete("/", h.DeleteAccount)
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	user, err := h.service.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Usuario no encontrado")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(user))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := middleware.GetIdentity(ctx)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Datos inválidos")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, passwordChanged, err := h.service.UpdateProfile(ctx, identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoChanges):
			core.BadRequest(w, "No hay datos para actualizar")
		case errors.Is(err, core.ErrDuplicateKey):
			core.JSONError(w, core.DuplicateError("El correo electrónico ya está en uso"))
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "Usuario no encontrado")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	updated := session.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	}
	if err := h.sessions.Refresh(ctx, updated); err != nil {
		slog.WarnContext(ctx, "refresh session identity",
			"user_id", user.ID,
			"error", err,
		)
	}

	if passwordChanged {
		keep := middleware.GetSessionID(ctx)
		if err := h.sessions.DestroyAllForUser(ctx, w, user.ID, keep); err != nil {
			core.InternalServerError(w, err)
			return
		}
	}

	core.OK(w, UpdateProfileResponse{
		Success: true,
		Message: "Perfil actualizado correctamente",
		User:    ToProfileResponse(user),
	})
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := middleware.GetIdentity(ctx)

	if err := h.service.DeleteAccount(ctx, identity.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Usuario no encontrado")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if err := h.sessions.DestroyAllForUser(ctx, w, identity.UserID, ""); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DeleteResponse{
		Success: true,
		Message: "Usuario eliminado correctamente",
	})
}
