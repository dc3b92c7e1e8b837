// AngelaMos | 2026
// handler.go

package weather

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecoplagas/backend/internal/core"
)

type Provider interface {
	Lookup(ctx context.Context, city string) (*Report, error)
}

type Handler struct {
	provider Provider
}

func NewHandler(provider Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/clima", h.Lookup)
}

type LookupRequest struct {
	City string `json:"ciudad"`
}

func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Por favor ingresa una ciudad")
		return
	}

	report, err := h.provider.Lookup(r.Context(), req.City)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyInput):
			core.BadRequest(w, "Por favor ingresa una ciudad")
		case errors.Is(err, ErrCityNotFound):
			core.NotFound(w, "Ciudad no encontrada")
		default:
			slog.ErrorContext(r.Context(), "weather lookup failed",
				"city", req.City,
				"error", err,
			)
			core.JSON(w, http.StatusInternalServerError, core.ErrorResponse{
				Error: "Error al obtener datos del clima",
				Code:  "UPSTREAM_ERROR",
			})
		}
		return
	}

	core.OK(w, report)
}
