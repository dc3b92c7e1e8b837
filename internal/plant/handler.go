// AngelaMos | 2026
// handler.go

package plant

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ecoplagas/backend/internal/core"
	"github.com/ecoplagas/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	v := core.NewValidator()

	//nolint:errcheck // tag name and func are static
	_ = v.RegisterValidation("riego", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || slices.Contains(wateringFrequencies, value)
	})

	return &Handler{
		service:   service,
		validator: v,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	requireSession func(http.Handler) http.Handler,
) {
	r.Route("/api/plantas", func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{plantID}", h.Update)
		r.Delete("/{plantID}", h.Delete)
	})

	r.With(requireSession).Get("/api/recordatorios", h.Reminders)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	plants, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPlantResponseList(plants))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req CreatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Datos inválidos")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, formatPlantValidationError(err))
		return
	}

	p, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, PlantEnvelope{Success: true, Plant: ToPlantResponse(p)})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, ok := plantID(w, r)
	if !ok {
		return
	}

	var req UpdatePlantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Datos inválidos")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, formatPlantValidationError(err))
		return
	}

	p, err := h.service.Update(r.Context(), identity.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFields):
			core.BadRequest(w, "No hay campos válidos para actualizar")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "Planta no encontrada")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, PlantEnvelope{Success: true, Plant: ToPlantResponse(p)})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	id, ok := plantID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "Planta no encontrada")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DeleteResponse{
		Success: true,
		Message: "Planta eliminada correctamente",
	})
}

func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	reminders, err := h.service.Reminders(r.Context(), identity.UserID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, reminders)
}

func plantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "plantID"), 10, 64)
	if err != nil || id <= 0 {
		core.BadRequest(w, "ID de planta inválido")
		return 0, false
	}
	return id, true
}

func formatPlantValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "nombre" {
		switch verrs[0].Tag() {
		case "required", "min":
			return "El nombre de la planta es obligatorio"
		}
	}
	return core.FormatValidationError(err)
}
