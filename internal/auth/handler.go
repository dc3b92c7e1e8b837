// AngelaMos | 2026
// handler.go

package auth

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

const redirectAfterAuth = "/usuario"

type SessionManager interface {
	Start(
		ctx context.Context,
		w http.ResponseWriter,
		r *http.Request,
		identity session.Identity,
	) (*session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
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

// RegisterRoutes mounts the authentication endpoints. limiter guards the
// credential-accepting routes.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	limiter func(http.Handler) http.Handler,
) {
	r.With(limiter).Post("/api/registro", h.Register)
	r.With(limiter).Post("/api/login", h.Login)
	r.Get("/api/login", h.LoginStatus)
	r.Get("/logout", h.Logout)
	r.Post("/api/logout", h.LogoutJSON)
	r.Get("/api/usuario_actual", h.CurrentUser)
	r.Get("/api/check_auth", h.CheckAuth)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Datos inválidos")
		return
	}

	req.Normalize()

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(
				w,
				core.DuplicateError("El correo electrónico ya está registrado"),
			)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.startSession(w, r, user, "Usuario registrado exitosamente")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "Datos inválidos")
		return
	}

	req.Normalize()

	if req.Email == "" || req.Password == "" {
		core.BadRequest(w, "Correo y contraseña son obligatorios")
		return
	}

	user, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "Credenciales incorrectas")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	h.startSession(w, r, user, "Inicio de sesión exitoso")
}

func (h *Handler) startSession(
	w http.ResponseWriter,
	r *http.Request,
	user *UserInfo,
	message string,
) {
	if _, err := h.sessions.Start(r.Context(), w, r, user.Identity()); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, AuthResponse{
		Success: true,
		Message: message,
		User: UserResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		},
		Redirect: redirectAfterAuth,
	})
}

func (h *Handler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		core.OK(w, LoginStatusResponse{LoggedIn: false})
		return
	}

	core.OK(w, LoginStatusResponse{
		LoggedIn: true,
		User:     toIdentityResponse(identity),
	})
}

// Logout serves plain links: it always ends on a redirect to the home page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.ErrorContext(r.Context(), "destroy session",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) LogoutJSON(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, LogoutResponse{
		Success: true,
		Message: "Sesión cerrada correctamente",
	})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		core.Unauthorized(w, "No autenticado")
		return
	}

	core.OK(w, toIdentityResponse(identity))
}

func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		core.OK(w, CheckAuthResponse{Authenticated: false})
		return
	}

	core.OK(w, CheckAuthResponse{
		Authenticated: true,
		User:          toIdentityResponse(identity),
	})
}

func toIdentityResponse(identity session.Identity) *IdentityResponse {
	return &IdentityResponse{
		ID:    identity.UserID,
		Name:  identity.Name,
		Email: identity.Email,
	}
}
