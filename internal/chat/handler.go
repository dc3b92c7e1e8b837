// AngelaMos | 2026
// handler.go

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ecoplagas/backend/internal/core"
)

const (
	msgNotConfigured   = "Error de configuración: El servicio de IA no está disponible."
	msgEmptyMultipart  = "Por favor, escribe un mensaje o adjunta una imagen."
	msgEmptyJSON       = "Por favor, escribe un mensaje."
	msgImageProcessing = "Error al procesar la imagen. Intenta con otra imagen."
	msgImageTooLarge   = "La imagen supera el tamaño máximo permitido."
)

type Asker interface {
	Configured() bool
	Ask(ctx context.Context, req Request) (*Reply, error)
}

type HandlerConfig struct {
	MaxUploadBytes int64
	Image          ImageOptions
}

type Handler struct {
	asker Asker
	cfg   HandlerConfig
}

func NewHandler(asker Asker, cfg HandlerConfig) *Handler {
	return &Handler{asker: asker, cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/api/chatbot", h.Chat)
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if !h.asker.Configured() {
		reply(w, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	var (
		req Request
		ok  bool
	)
	if isMultipart(r) {
		req, ok = h.readMultipart(w, r)
	} else {
		req, ok = h.readJSON(w, r)
	}
	if !ok {
		return
	}

	answer, err := h.asker.Ask(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrEmptyInput) {
			reply(w, http.StatusBadRequest, msgEmptyJSON)
			return
		}

		category := Classify(err)
		slog.ErrorContext(r.Context(), "chat provider call failed",
			"category", category.String(),
			"has_image", req.Image != nil,
			"error", err,
		)
		reply(w, http.StatusInternalServerError, category.Message())
		return
	}

	core.OK(w, answer)
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
		strings.TrimSpace(body.Message) == "" {
		reply(w, http.StatusBadRequest, msgEmptyJSON)
		return Request{}, false
	}

	return Request{Message: body.Message}, true
}

func (h *Handler) readMultipart(w http.ResponseWriter, r *http.Request) (Request, bool) {
	if r.ContentLength > h.cfg.MaxUploadBytes {
		reply(w, http.StatusRequestEntityTooLarge, msgImageTooLarge)
		return Request{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reply(w, http.StatusRequestEntityTooLarge, msgImageTooLarge)
			return Request{}, false
		}
		reply(w, http.StatusBadRequest, msgImageProcessing)
		return Request{}, false
	}

	req := Request{Message: strings.TrimSpace(r.FormValue("message"))}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		if req.Message == "" {
			reply(w, http.StatusBadRequest, msgEmptyMultipart)
			return Request{}, false
		}
		return req, true
	case err != nil:
		reply(w, http.StatusBadRequest, msgImageProcessing)
		return Request{}, false
	}
	defer file.Close() //nolint:errcheck // multipart temp file

	raw, err := io.ReadAll(file)
	if err != nil || len(raw) == 0 {
		slog.WarnContext(r.Context(), "unreadable chat image upload",
			"filename", header.Filename,
			"error", err,
		)
		reply(w, http.StatusBadRequest, msgImageProcessing)
		return Request{}, false
	}

	data, mimeType, err := NormalizeImage(raw, h.cfg.Image)
	if errors.Is(err, ErrImageTooLarge) {
		slog.WarnContext(r.Context(), "chat image rejected",
			"filename", header.Filename,
			"error", err,
		)
		reply(w, http.StatusBadRequest, msgImageProcessing)
		return Request{}, false
	}
	if err != nil {
		slog.WarnContext(r.Context(), "image normalization failed, sending original bytes",
			"filename", header.Filename,
			"error", err,
		)
		data = raw
		mimeType = header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
	}

	req.Image = &Image{Data: data, MIME: mimeType}
	return req, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func reply(w http.ResponseWriter, status int, message string) {
	core.JSON(w, status, Reply{Response: message})
}
