// AngelaMos | 2026
// errors.go

package chat

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrNotConfigured = errors.New("chat provider not configured")

type Category int

const (
	CategoryGeneric Category = iota
	CategoryAuthentication
	CategoryRateLimit
	CategoryQuota
	CategoryImage
)

func (c Category) String() string {
	switch c {
	case CategoryAuthentication:
		return "authentication"
	case CategoryRateLimit:
		return "rate_limit"
	case CategoryQuota:
		return "quota"
	case CategoryImage:
		return "image"
	default:
		return "generic"
	}
}

// Message is the user-facing text for the category. Provider error text
// is never shown to clients.
func (c Category) Message() string {
	switch c {
	case CategoryAuthentication:
		return "Error de autenticación: Verifica tu GROQ_API_KEY en el archivo .env"
	case CategoryRateLimit:
		return "Límite de tasa excedido. Intenta de nuevo en unos momentos."
	case CategoryQuota:
		return "Cuota excedida. Verifica tu plan en Groq."
	case CategoryImage:
		return "Error al analizar la imagen. Asegúrate de que sea una imagen válida de una planta."
	default:
		return "Error al comunicarme con la IA. Intenta de nuevo."
	}
}

// Classify maps a provider failure onto a Category using the status code
// and error kind the provider reported.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}

	if errors.Is(err, ErrImage) {
		return CategoryImage
	}

	status, detail := providerDetail(err)

	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		strings.Contains(detail, "authentication"),
		strings.Contains(detail, "invalid_api_key"):
		return CategoryAuthentication
	case status == http.StatusTooManyRequests:
		if strings.Contains(detail, "quota") || strings.Contains(detail, "insufficient") {
			return CategoryQuota
		}
		return CategoryRateLimit
	case strings.Contains(detail, "rate limit"), strings.Contains(detail, "rate_limit"):
		return CategoryRateLimit
	case strings.Contains(detail, "quota"):
		return CategoryQuota
	case strings.Contains(detail, "image"):
		return CategoryImage
	default:
		return CategoryGeneric
	}
}

// providerDetail returns the HTTP status and a lower-cased description of
// the provider error kind, or zero and "" for non-provider errors.
func providerDetail(err error) (int, string) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, strings.ToLower(strings.Join([]string{
			apiErr.Type,
			fmt.Sprint(apiErr.Code),
			apiErr.Message,
		}, " "))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, strings.ToLower(string(reqErr.Body))
	}

	return 0, ""
}
