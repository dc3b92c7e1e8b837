// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`,
)

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// NewValidator returns a validator that reports json field names and knows
// the "correo" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	//nolint:errcheck // tag name and func are static
	_ = v.RegisterValidation("correo", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})

	return v
}

// FormatValidationError turns the first validator failure into a message
// suitable for the client.
func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Datos inválidos"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "Todos los campos son obligatorios"
	case "correo", "email":
		return "Formato de correo electrónico inválido"
	case "min":
		if fe.Field() == "contrasena" {
			return fmt.Sprintf(
				"La contraseña debe tener al menos %d caracteres",
				MinPasswordLength,
			)
		}
		return fmt.Sprintf("El campo %s es demasiado corto", fe.Field())
	case "max":
		return fmt.Sprintf("El campo %s es demasiado largo", fe.Field())
	case "oneof", "riego":
		return fmt.Sprintf("Valor inválido para %s", fe.Field())
	default:
		return fmt.Sprintf("Valor inválido para %s", fe.Field())
	}
}
