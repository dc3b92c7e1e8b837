// AngelaMos | 2026
// dto.go

package auth

import (
	"strings"
	"time"
)

type RegisterRequest struct {
	Name     string `json:"nombre"     validate:"required,max=100"`
	Email    string `json:"correo"     validate:"required,correo,max=255"`
	Password string `json:"contrasena" validate:"required,min=6,max=128"`
}

func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// LoginRequest accepts the password under "contrasena" and, for older
// clients, under "contrasena_hash".
type LoginRequest struct {
	Email          string `json:"correo"`
	Password       string `json:"contrasena"`
	LegacyPassword string `json:"contrasena_hash"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Password == "" {
		r.Password = r.LegacyPassword
	}
	r.LegacyPassword = ""
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"correo"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

type AuthResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	User     UserResponse `json:"usuario"`
	Redirect string       `json:"redirect"`
}

type IdentityResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"correo"`
}

type LoginStatusResponse struct {
	LoggedIn bool              `json:"logged_in"`
	User     *IdentityResponse `json:"usuario,omitempty"`
}

type CheckAuthResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *IdentityResponse `json:"usuario,omitempty"`
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
