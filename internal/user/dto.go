// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"
)

// UpdateProfileRequest carries the profile fields to change. Blank values
// count as absent.
type UpdateProfileRequest struct {
	Name     *string `json:"nombre"     validate:"omitempty,min=1,max=100"`
	Email    *string `json:"correo"     validate:"omitempty,correo,max=255"`
	Password *string `json:"contrasena" validate:"omitempty,min=6,max=128"`
}

func (r *UpdateProfileRequest) Normalize() {
	r.Name = trimmedOrNil(r.Name)
	r.Email = trimmedOrNil(r.Email)
	if r.Email != nil {
		lower := strings.ToLower(*r.Email)
		r.Email = &lower
	}
	if r.Password != nil && *r.Password == "" {
		r.Password = nil
	}
}

func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Name == nil && r.Email == nil && r.Password == nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type ProfileResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"correo"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

type UpdateProfileResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    ProfileResponse `json:"usuario"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ToProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
