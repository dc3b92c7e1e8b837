// AngelaMos | 2026
// session.go

package session

import (
	"time"
)

// Identity is the authenticated user bound to a session.
type Identity struct {
	UserID int64  `json:"id"`
	Name   string `json:"nombre"`
	Email  string `json:"correo"`
}

type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
