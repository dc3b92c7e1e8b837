// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"nombre"`
	Email        string    `db:"correo"`
	PasswordHash string    `db:"contrasena_hash"`
	CreatedAt    time.Time `db:"fecha_creacion"`
}
