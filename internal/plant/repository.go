// AngelaMos | 2026
// repository.go

package plant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ecoplagas/backend/internal/core"
)

// Every query is scoped by usuario_id so a user can never reach another
// user's plants.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Plant, error)
	Create(ctx context.Context, plant *Plant) error
	Update(ctx context.Context, userID, id int64, changes PlantChanges) (*Plant, error)
	Delete(ctx context.Context, userID, id int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const plantColumns = `id, usuario_id, nombre, especie, ubicacion, luz, riego,
		       estado, notas, icono, fecha_agregada`

func (r *repository) List(ctx context.Context, userID int64) ([]Plant, error) {
	query := `
		SELECT ` + plantColumns + `
		FROM plantas
		WHERE usuario_id = $1
		ORDER BY fecha_agregada DESC, id DESC`

	var plants []Plant
	if err := r.db.SelectContext(ctx, &plants, query, userID); err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	return plants, nil
}

func (r *repository) Create(ctx context.Context, plant *Plant) error {
	query := `
		INSERT INTO plantas
			(usuario_id, nombre, especie, ubicacion, luz, riego, estado, notas, icono)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, fecha_agregada`

	err := r.db.QueryRowxContext(ctx, query,
		plant.UserID,
		plant.Name,
		plant.Species,
		plant.Location,
		plant.Light,
		plant.Watering,
		plant.Status,
		plant.Notes,
		plant.Icon,
	).Scan(&plant.ID, &plant.CreatedAt)
	if err != nil {
		return fmt.Errorf("create plant: %w", err)
	}

	return nil
}

// Update sets the non-nil fields of changes in a single statement and
// returns the stored row.
func (r *repository) Update(
	ctx context.Context,
	userID, id int64,
	changes PlantChanges,
) (*Plant, error) {
	query := `
		UPDATE plantas
		SET nombre    = COALESCE($3, nombre),
		    especie   = COALESCE($4, especie),
		    ubicacion = COALESCE($5, ubicacion),
		    luz       = COALESCE($6, luz),
		    riego     = COALESCE($7, riego),
		    estado    = COALESCE($8, estado),
		    notas     = COALESCE($9, notas),
		    icono     = COALESCE($10, icono)
		WHERE id = $1 AND usuario_id = $2
		RETURNING ` + plantColumns

	var plant Plant
	err := r.db.GetContext(ctx, &plant, query,
		id,
		userID,
		changes.Name,
		changes.Species,
		changes.Location,
		changes.Light,
		changes.Watering,
		changes.Status,
		changes.Notes,
		changes.Icon,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update plant: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}

	return &plant, nil
}

func (r *repository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM plantas WHERE id = $1 AND usuario_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}

	return requireRow(result, "delete plant")
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
