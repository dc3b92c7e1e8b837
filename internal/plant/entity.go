// AngelaMos | 2026
// entity.go

package plant

import (
	"time"
)

const (
	DefaultIcon   = "🌱"
	DefaultStatus = "saludable"
)

// Watering frequencies understood by the reminder calculator.
const (
	WateringDaily     = "diario"
	WateringEvery2To3 = "2-3-dias"
	WateringWeekly    = "semanal"
	WateringEvery15   = "15-dias"
	WateringMonthly   = "mensual"
)

var wateringFrequencies = []string{
	WateringDaily,
	WateringEvery2To3,
	WateringWeekly,
	WateringEvery15,
	WateringMonthly,
}

type Plant struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"usuario_id"`
	Name      string    `db:"nombre"`
	Species   *string   `db:"especie"`
	Location  *string   `db:"ubicacion"`
	Light     *string   `db:"luz"`
	Watering  *string   `db:"riego"`
	Status    *string   `db:"estado"`
	Notes     *string   `db:"notas"`
	Icon      *string   `db:"icono"`
	CreatedAt time.Time `db:"fecha_agregada"`
}

// PlantChanges holds the columns of a partial update. A nil field leaves
// its column unchanged.
type PlantChanges struct {
	Name     *string
	Species  *string
	Location *string
	Light    *string
	Watering *string
	Status   *string
	Notes    *string
	Icon     *string
}
