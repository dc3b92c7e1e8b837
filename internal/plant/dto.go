// AngelaMos | 2026
// dto.go

package plant

import (
	"strings"
	"time"
)

type CreatePlantRequest struct {
	Name     string  `json:"nombre"    validate:"required,max=100"`
	Species  *string `json:"especie"   validate:"omitempty,max=100"`
	Location *string `json:"ubicacion" validate:"omitempty,max=100"`
	Light    *string `json:"luz"       validate:"omitempty,max=50"`
	Watering *string `json:"riego"     validate:"omitempty,riego"`
	Status   *string `json:"estado"    validate:"omitempty,max=50"`
	Notes    *string `json:"notas"`
	Icon     *string `json:"icono"     validate:"omitempty,max=10"`
}

func (r *CreatePlantRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// ToPlant builds the row to insert, filling the column defaults.
func (r *CreatePlantRequest) ToPlant(userID int64) *Plant {
	p := &Plant{
		UserID:   userID,
		Name:     r.Name,
		Species:  r.Species,
		Location: r.Location,
		Light:    r.Light,
		Watering: r.Watering,
		Status:   r.Status,
		Notes:    r.Notes,
		Icon:     r.Icon,
	}

	if p.Notes == nil {
		p.Notes = ptr("")
	}
	if p.Icon == nil {
		p.Icon = ptr(DefaultIcon)
	}
	if p.Status == nil {
		p.Status = ptr(DefaultStatus)
	}

	return p
}

// UpdatePlantRequest lists every column a client may change. Absent keys
// leave the column untouched and unknown keys are ignored.
type UpdatePlantRequest struct {
	Name     *string `json:"nombre"    validate:"omitempty,min=1,max=100"`
	Species  *string `json:"especie"   validate:"omitempty,max=100"`
	Location *string `json:"ubicacion" validate:"omitempty,max=100"`
	Light    *string `json:"luz"       validate:"omitempty,max=50"`
	Watering *string `json:"riego"     validate:"omitempty,riego"`
	Status   *string `json:"estado"    validate:"omitempty,max=50"`
	Notes    *string `json:"notas"`
	Icon     *string `json:"icono"     validate:"omitempty,max=10"`
}

func (r *UpdatePlantRequest) Normalize() {
	if r.Name != nil {
		r.Name = ptr(strings.TrimSpace(*r.Name))
	}
}

func (r *UpdatePlantRequest) IsEmpty() bool {
	return r.Name == nil &&
		r.Species == nil &&
		r.Location == nil &&
		r.Light == nil &&
		r.Watering == nil &&
		r.Status == nil &&
		r.Notes == nil &&
		r.Icon == nil
}

func (r *UpdatePlantRequest) Changes() PlantChanges {
	return PlantChanges{
		Name:     r.Name,
		Species:  r.Species,
		Location: r.Location,
		Light:    r.Light,
		Watering: r.Watering,
		Status:   r.Status,
		Notes:    r.Notes,
		Icon:     r.Icon,
	}
}

func ptr(s string) *string {
	return &s
}

type PlantResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"usuario_id"`
	Name      string    `json:"nombre"`
	Species   *string   `json:"especie"`
	Location  *string   `json:"ubicacion"`
	Light     *string   `json:"luz"`
	Watering  *string   `json:"riego"`
	Status    *string   `json:"estado"`
	Notes     *string   `json:"notas"`
	Icon      *string   `json:"icono"`
	CreatedAt time.Time `json:"fecha_agregada"`
}

type PlantEnvelope struct {
	Success bool          `json:"success"`
	Plant   PlantResponse `json:"planta"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func ToPlantResponse(p *Plant) PlantResponse {
	return PlantResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Species:   p.Species,
		Location:  p.Location,
		Light:     p.Light,
		Watering:  p.Watering,
		Status:    p.Status,
		Notes:     p.Notes,
		Icon:      p.Icon,
		CreatedAt: p.CreatedAt,
	}
}

func ToPlantResponseList(plants []Plant) []PlantResponse {
	out := make([]PlantResponse, 0, len(plants))
	for i := range plants {
		out = append(out, ToPlantResponse(&plants[i]))
	}
	return out
}
