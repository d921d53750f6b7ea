package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/ambufleet/ambufleet/internal/model"
)

// CreateVehicleRequest represents the request body for registering a
// vehicle. Status defaults to disponible when omitted.
type CreateVehicleRequest struct {
	Plate     string   `json:"plate"`
	Brand     string   `json:"brand"`
	Model     string   `json:"model"`
	Year      int      `json:"year"`
	Status    string   `json:"status"`
	Equipment []string `json:"equipment"`
}

// Validate checks the request shape.
func (r *CreateVehicleRequest) Validate() error {
	if strings.TrimSpace(r.Plate) == "" {
		return errors.New("La matrícula es obligatoria")
	}
	if strings.TrimSpace(r.Brand) == "" {
		return errors.New("La marca es obligatoria")
	}
	if strings.TrimSpace(r.Model) == "" {
		return errors.New("El modelo es obligatorio")
	}
	if r.Year < 1900 || r.Year > time.Now().Year()+1 {
		return errors.New("Año inválido")
	}
	if r.Status != "" && !model.IsValidVehicleStatus(r.Status) {
		return errors.New("Estado inválido")
	}
	return nil
}

// UpdateVehicleRequest represents a partial vehicle update. Nil fields
// are left untouched.
type UpdateVehicleRequest struct {
	Plate     *string   `json:"plate,omitempty"`
	Brand     *string   `json:"brand,omitempty"`
	Model     *string   `json:"model,omitempty"`
	Year      *int      `json:"year,omitempty"`
	Status    *string   `json:"status,omitempty"`
	Equipment *[]string `json:"equipment,omitempty"`
	Visible   *bool     `json:"visible,omitempty"`
}

// Validate checks the provided fields. Absent fields are not validated.
func (r *UpdateVehicleRequest) Validate() error {
	if r.Plate != nil && strings.TrimSpace(*r.Plate) == "" {
		return errors.New("La matrícula es obligatoria")
	}
	if r.Brand != nil && strings.TrimSpace(*r.Brand) == "" {
		return errors.New("La marca es obligatoria")
	}
	if r.Model != nil && strings.TrimSpace(*r.Model) == "" {
		return errors.New("El modelo es obligatorio")
	}
	if r.Year != nil && (*r.Year < 1900 || *r.Year > time.Now().Year()+1) {
		return errors.New("Año inválido")
	}
	if r.Status != nil && !model.IsValidVehicleStatus(*r.Status) {
		return errors.New("Estado inválido")
	}
	return nil
}

// VehicleResponse represents a vehicle in API responses.
type VehicleResponse struct {
	ID        string    `json:"id"`
	Plate     string    `json:"plate"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Status    string    `json:"status"`
	Equipment []string  `json:"equipment"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToVehicleResponse converts a Vehicle model to its API representation.
func ToVehicleResponse(vehicle *model.Vehicle) *VehicleResponse {
	equipment := vehicle.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return &VehicleResponse{
		ID:        vehicle.ID,
		Plate:     vehicle.Plate,
		Brand:     vehicle.Brand,
		Model:     vehicle.Model,
		Year:      vehicle.Year,
		Status:    vehicle.Status,
		Equipment: equipment,
		Visible:   vehicle.Visible,
		CreatedAt: vehicle.CreatedAt,
		UpdatedAt: vehicle.UpdatedAt,
	}
}

// ToVehicleListResponse converts a slice of vehicles.
func ToVehicleListResponse(vehicles []*model.Vehicle) []VehicleResponse {
	responses := make([]VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		responses[i] = *ToVehicleResponse(vehicle)
	}
	return responses
}
