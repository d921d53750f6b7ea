package model

import (
	"slices"
	"time"
)

// Vehicle status constants.
const (
	VehicleStatusDisponible    = "disponible"
	VehicleStatusEnServicio    = "en_servicio"
	VehicleStatusMantenimiento = "mantenimiento"
)

// ValidVehicleStatuses contains all valid vehicle status values.
var ValidVehicleStatuses = []string{
	VehicleStatusDisponible,
	VehicleStatusEnServicio,
	VehicleStatusMantenimiento,
}

// IsValidVehicleStatus checks if the given status is a known vehicle status.
func IsValidVehicleStatus(status string) bool {
	return slices.Contains(ValidVehicleStatuses, status)
}

// Vehicle represents an ambulance in the fleet.
// Visible is the soft-delete analogue: hidden vehicles keep their row
// but are excluded from listings.
type Vehicle struct {
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
