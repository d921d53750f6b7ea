package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/ambufleet/ambufleet/internal/model"
)

// ErrVehicleNotFound indicates the vehicle id does not exist.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleFilter defines filters for listing vehicles.
// Search matches plate, brand and model; Status is exact-match.
type VehicleFilter struct {
	Search string
	Status string
}

// VehicleUpdate carries a partial update. Nil fields keep their stored value.
type VehicleUpdate struct {
	Plate     *string
	Brand     *string
	Model     *string
	Year      *int
	Status    *string
	Equipment *[]string
	Visible   *bool
}

const vehicleColumns = "id, plate, brand, model, year, status, equipment, visible, created_at, updated_at"

// CreateVehicle inserts a new vehicle into the database.
func (r *Repository) CreateVehicle(ctx context.Context, vehicle *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate, brand, model, year, status, equipment, visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		vehicle.ID,
		vehicle.Plate,
		vehicle.Brand,
		vehicle.Model,
		vehicle.Year,
		vehicle.Status,
		pq.Array(vehicle.Equipment),
		vehicle.Visible,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

// GetVehicleByID retrieves a vehicle by its ID. Hidden vehicles are
// still returned: hiding is logical and the row remains addressable.
func (r *Repository) GetVehicleByID(ctx context.Context, id string) (*model.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle by ID: %w", err)
	}

	return vehicle, nil
}

// ListVehicles retrieves visible vehicles matching the filter, newest first.
func (r *Repository) ListVehicles(ctx context.Context, filter VehicleFilter) ([]*model.Vehicle, error) {
	qb := &queryBuilder{}
	qb.where("visible = true")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		qb.where(fmt.Sprintf(
			"(plate ILIKE %[1]s OR brand ILIKE %[1]s OR model ILIKE %[1]s)",
			qb.bind(pattern),
		))
	}
	if filter.Status != "" {
		qb.where("status = " + qb.bind(filter.Status))
	}

	query := `SELECT ` + vehicleColumns + ` FROM vehicles` + qb.clause() +
		` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, qb.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]*model.Vehicle, 0)
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vehicles: %w", err)
	}

	return vehicles, nil
}

// UpdateVehicle applies a partial update and returns the updated row.
// Fields left nil keep their prior stored value; updated_at always refreshes.
func (r *Repository) UpdateVehicle(ctx context.Context, id string, update VehicleUpdate) (*model.Vehicle, error) {
	var equipment any
	if update.Equipment != nil {
		equipment = pq.Array(*update.Equipment)
	}

	query := `
		UPDATE vehicles
		SET plate = COALESCE($1, plate),
		    brand = COALESCE($2, brand),
		    model = COALESCE($3, model),
		    year = COALESCE($4, year),
		    status = COALESCE($5, status),
		    equipment = COALESCE($6, equipment),
		    visible = COALESCE($7, visible),
		    updated_at = now()
		WHERE id = $8
		RETURNING ` + vehicleColumns

	vehicle, err := scanVehicle(r.pool.QueryRow(ctx, query,
		update.Plate,
		update.Brand,
		update.Model,
		update.Year,
		update.Status,
		equipment,
		update.Visible,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	return vehicle, nil
}

// HideVehicle performs a logical delete: the visibility flag flips off
// and the row is kept.
func (r *Repository) HideVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	query := `
		UPDATE vehicles
		SET visible = false, updated_at = now()
		WHERE id = $1
		RETURNING ` + vehicleColumns

	vehicle, err := scanVehicle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to hide vehicle: %w", err)
	}

	return vehicle, nil
}

// scanVehicle scans a single vehicle row.
func scanVehicle(row pgx.Row) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := row.Scan(
		&vehicle.ID,
		&vehicle.Plate,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.Status,
		pq.Array(&vehicle.Equipment),
		&vehicle.Visible,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}
