package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/ambufleet/ambufleet/internal/handler/dto"
	"github.com/ambufleet/ambufleet/internal/model"
	"github.com/ambufleet/ambufleet/internal/repository"
)

// VehicleHandler handles HTTP requests for fleet vehicles.
type VehicleHandler struct {
	vehicles VehicleStore
	logger   *slog.Logger
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicles VehicleStore, logger *slog.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicles: vehicles,
		logger:   logger,
	}
}

// List handles GET /api/vehicles. Hidden vehicles never appear here.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.VehicleFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
	}

	vehicles, err := h.vehicles.ListVehicles(r.Context(), filter)
	if err != nil {
		h.logger.Error("list_vehicles_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener vehículos")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVehicleListResponse(vehicles))
}

// Get handles GET /api/vehicles/{id}.
func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vehicle, err := h.vehicles.GetVehicleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "Vehículo no encontrado")
			return
		}
		h.logger.Error("get_vehicle_failed", "error", err, "vehicle_id", id)
		writeError(w, http.StatusInternalServerError, "Error al obtener vehículo")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// Create handles POST /api/vehicles. Status defaults to disponible.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = model.VehicleStatusDisponible
	}

	now := time.Now().UTC()
	vehicle := &model.Vehicle{
		ID:        ulid.Make().String(),
		Plate:     req.Plate,
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Status:    status,
		Equipment: req.Equipment,
		Visible:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.vehicles.CreateVehicle(r.Context(), vehicle); err != nil {
		h.logger.Error("create_vehicle_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al crear vehículo")
		return
	}

	h.logger.Info("vehicle_created", "vehicle_id", vehicle.ID, "plate", vehicle.Plate)

	writeJSON(w, http.StatusCreated, dto.ToVehicleResponse(vehicle))
}

// Update handles PUT /api/vehicles/{id}. Omitted fields keep their
// stored values, including the visibility flag.
func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Datos inválidos")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicles.UpdateVehicle(r.Context(), id, repository.VehicleUpdate{
		Plate:     req.Plate,
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Status:    req.Status,
		Equipment: req.Equipment,
		Visible:   req.Visible,
	})
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "Vehículo no encontrado")
			return
		}
		h.logger.Error("update_vehicle_failed", "error", err, "vehicle_id", id)
		writeError(w, http.StatusInternalServerError, "Error al actualizar vehículo")
		return
	}

	h.logger.Info("vehicle_updated", "vehicle_id", vehicle.ID)

	writeJSON(w, http.StatusOK, dto.ToVehicleResponse(vehicle))
}

// Delete handles DELETE /api/vehicles/{id}. The row is kept; the
// visibility flag flips off and the vehicle drops out of listings.
func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	vehicle, err := h.vehicles.HideVehicle(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "Vehículo no encontrado")
			return
		}
		h.logger.Error("delete_vehicle_failed", "error", err, "vehicle_id", id)
		writeError(w, http.StatusInternalServerError, "Error al eliminar vehículo")
		return
	}

	h.logger.Info("vehicle_hidden", "vehicle_id", vehicle.ID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Vehículo eliminado exitosamente"})
}
