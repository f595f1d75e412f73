package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/carloan-engine/internal/domain"
	"github.com/segyhp/carloan-engine/pkg/response"
)

type VehicleService interface {
	RegisterVehicle(ctx context.Context, request *domain.CreateVehicleRequest) (*domain.Vehicle, error)
	GetVehicle(ctx context.Context, registrationNo string) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, registrationNo string) error
}

type VehicleHandler struct {
	service   VehicleService
	validator *validator.Validate
}

func NewVehicleHandler(service VehicleService) *VehicleHandler {
	return &VehicleHandler{
		service:   service,
		validator: newValidator(),
	}
}

// RegisterVehicle handles POST /api/v1/vehicles
func (h *VehicleHandler) RegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateVehicleRequest
	if err := decode(r, h.validator, &request); err != nil {
		writeError(w, err)
		return
	}

	vehicle, err := h.service.RegisterVehicle(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, vehicle)
}

// GetVehicle handles GET /api/v1/vehicles/{registrationNo}
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.service.GetVehicle(r.Context(), mux.Vars(r)["registrationNo"])
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, vehicle)
}

// DeleteVehicle handles DELETE /api/v1/vehicles/{registrationNo}
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	registrationNo := mux.Vars(r)["registrationNo"]
	if err := h.service.DeleteVehicle(r.Context(), registrationNo); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, map[string]string{"registration_no": registrationNo, "status": "deleted"})
}
