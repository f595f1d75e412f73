package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/carloan-engine/pkg/response"
)

// NewRouter wires every endpoint onto a gorilla/mux router.
func NewRouter(loans *LoanHandler, vehicles *VehicleHandler, health *HealthHandler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)
	router.Use(response.JSONMiddleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, "method not allowed")
	})

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/emi/calculate", loans.CalculateEMI).Methods(http.MethodPost)

	api.HandleFunc("/vehicles", vehicles.RegisterVehicle).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{registrationNo}", vehicles.GetVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{registrationNo}", vehicles.DeleteVehicle).Methods(http.MethodDelete)

	api.HandleFunc("/loans", loans.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}", loans.GetLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/terms", loans.ReviseTerms).Methods(http.MethodPut)
	api.HandleFunc("/loans/{loanId}/schedule", loans.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/payments", loans.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/loans/{loanId}/payments", loans.PaymentHistory).Methods(http.MethodGet)
	api.HandleFunc("/loans/{loanId}/progress", loans.GetProgress).Methods(http.MethodGet)

	return router
}
