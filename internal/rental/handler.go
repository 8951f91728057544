// internal/rental/handler.go
package rental

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// Routes mounts the machine endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreateMachine)
	r.Get("/", h.handleListMachines)
	r.Get("/{id}", h.handleGetMachine)
	r.Post("/{id}/rent", h.action(Service.Rent))
	r.Post("/{id}/return", h.action(Service.Return))
	r.Post("/{id}/reserve", h.action(Service.Reserve))
	r.Delete("/{id}/reserve", h.action(Service.CancelReservation))
	return r
}

type actorPayload struct {
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name" validate:"required"`
}

func (h *Handler) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required"`
		SerialNumber string `json:"serial_number"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	machine, err := h.service.CreateMachine(r.Context(), req.Name, req.SerialNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(machine)
}

func (h *Handler) handleListMachines(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.ListMachines(r.Context()))
}

func (h *Handler) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	machine, err := h.service.GetMachine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(machine)
}

// action adapts the four identically shaped rental transitions to handlers.
func (h *Handler) action(fn func(Service, context.Context, string, Actor) (*Machine, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actorPayload
		if !h.decode(w, r, &req) {
			return
		}

		machine, err := fn(h.service, r.Context(), chi.URLParam(r, "id"), Actor{ID: req.UserID, Name: req.UserName})
		if err != nil {
			respondError(w, err)
			return
		}
		json.NewEncoder(w).Encode(machine)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMachineNotFound), errors.Is(err, ErrReservationMissing):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrMachineRented),
		errors.Is(err, ErrMachineNotRented),
		errors.Is(err, ErrMachineReserved),
		errors.Is(err, ErrAlreadyReserved):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
