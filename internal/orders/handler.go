// internal/orders/handler.go
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"stocknexus/internal/clients"
	"stocknexus/internal/inventory"
)

// DeliveryAnalyzer recognizes delivery-note images against an order's open
// lines. Implemented by clients.AnalyzerClient; nil disables the endpoint.
type DeliveryAnalyzer interface {
	AnalyzeDeliveryNote(ctx context.Context, orderNumber string, expected []clients.ExpectedItem, imageRef string) ([]clients.AnalyzedLine, error)
}

type Handler struct {
	service  Service
	analyzer DeliveryAnalyzer
	validate *validator.Validate
}

func NewHandler(service Service, analyzer DeliveryAnalyzer) *Handler {
	return &Handler{service: service, analyzer: analyzer, validate: validator.New()}
}

// Routes mounts the order endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreateOrder)
	r.Get("/", h.handleListOrders)
	r.Get("/{id}", h.handleGetOrder)
	r.Post("/{id}/items", h.handleAddItems)
	r.Delete("/{id}/items/{itemId}", h.handleRemoveItem)
	r.Post("/{id}/confirm", h.handleConfirm)
	r.Post("/{id}/receive", h.handleReceiveItem)
	r.Post("/{id}/load", h.handleLoadCommissioned)
	r.Post("/{id}/match", h.handleMatchDelivery)
	r.Post("/{id}/receive-matched", h.handleReceiveMatched)
	r.Post("/{id}/analyze", h.handleAnalyzeDeliveryNote)
	return r
}

type actorPayload struct {
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name" validate:"required"`
}

func (p actorPayload) actor() inventory.Actor {
	return inventory.Actor{ID: p.UserID, Name: p.UserName}
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		WholesalerID   string   `json:"wholesaler_id" validate:"required"`
		WholesalerName string   `json:"wholesaler_name" validate:"required"`
		ItemIDs        []string `json:"item_ids" validate:"required,min=1"`
		LocationID     string   `json:"location_id" validate:"required"`
		VehicleRequest bool     `json:"vehicle_request"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), CreateOrderInput{
		WholesalerID:   req.WholesalerID,
		WholesalerName: req.WholesalerName,
		ItemIDs:        req.ItemIDs,
		LocationID:     req.LocationID,
		VehicleRequest: req.VehicleRequest,
	}, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.ListOrders(r.Context()))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleAddItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		ItemIDs    []string `json:"item_ids" validate:"required,min=1"`
		LocationID string   `json:"location_id" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.AddItemsToOrder(r.Context(), chi.URLParam(r, "id"), req.ItemIDs, req.LocationID, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	var req actorPayload
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.RemoveItemFromDraftOrder(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	if order == nil {
		// Last item removed, the order is gone.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req actorPayload
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.ConfirmOrder(r.Context(), chi.URLParam(r, "id"), req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleReceiveItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		ItemID         string `json:"item_id" validate:"required"`
		Quantity       int    `json:"quantity" validate:"required,gt=0"`
		CommissionOnly bool   `json:"commission_only"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.ReceiveOrderItem(r.Context(), chi.URLParam(r, "id"), req.ItemID, req.Quantity, req.CommissionOnly, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleLoadCommissioned(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		ItemID string `json:"item_id" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.LoadCommissionedItem(r.Context(), chi.URLParam(r, "id"), req.ItemID, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) handleMatchDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delivered []DeliveredItem `json:"delivered" validate:"required,dive"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.MatchDelivery(r.Context(), chi.URLParam(r, "id"), req.Delivered)
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) handleReceiveMatched(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Delivered []DeliveredItem `json:"delivered" validate:"required,dive"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.ReceiveMatchedDelivery(r.Context(), chi.URLParam(r, "id"), req.Delivered, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(order)
}

// handleAnalyzeDeliveryNote sends a delivery-note image to the external
// analyzer and reconciles its output against the order's open lines. The
// result is diagnostic only; booking goes through receive-matched or the
// manual per-line receive.
func (h *Handler) handleAnalyzeDeliveryNote(w http.ResponseWriter, r *http.Request) {
	if h.analyzer == nil {
		http.Error(w, "delivery-note analyzer is not configured", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		ImageRef string `json:"image_ref" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	var expected []clients.ExpectedItem
	for _, line := range order.Items {
		if line.Status == ItemReceived {
			continue
		}
		expected = append(expected, clients.ExpectedItem{
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Quantity: line.Remaining(),
		})
	}

	lines, err := h.analyzer.AnalyzeDeliveryNote(r.Context(), order.OrderNumber, expected, req.ImageRef)
	if err != nil {
		if errors.Is(err, clients.ErrAmbiguousDeliveryMatch) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	delivered := make([]DeliveredItem, 0, len(lines))
	for _, line := range lines {
		delivered = append(delivered, DeliveredItem{ItemID: line.ItemID, Quantity: line.DeliveredQuantity})
	}

	result, err := h.service.MatchDelivery(r.Context(), order.ID, delivered)
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(struct {
		Result *MatchResult           `json:"result"`
		Lines  []clients.AnalyzedLine `json:"lines"`
	}{result, lines})
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
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrOrderItemNotFound),
		errors.Is(err, inventory.ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNoItems),
		errors.Is(err, inventory.ErrReorderNotArranged):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDraftOrderRequired),
		errors.Is(err, ErrOrderNotConfirmed),
		errors.Is(err, ErrNotCommissioned),
		errors.Is(err, ErrCommissionNeedsVehicle),
		errors.Is(err, ErrUnmatchedDelivery):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
