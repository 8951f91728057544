// internal/inventory/handler.go
package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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

// Routes mounts the item endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.handleCreateItem)
	r.Get("/", h.handleListItems)
	r.Get("/{id}", h.handleGetItem)
	r.Post("/{id}/stock", h.handleStockChange)
	r.Post("/{id}/transfer", h.handleTransfer)
	r.Post("/{id}/min-stock", h.handleSetMinStock)
	r.Post("/{id}/label", h.handleLabelPrinted)
	r.Post("/{id}/reorder", h.handleArrangeReorder)
	r.Delete("/{id}/reorder/{location}", h.handleCancelReorder)
	r.Get("/{id}/stock-at", h.handleStockAt)
	return r
}

type actorPayload struct {
	UserID   string `json:"user_id" validate:"required"`
	UserName string `json:"user_name" validate:"required"`
}

func (p actorPayload) actor() Actor {
	return Actor{ID: p.UserID, Name: p.UserName}
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		Name               string  `json:"name" validate:"required"`
		ItemNumber         string  `json:"item_number" validate:"required"`
		ManufacturerNumber string  `json:"manufacturer_number"`
		Barcode            string  `json:"barcode"`
		WholesalerID       string  `json:"wholesaler_id"`
		WholesalerItemNum  string  `json:"wholesaler_item_number"`
		InitialStocks      []Stock `json:"initial_stocks" validate:"dive"`
		MinStocks          []Stock `json:"min_stocks" validate:"dive"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.CreateItem(r.Context(), CreateItemInput{
		Name:               req.Name,
		ItemNumber:         req.ItemNumber,
		ManufacturerNumber: req.ManufacturerNumber,
		Barcode:            req.Barcode,
		WholesalerID:       req.WholesalerID,
		WholesalerItemNum:  req.WholesalerItemNum,
		InitialStocks:      req.InitialStocks,
		MinStocks:          req.MinStocks,
	}, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(h.service.ListItems(r.Context()))
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleStockChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		LocationID string `json:"location_id" validate:"required"`
		Type       string `json:"type" validate:"required,oneof=in out inventory"`
		Quantity   int    `json:"quantity" validate:"min=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.ApplyStockChange(r.Context(), chi.URLParam(r, "id"), req.LocationID, EntryType(req.Type), req.Quantity, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		FromLocationID string `json:"from_location_id" validate:"required"`
		ToLocationID   string `json:"to_location_id" validate:"required"`
		Quantity       int    `json:"quantity" validate:"required,gt=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.Transfer(r.Context(), chi.URLParam(r, "id"), req.FromLocationID, req.ToLocationID, req.Quantity, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleSetMinStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		LocationID string `json:"location_id" validate:"required"`
		Quantity   int    `json:"quantity" validate:"min=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.SetMinStock(r.Context(), chi.URLParam(r, "id"), req.LocationID, req.Quantity, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleLabelPrinted(w http.ResponseWriter, r *http.Request) {
	var req actorPayload
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.RecordLabelPrinted(r.Context(), chi.URLParam(r, "id"), req.actor()); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleArrangeReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		actorPayload
		LocationID string `json:"location_id" validate:"required"`
		Quantity   int    `json:"quantity" validate:"required,gt=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.ArrangeReorder(r.Context(), chi.URLParam(r, "id"), req.LocationID, req.Quantity, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) handleCancelReorder(w http.ResponseWriter, r *http.Request) {
	var req actorPayload
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.CancelArrangedReorder(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "location"), req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

// HandleBulkCancelReorders withdraws every arranged reorder for one
// wholesaler at one location. Mounted outside the /items subtree.
func (h *Handler) HandleBulkCancelReorders(w http.ResponseWriter, r *http.Request) {
	wholesalerID := r.URL.Query().Get("wholesaler")
	locationID := r.URL.Query().Get("location")
	if wholesalerID == "" || locationID == "" {
		http.Error(w, "wholesaler and location parameters are required", http.StatusBadRequest)
		return
	}

	var req actorPayload
	if !h.decode(w, r, &req) {
		return
	}

	cancelled, err := h.service.CancelArrangedByWholesaler(r.Context(), wholesalerID, locationID, req.actor())
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"cancelled": cancelled})
}

func (h *Handler) handleStockAt(w http.ResponseWriter, r *http.Request) {
	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		http.Error(w, "invalid or missing at parameter, want RFC 3339", http.StatusBadRequest)
		return
	}

	quantity, err := h.service.StockAt(r.Context(), chi.URLParam(r, "id"), at, r.URL.Query().Get("location"))
	if err != nil {
		respondError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"quantity": quantity})
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
	case errors.Is(err, ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrSameLocationTransfer),
		errors.Is(err, ErrUnknownEntryType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrReorderNotArranged),
		errors.Is(err, ErrReorderAlreadyOrdered):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
