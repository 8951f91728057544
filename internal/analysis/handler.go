// internal/analysis/handler.go
package analysis

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes mounts the reporting endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/inventory/{year}", h.handleYearlyInventory)
	r.Get("/{year}", h.handleAnalysisData)
	return r
}

func (h *Handler) handleYearlyInventory(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	json.NewEncoder(w).Encode(h.engine.YearlyInventory(r.Context(), year))
}

func (h *Handler) handleAnalysisData(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	locationID := r.URL.Query().Get("location")
	if locationID == "all" {
		locationID = ""
	}
	json.NewEncoder(w).Encode(h.engine.AnalysisData(r.Context(), year, locationID))
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return 0, false
	}
	return year, true
}
