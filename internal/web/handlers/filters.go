package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/frushion/internal/filters"
)

// FiltersHandler tracks the cosmetic filter selection and the last applied filter list.
type FiltersHandler struct {
	selection *filters.Selection

	mu      sync.Mutex
	applied []string
}

// NewFiltersHandler creates a filters handler. Toggles are posted to applier;
// a nil applier records them locally as if they were sent to /apply-filters.
func NewFiltersHandler(applier filters.Applier) *FiltersHandler {
	h := &FiltersHandler{applied: []string{}}
	if applier == nil {
		applier = h
	}
	h.selection = filters.NewSelection(applier)
	return h
}

// ApplyFilters records the applied filter list.
func (h *FiltersHandler) ApplyFilters(_ context.Context, list []string) error {
	h.mu.Lock()
	h.applied = slices.Clone(list)
	h.mu.Unlock()
	log.Printf("Applied filters: [%s]", sanitizeForLog(strings.Join(list, ", ")))
	return nil
}

// Applied returns the last applied filter list.
func (h *FiltersHandler) Applied() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.applied)
}

// ApplyRequest is the body of POST /apply-filters.
type ApplyRequest struct {
	Filters []string `json:"filters"`
}

// Apply accepts the full selected filter list.
func (h *FiltersHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	list := make([]string, 0, len(req.Filters))
	for _, name := range req.Filters {
		f, ok := filters.Lookup(name)
		if !ok {
			respondError(w, http.StatusBadRequest, "unknown filter: "+name)
			return
		}
		list = append(list, f)
	}

	if err := h.ApplyFilters(r.Context(), list); err != nil {
		log.Printf("Failed to apply filters: %v", err)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"filters": list,
	})
}

// FiltersResponse lists the known and the selected filters.
type FiltersResponse struct {
	Available []string `json:"available"`
	Selected  []string `json:"selected"`
	Applied   []string `json:"applied"`
}

func (h *FiltersHandler) response() FiltersResponse {
	selected := h.selection.Selected()
	if selected == nil {
		selected = []string{}
	}
	return FiltersResponse{
		Available: filters.Available,
		Selected:  selected,
		Applied:   h.Applied(),
	}
}

// List returns the filter selection.
func (h *FiltersHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.response())
}

// Toggle selects or deselects the filter named in the URL.
func (h *FiltersHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid filter name")
		return
	}
	if _, err := h.selection.Toggle(r.Context(), name); err != nil {
		if errors.Is(err, filters.ErrUnknownFilter) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.response())
}
