package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/trends"
)

// TrendsHandler serves the editorial trends feed.
type TrendsHandler struct {
	catalog *trends.Catalog
}

// NewTrendsHandler creates a new trends handler.
func NewTrendsHandler(catalog *trends.Catalog) *TrendsHandler {
	return &TrendsHandler{catalog: catalog}
}

// TrendsResponse is the card layout of the trends page.
type TrendsResponse struct {
	Preview    []trends.Trend `json:"preview"`
	Categories []trends.Group `json:"categories"`
	More       []trends.Trend `json:"more,omitempty"`
}

// fetch waits for the feed, writing an error response when the client gives up first.
func (h *TrendsHandler) fetch(w http.ResponseWriter, r *http.Request) ([]trends.Trend, bool) {
	items, err := h.catalog.Fetch(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respondError(w, http.StatusGatewayTimeout, "trends request cancelled")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to load trends")
		return nil, false
	}
	return items, true
}

// List returns the flat trend list right away, without the feed latency.
func (h *TrendsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.All())
}

// Categorized returns the preview cards and the category groups.
// ?expanded=true adds the trends revealed by "View All Trends".
func (h *TrendsHandler) Categorized(w http.ResponseWriter, r *http.Request) {
	items, ok := h.fetch(w, r)
	if !ok {
		return
	}

	preview := items
	if len(preview) > constants.TrendsPreviewCount {
		preview = preview[:constants.TrendsPreviewCount]
	}
	resp := TrendsResponse{
		Preview:    preview,
		Categories: trends.Categorize(items),
	}
	if r.URL.Query().Get("expanded") == "true" {
		resp.More = trends.Expanded(items)
	}
	respondJSON(w, http.StatusOK, resp)
}
