package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/constants"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/expression"
	"github.com/kozaktomas/frushion/internal/report"
	"github.com/kozaktomas/frushion/internal/skin"
)

// AnalysesHandler handles saved analysis endpoints.
type AnalysesHandler struct {
	live *LiveManager
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(live *LiveManager) *AnalysesHandler {
	return &AnalysesHandler{live: live}
}

// getWriter resolves the storage backend, writing a 503 when none is configured.
func getWriter(w http.ResponseWriter, r *http.Request) database.AnalysisWriter {
	writer, err := database.GetAnalysisWriter(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return nil
	}
	return writer
}

// List returns saved analyses, newest first.
func (h *AnalysesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := constants.DefaultAnalysesLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	writer := getWriter(w, r)
	if writer == nil {
		return
	}

	analyses, err := writer.List(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list analyses: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if analyses == nil {
		analyses = []database.StoredAnalysis{}
	}
	respondJSON(w, http.StatusOK, analyses)
}

// Get returns a single saved analysis.
func (h *AnalysesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writer := getWriter(w, r)
	if writer == nil {
		return
	}

	a, err := writer.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		log.Printf("Failed to get analysis %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to get analysis")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// SaveRequest is the body of POST /api/v1/analyses. An empty body saves the live result.
type SaveRequest struct {
	Mode       string             `json:"mode"`
	Skin       *skin.Result       `json:"skin"`
	Expression *expression.Result `json:"expression"`
	Score      string             `json:"score"`
}

func (req SaveRequest) empty() bool {
	return (req.Skin == nil || req.Skin.IsEmpty()) && req.Expression == nil && req.Score == ""
}

// Save stores an analysis.
func (h *AnalysesHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	var record *database.StoredAnalysis
	if req.empty() {
		record = h.fromLive()
		if record == nil {
			respondError(w, http.StatusBadRequest, "no analysis to save")
			return
		}
	} else {
		mode := req.Mode
		if mode == "" {
			mode = analysis.ModeSkin
		}
		if !analysis.ValidMode(mode) {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown analysis mode %q", mode))
			return
		}
		record = database.NewStoredAnalysis("", mode, req.Skin, req.Expression, req.Score)
	}

	writer := getWriter(w, r)
	if writer == nil {
		return
	}
	if err := writer.Save(r.Context(), record); err != nil {
		log.Printf("Failed to save analysis: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save analysis")
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

// fromLive builds a record from the rendered live state, nil when nothing was rendered.
func (h *AnalysesHandler) fromLive() *database.StoredAnalysis {
	if h.live == nil {
		return nil
	}
	session := h.live.Current()
	if session == nil {
		return nil
	}
	st := session.State()

	var s *skin.Result
	if !st.Skin.IsEmpty() {
		s = &st.Skin
	}
	var expr *expression.Result
	if st.FaceDetected && st.Expression != analysis.ExpressionPlaceholder && st.Expression != analysis.ExpressionNoFace {
		expr = &expression.Result{Expression: st.Expression, Emoji: st.Emoji}
	}
	if s == nil && expr == nil && st.Score == "" {
		return nil
	}
	return database.NewStoredAnalysis(st.SessionID, st.Mode, s, expr, st.Score)
}

// Delete removes a saved analysis.
func (h *AnalysesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writer := getWriter(w, r)
	if writer == nil {
		return
	}

	err := writer.Delete(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		log.Printf("Failed to delete analysis %s: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete analysis")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Export downloads saved skin analyses as CSV. By default only the latest one is exported,
// ?all=true exports every saved skin analysis.
func (h *AnalysesHandler) Export(w http.ResponseWriter, r *http.Request) {
	writer := getWriter(w, r)
	if writer == nil {
		return
	}

	count, err := writer.Count(r.Context())
	if err != nil {
		log.Printf("Failed to count analyses for export: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to export analyses")
		return
	}
	var analyses []database.StoredAnalysis
	if count > 0 {
		analyses, err = writer.List(r.Context(), count)
	}
	if err != nil {
		log.Printf("Failed to list analyses for export: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to export analyses")
		return
	}
	results := database.SkinResults(analyses)
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "no skin analysis to export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.WriteHeader(http.StatusOK)

	if r.URL.Query().Get("all") == "true" {
		err = report.Write(w, results)
	} else {
		err = report.WriteLatest(w, results[0])
	}
	if err != nil {
		log.Printf("Failed to write CSV export: %v", err)
	}
}
