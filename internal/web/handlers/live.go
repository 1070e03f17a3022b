package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/beauty"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/media"
)

const errNoLiveSession = "no live session"

// LiveManager owns the single live capture session of the server.
type LiveManager struct {
	session *analysis.Session
	mu      sync.RWMutex
}

// NewLiveManager creates an empty live manager.
func NewLiveManager() *LiveManager {
	return &LiveManager{}
}

// Current returns the live session, nil when none was started.
func (m *LiveManager) Current() *analysis.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Replace installs a new session and closes the previous one so that only one stream is open.
func (m *LiveManager) Replace(s *analysis.Session) {
	m.mu.Lock()
	old := m.session
	m.session = s
	m.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Printf("Failed to close live session %s: %v", old.ID(), err)
		}
	}
}

// Stop closes the live session. The closed session stays readable until the next Replace.
func (m *LiveManager) Stop() (*analysis.Session, error) {
	s := m.Current()
	if s == nil {
		return nil, nil
	}
	return s, s.Close()
}

// LiveHandler drives the live capture session over HTTP.
type LiveHandler struct {
	config    *config.Config
	manager   *LiveManager
	newSource func() (media.Source, error)
}

// NewLiveHandler creates a live handler reading frames from the configured camera.
func NewLiveHandler(cfg *config.Config, manager *LiveManager) *LiveHandler {
	return &LiveHandler{
		config:  cfg,
		manager: manager,
		newSource: func() (media.Source, error) {
			return analysis.NewSource(cfg.Camera)
		},
	}
}

// LiveStartRequest configures a new live session. Empty fields use the server configuration.
type LiveStartRequest struct {
	Mode       string         `json:"mode"`
	Trigger    string         `json:"trigger"`
	Interval   string         `json:"interval"`
	FrameRate  int            `json:"fps"`
	Expression string         `json:"expression_provider"`
	Skin       string         `json:"skin_source"`
	Remote     bool           `json:"remote"`
	Landmarks  []beauty.Point `json:"landmarks"`
	Save       bool           `json:"save"`
}

// Start replaces the live session with a new one and starts capturing.
func (h *LiveHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req LiveStartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return
		}
	}

	trigger, err := h.trigger(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	invoker, err := analysis.NewInvoker(r.Context(), h.config, analysis.InvokerOptions{
		Mode:       req.Mode,
		Expression: req.Expression,
		Skin:       req.Skin,
		Remote:     req.Remote,
		Landmarks:  req.Landmarks,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	source, err := h.newSource()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	var session *analysis.Session
	opts := analysis.Options{Trigger: trigger}
	if req.Save {
		opts.OnResult = func(ctx context.Context, _ uint64, out analysis.Outcome) {
			saveOutcome(ctx, session, out)
		}
	}
	session = analysis.NewSession(source, invoker, opts)
	h.manager.Replace(session)

	if err := session.Start(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, media.ErrPermissionDenied) {
			status = http.StatusForbidden
		}
		respondJSON(w, status, session.State())
		return
	}

	log.Printf("Live session %s started (mode %s, trigger %s)", session.ID(), session.Mode(), trigger)
	respondJSON(w, http.StatusCreated, session.State())
}

func (h *LiveHandler) trigger(req LiveStartRequest) (analysis.Trigger, error) {
	kind := req.Trigger
	if kind == "" {
		kind = h.config.Capture.Trigger
	}
	interval := h.config.Capture.Interval
	if req.Interval != "" {
		d, err := time.ParseDuration(req.Interval)
		if err != nil || d <= 0 {
			return analysis.Trigger{}, errors.New("interval must be a positive duration such as 100ms or 10s")
		}
		interval = d
	}
	if interval <= 0 {
		mode := req.Mode
		if mode == "" {
			mode = h.config.Capture.Mode
		}
		interval = analysis.DefaultInterval(mode)
	}
	fps := h.config.Capture.FrameRate
	if req.FrameRate > 0 {
		fps = req.FrameRate
	}
	return analysis.ParseTrigger(kind, interval, fps)
}

// saveOutcome stores every rendered outcome of a session started with save enabled.
func saveOutcome(ctx context.Context, s *analysis.Session, out analysis.Outcome) {
	writer, err := database.GetAnalysisWriter(ctx)
	if err != nil {
		log.Printf("Skipping save of live result: %v", err)
		return
	}
	record := database.NewStoredAnalysis(s.ID(), s.Mode(), out.Skin, out.Expression, out.Score)
	if err := writer.Save(ctx, record); err != nil {
		log.Printf("Failed to save live result: %v", err)
	}
}

// Stop closes the live session.
func (h *LiveHandler) Stop(w http.ResponseWriter, r *http.Request) {
	session, err := h.manager.Stop()
	if session == nil {
		respondError(w, http.StatusNotFound, errNoLiveSession)
		return
	}
	if err != nil {
		log.Printf("Live session %s: %v", session.ID(), err)
	}
	if usage, ok := session.Usage(); ok {
		log.Printf("Live session %s: %d input tokens, %d output tokens, $%.4f",
			session.ID(), usage.InputTokens, usage.OutputTokens, usage.TotalCost)
	}
	respondJSON(w, http.StatusOK, session.State())
}

// Trigger runs one analysis round and returns the rendered state.
// Analysis failures are part of the state, not HTTP errors.
func (h *LiveHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Current()
	if session == nil {
		respondError(w, http.StatusNotFound, errNoLiveSession)
		return
	}

	_, err := session.RunOnce(r.Context())
	switch {
	case errors.Is(err, analysis.ErrBusy):
		respondError(w, http.StatusConflict, "analysis already in progress")
		return
	case errors.Is(err, analysis.ErrNotStarted), errors.Is(err, analysis.ErrClosed):
		respondError(w, http.StatusConflict, "live session is not running")
		return
	}
	respondJSON(w, http.StatusOK, session.State())
}

// Get returns the rendered state of the live session.
func (h *LiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Current()
	if session == nil {
		respondError(w, http.StatusNotFound, errNoLiveSession)
		return
	}
	respondJSON(w, http.StatusOK, session.State())
}

// ResetResult discards the rendered result so the next round starts from placeholders.
func (h *LiveHandler) ResetResult(w http.ResponseWriter, r *http.Request) {
	session := h.manager.Current()
	if session == nil {
		respondError(w, http.StatusNotFound, errNoLiveSession)
		return
	}
	session.Reset()
	respondJSON(w, http.StatusOK, session.State())
}

// Events streams live session events via SSE.
func (h *LiveHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r, func() SSESource {
		session := h.manager.Current()
		if session == nil {
			return nil
		}
		return session
	})
}
