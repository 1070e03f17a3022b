package handlers

import (
	"net/http"

	"github.com/kozaktomas/frushion/internal/analysis"
	"github.com/kozaktomas/frushion/internal/config"
	"github.com/kozaktomas/frushion/internal/database"
	"github.com/kozaktomas/frushion/internal/filters"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Providers          []ProviderInfo `json:"providers"`
	ExpressionProvider string         `json:"expression_provider"`
	SkinSource         string         `json:"skin_source"`
	Modes              []string       `json:"modes"`
	Triggers           []string       `json:"triggers"`
	Filters            []string       `json:"filters"`
	CameraSource       string         `json:"camera_source"`
	ServiceURL         string         `json:"service_url,omitempty"`
	Storage            string         `json:"storage,omitempty"`
}

// ProviderInfo represents information about an expression provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the available configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{
			Name:      analysis.SourceSimulated,
			Available: true,
		},
		{
			Name:      "openai",
			Available: h.config.OpenAI.Token != "",
		},
		{
			Name:      "gemini",
			Available: h.config.Gemini.APIKey != "",
		},
		{
			Name:      "ollama",
			Available: true, // Always available (local)
		},
		{
			Name:      "llamacpp",
			Available: true, // Always available (local)
		},
		{
			Name:      analysis.SourceRemote,
			Available: h.config.Analysis.ServiceURL != "",
		},
	}

	response := ConfigResponse{
		Providers:          providers,
		ExpressionProvider: h.config.Analysis.ExpressionProvider,
		SkinSource:         h.config.Analysis.SkinSource,
		Modes:              analysis.Modes,
		Triggers: []string{
			string(analysis.TriggerInterval),
			string(analysis.TriggerContinuous),
			string(analysis.TriggerManual),
		},
		Filters:      filters.Available,
		CameraSource: h.config.Camera.Source,
		ServiceURL:   h.config.Analysis.ServiceURL,
		Storage:      database.BackendName(),
	}

	respondJSON(w, http.StatusOK, response)
}
